package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ridetrack/server/internal/domain"
	"github.com/ridetrack/server/internal/repository"
	"gorm.io/gorm"
)

// RideService runs the per-group ride lifecycle: Idle → Active → Idle.
// Only the group creator may start or end a ride, and at most one ride is
// active per group at any instant.
type RideService struct {
	groupRepo repository.GroupRepository
	rideRepo  repository.RideRepository
	tx        repository.TxManager
	groups    *keyedMutex
}

func NewRideService(groupRepo repository.GroupRepository, rideRepo repository.RideRepository, tx repository.TxManager) *RideService {
	return &RideService{
		groupRepo: groupRepo,
		rideRepo:  rideRepo,
		tx:        tx,
		groups:    newKeyedMutex(),
	}
}

// StartRide creates a new active session for the group. The group id is
// serialized so N racing starts yield exactly one active session.
func (s *RideService) StartRide(ctx context.Context, actorID, groupID uuid.UUID) (*domain.RideSession, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	if group.CreatorID != actorID {
		return nil, domain.ErrNotGroupCreator
	}

	unlock := s.groups.Lock(groupID.String())
	defer unlock()

	ride := &domain.RideSession{
		ID:        uuid.New(),
		GroupID:   groupID,
		StartTime: time.Now().UTC(),
		Active:    true,
	}

	err = s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		_, err := repos.Ride.GetActiveByGroupID(ctx, groupID)
		if err == nil {
			return domain.ErrRideAlreadyActive
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return repos.Ride.Create(ctx, ride)
	})
	if err != nil {
		return nil, err
	}
	return ride, nil
}

// EndRide deactivates the group's active session, keeping the record as
// history. Ending when nothing is active is an error, including ending
// the same session twice.
func (s *RideService) EndRide(ctx context.Context, actorID, groupID uuid.UUID) (*domain.RideSession, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	if group.CreatorID != actorID {
		return nil, domain.ErrNotGroupCreator
	}

	unlock := s.groups.Lock(groupID.String())
	defer unlock()

	var ride *domain.RideSession
	err = s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		active, err := repos.Ride.GetActiveByGroupID(ctx, groupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNoActiveRide
			}
			return err
		}
		now := time.Now().UTC()
		active.Active = false
		active.EndTime = &now
		if err := repos.Ride.Update(ctx, active); err != nil {
			return err
		}
		ride = active
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ride, nil
}

// RideHistory lists the group's sessions, newest first.
func (s *RideService) RideHistory(ctx context.Context, groupID uuid.UUID) ([]*domain.RideSession, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return s.rideRepo.GetByGroupID(ctx, groupID)
}
