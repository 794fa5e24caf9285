package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ridetrack/server/internal/domain"
	"github.com/ridetrack/server/internal/repository"
	"gorm.io/gorm"
)

// ConnectionService drives the pairwise relationship state machine:
// no record → pending (directional) → accepted. There is no reject or
// cancel; an unaccepted request stays pending indefinitely.
type ConnectionService struct {
	connRepo repository.ConnectionRepository
	userRepo repository.UserRepository
	tx       repository.TxManager
	pairs    *keyedMutex
}

func NewConnectionService(connRepo repository.ConnectionRepository, userRepo repository.UserRepository, tx repository.TxManager) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		userRepo: userRepo,
		tx:       tx,
		pairs:    newKeyedMutex(),
	}
}

// UserRef identifies the other party of a relationship in API responses.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// Relationships are the three disjoint buckets a user's connection records
// fall into. A single record lands in exactly one bucket, determined by
// its status and direction.
type Relationships struct {
	Connections      []UserRef `json:"connections"`
	SentRequests     []UserRef `json:"sent_requests"`
	ReceivedRequests []UserRef `json:"received_requests"`
}

// UserWithStatus is a user annotated with the viewer's relationship status.
type UserWithStatus struct {
	ID               uuid.UUID                 `json:"id"`
	Username         string                    `json:"username"`
	City             string                    `json:"city"`
	BikeModel        string                    `json:"bike_model"`
	ConnectionStatus domain.RelationshipStatus `json:"connection_status"`
}

// SendRequest creates a pending connection from requester to receiver.
// The unordered pair is serialized so two simultaneous sends, in either
// direction, produce exactly one record.
func (s *ConnectionService) SendRequest(ctx context.Context, requesterID, receiverID uuid.UUID) (*domain.Connection, error) {
	if requesterID == receiverID {
		return nil, domain.ErrSelfConnection
	}

	if _, err := s.userRepo.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	unlock := s.pairs.Lock(pairKey(requesterID, receiverID))
	defer unlock()

	conn := &domain.Connection{
		RequesterID: requesterID,
		ReceiverID:  receiverID,
		Status:      domain.ConnectionStatusPending,
	}

	err := s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		_, err := repos.Connection.GetBetween(ctx, requesterID, receiverID)
		if err == nil {
			return domain.ErrConnectionExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return repos.Connection.Create(ctx, conn)
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// AcceptRequest transitions a pending connection to accepted. Only the
// receiver of the original request may accept; the requester calling with
// the roles flipped finds no pending record.
func (s *ConnectionService) AcceptRequest(ctx context.Context, receiverID, requesterID uuid.UUID) (*domain.Connection, error) {
	unlock := s.pairs.Lock(pairKey(requesterID, receiverID))
	defer unlock()

	var conn *domain.Connection
	err := s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		pending, err := repos.Connection.GetPending(ctx, requesterID, receiverID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNoPendingRequest
			}
			return err
		}
		pending.Status = domain.ConnectionStatusAccepted
		if err := repos.Connection.Update(ctx, pending); err != nil {
			return err
		}
		conn = pending
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// ListRelationships projects all connection records touching the user into
// the three buckets.
func (s *ConnectionService) ListRelationships(ctx context.Context, userID uuid.UUID) (*Relationships, error) {
	conns, err := s.connRepo.GetAllForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rel := &Relationships{
		Connections:      []UserRef{},
		SentRequests:     []UserRef{},
		ReceivedRequests: []UserRef{},
	}

	for _, conn := range conns {
		other, err := s.userRepo.GetByID(ctx, conn.Other(userID))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		ref := UserRef{ID: other.ID, Username: other.Username}

		switch conn.StatusFor(userID) {
		case domain.RelationshipAccepted:
			rel.Connections = append(rel.Connections, ref)
		case domain.RelationshipSent:
			rel.SentRequests = append(rel.SentRequests, ref)
		case domain.RelationshipReceived:
			rel.ReceivedRequests = append(rel.ReceivedRequests, ref)
		}
	}

	return rel, nil
}

// StatusBetween reports the relationship from userID's perspective.
func (s *ConnectionService) StatusBetween(ctx context.Context, userID, otherID uuid.UUID) (domain.RelationshipStatus, error) {
	conn, err := s.connRepo.GetBetween(ctx, userID, otherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RelationshipNone, nil
		}
		return domain.RelationshipNone, err
	}
	return conn.StatusFor(userID), nil
}

// ListUsers returns every user except the viewer, annotated with the
// viewer's relationship status to each.
func (s *ConnectionService) ListUsers(ctx context.Context, viewerID uuid.UUID) ([]UserWithStatus, error) {
	conns, err := s.connRepo.GetAllForUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	statusByUser := make(map[uuid.UUID]domain.RelationshipStatus, len(conns))
	for _, conn := range conns {
		statusByUser[conn.Other(viewerID)] = conn.StatusFor(viewerID)
	}

	users, err := s.userRepo.GetAllExcept(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	out := make([]UserWithStatus, 0, len(users))
	for _, u := range users {
		status, ok := statusByUser[u.ID]
		if !ok {
			status = domain.RelationshipNone
		}
		out = append(out, UserWithStatus{
			ID:               u.ID,
			Username:         u.Username,
			City:             u.City,
			BikeModel:        u.BikeModel,
			ConnectionStatus: status,
		})
	}

	return out, nil
}
