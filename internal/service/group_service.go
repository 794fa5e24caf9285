package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/ridetrack/server/internal/domain"
	"github.com/ridetrack/server/internal/repository"
	"gorm.io/gorm"
)

type GroupService struct {
	groupRepo repository.GroupRepository
	rideRepo  repository.RideRepository
	tx        repository.TxManager
	sanitizer *bluemonday.Policy
}

func NewGroupService(groupRepo repository.GroupRepository, rideRepo repository.RideRepository, tx repository.TxManager) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		rideRepo:  rideRepo,
		tx:        tx,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

type CreateGroupInput struct {
	CreatorID   uuid.UUID
	Name        string
	Description string
}

// GroupSummary is the list view of a group.
type GroupSummary struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	CreatorUsername string    `json:"creator_username"`
}

// GroupDetail is the full view: members plus the active ride, if any.
type GroupDetail struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	CreatorUsername string     `json:"creator_username"`
	Members         []UserRef  `json:"members"`
	ActiveRideID    *uuid.UUID `json:"active_ride_id"`
}

// CreateGroup records the creator but does not join them; membership is
// always an explicit Join.
func (s *GroupService) CreateGroup(ctx context.Context, input CreateGroupInput) (*domain.Group, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.ErrGroupNameRequired
	}

	group := &domain.Group{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: s.sanitizer.Sanitize(input.Description),
		CreatorID:   input.CreatorID,
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) ListGroups(ctx context.Context) ([]GroupSummary, error) {
	groups, err := s.groupRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, GroupSummary{
			ID:              g.ID,
			Name:            g.Name,
			Description:     g.Description,
			CreatorUsername: creatorUsername(g),
		})
	}
	return out, nil
}

func (s *GroupService) GetGroup(ctx context.Context, groupID uuid.UUID) (*GroupDetail, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}

	members, err := s.groupRepo.GetMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}

	detail := &GroupDetail{
		ID:              group.ID,
		Name:            group.Name,
		Description:     group.Description,
		CreatorUsername: creatorUsername(group),
		Members:         make([]UserRef, 0, len(members)),
	}
	for _, m := range members {
		detail.Members = append(detail.Members, UserRef{ID: m.ID, Username: m.Username})
	}

	if ride, err := s.rideRepo.GetActiveByGroupID(ctx, groupID); err == nil {
		detail.ActiveRideID = &ride.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return detail, nil
}

// Join adds the user to the group. Joining a group the user already
// belongs to is a successful no-op.
func (s *GroupService) Join(ctx context.Context, userID, groupID uuid.UUID) (*domain.Group, bool, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, domain.ErrGroupNotFound
		}
		return nil, false, err
	}

	var joined bool
	err = s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		isMember, err := repos.Group.IsMember(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if isMember {
			return nil
		}
		joined = true
		return repos.Group.AddMember(ctx, groupID, userID)
	})
	if err != nil {
		return nil, false, err
	}
	return group, joined, nil
}

// Leave removes the user from the group. Leaving a group the user never
// joined is an error, unlike the idempotent Join.
func (s *GroupService) Leave(ctx context.Context, userID, groupID uuid.UUID) (*domain.Group, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}

	err = s.tx.Transaction(ctx, func(repos *repository.Repositories) error {
		isMember, err := repos.Group.IsMember(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !isMember {
			return domain.ErrNotGroupMember
		}
		return repos.Group.RemoveMember(ctx, groupID, userID)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) MembersOf(ctx context.Context, groupID uuid.UUID) ([]*domain.User, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return s.groupRepo.GetMembers(ctx, groupID)
}

func (s *GroupService) GroupsOf(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.groupRepo.GetGroupIDsForUser(ctx, userID)
}

func creatorUsername(g *domain.Group) string {
	if g.Creator != nil {
		return g.Creator.Username
	}
	return "Unknown"
}
