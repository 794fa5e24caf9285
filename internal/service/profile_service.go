package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/ridetrack/server/internal/domain"
	"github.com/ridetrack/server/internal/repository"
	"gorm.io/gorm"
)

type ProfileService struct {
	userRepo  repository.UserRepository
	groupRepo repository.GroupRepository
	sanitizer *bluemonday.Policy
}

func NewProfileService(userRepo repository.UserRepository, groupRepo repository.GroupRepository) *ProfileService {
	return &ProfileService{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Profile is a user's own view of their account.
type Profile struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	City         string      `json:"city"`
	BikeModel    string      `json:"bike_model"`
	Bio          string      `json:"bio"`
	RidingStyle  string      `json:"riding_style"`
	JoinedGroups []uuid.UUID `json:"joined_groups"`
}

// UpdateProfileInput is a partial update: nil fields keep their value.
type UpdateProfileInput struct {
	City        *string
	BikeModel   *string
	Bio         *string
	RidingStyle *string
}

func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	groupIDs, err := s.groupRepo.GetGroupIDsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if groupIDs == nil {
		groupIDs = []uuid.UUID{}
	}

	return &Profile{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		City:         user.City,
		BikeModel:    user.BikeModel,
		Bio:          user.Bio,
		RidingStyle:  user.RidingStyle,
		JoinedGroups: groupIDs,
	}, nil
}

func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if input.City != nil {
		user.City = *input.City
	}
	if input.BikeModel != nil {
		user.BikeModel = *input.BikeModel
	}
	if input.Bio != nil {
		user.Bio = s.sanitizer.Sanitize(*input.Bio)
	}
	if input.RidingStyle != nil {
		user.RidingStyle = *input.RidingStyle
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
