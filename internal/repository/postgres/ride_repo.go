package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/ridetrack/server/internal/domain"
	"gorm.io/gorm"
)

type rideRepository struct {
	db *gorm.DB
}

func NewRideRepository(db *gorm.DB) *rideRepository {
	return &rideRepository{db: db}
}

func (r *rideRepository) Create(ctx context.Context, ride *domain.RideSession) error {
	return r.db.WithContext(ctx).Create(ride).Error
}

func (r *rideRepository) GetActiveByGroupID(ctx context.Context, groupID uuid.UUID) (*domain.RideSession, error) {
	var ride domain.RideSession
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND active = ?", groupID, true).
		First(&ride).Error
	if err != nil {
		return nil, err
	}
	return &ride, nil
}

func (r *rideRepository) GetByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.RideSession, error) {
	var rides []*domain.RideSession
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("start_time DESC").
		Find(&rides).Error
	if err != nil {
		return nil, err
	}
	return rides, nil
}

func (r *rideRepository) Update(ctx context.Context, ride *domain.RideSession) error {
	return r.db.WithContext(ctx).Save(ride).Error
}
