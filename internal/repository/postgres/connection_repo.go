package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/ridetrack/server/internal/domain"
	"gorm.io/gorm"
)

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *connectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	return r.db.WithContext(ctx).Create(conn).Error
}

func (r *connectionRepository) GetBetween(ctx context.Context, a, b uuid.UUID) (*domain.Connection, error) {
	var conn domain.Connection
	err := r.db.WithContext(ctx).
		Where("(requester_id = ? AND receiver_id = ?) OR (requester_id = ? AND receiver_id = ?)", a, b, b, a).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) GetPending(ctx context.Context, requesterID, receiverID uuid.UUID) (*domain.Connection, error) {
	var conn domain.Connection
	err := r.db.WithContext(ctx).
		Where("requester_id = ? AND receiver_id = ? AND status = ?", requesterID, receiverID, domain.ConnectionStatusPending).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) Update(ctx context.Context, conn *domain.Connection) error {
	return r.db.WithContext(ctx).
		Model(&domain.Connection{}).
		Where("requester_id = ? AND receiver_id = ?", conn.RequesterID, conn.ReceiverID).
		Update("status", conn.Status).Error
}

func (r *connectionRepository) GetAllForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Connection, error) {
	var conns []*domain.Connection
	err := r.db.WithContext(ctx).
		Where("requester_id = ? OR receiver_id = ?", userID, userID).
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	return conns, nil
}
