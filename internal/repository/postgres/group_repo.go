package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/ridetrack/server/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type groupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *groupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	var group domain.Group
	err := r.db.WithContext(ctx).
		Preload("Creator").
		First(&group, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) GetAll(ctx context.Context) ([]*domain.Group, error) {
	var groups []*domain.Group
	err := r.db.WithContext(ctx).
		Preload("Creator").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// AddMember is safe to race: the membership row's composite primary key
// plus the on-conflict no-op make concurrent first-time joins converge on
// a single row instead of a duplicate-key error.
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	member := &domain.GroupMember{GroupID: groupID, UserID: userID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(member).Error
}

func (r *groupRepository) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&domain.GroupMember{}, "group_id = ? AND user_id = ?", groupID, userID).Error
}

func (r *groupRepository) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *groupRepository) GetMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.User, error) {
	var users []*domain.User
	err := r.db.WithContext(ctx).
		Joins("JOIN group_members ON group_members.user_id = users.id").
		Where("group_members.group_id = ?", groupID).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *groupRepository) GetGroupIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
