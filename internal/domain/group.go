package domain

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	CreatorID   uuid.UUID `json:"creatorId" gorm:"type:uuid;not null"`
	Creator     *User     `json:"-" gorm:"foreignKey:CreatorID"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// GroupMember is one row of the group membership junction table. The
// composite primary key makes duplicate membership unrepresentable.
type GroupMember struct {
	GroupID   uuid.UUID `json:"groupId" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"createdAt"`
}
