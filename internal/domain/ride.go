package domain

import (
	"time"

	"github.com/google/uuid"
)

// RideSession is one ride for a group. At most one session per group is
// active at any time; ended sessions are kept as history.
type RideSession struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	GroupID   uuid.UUID  `json:"groupId" gorm:"type:uuid;not null;index"`
	StartTime time.Time  `json:"startTime" gorm:"not null"`
	EndTime   *time.Time `json:"endTime"`
	Active    bool       `json:"active" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"createdAt"`
}
