package domain

import (
	"time"

	"github.com/google/uuid"
)

type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
)

// RelationshipStatus is a connection's state as seen from one side of the
// pair. The same pending row reads "sent" for the requester and "received"
// for the receiver.
type RelationshipStatus string

const (
	RelationshipNone     RelationshipStatus = "none"
	RelationshipSent     RelationshipStatus = "sent"
	RelationshipReceived RelationshipStatus = "received"
	RelationshipAccepted RelationshipStatus = "accepted"
)

// Connection is a directional relationship record. The ordered
// (requester, receiver) pair is the identity: direction is fixed at
// creation and determines who may accept. At most one row exists per
// unordered pair of users, in whichever direction it was first sent.
type Connection struct {
	RequesterID uuid.UUID        `json:"requesterId" gorm:"type:uuid;primary_key"`
	ReceiverID  uuid.UUID        `json:"receiverId" gorm:"type:uuid;primary_key"`
	Status      ConnectionStatus `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Other returns the opposite party of the connection.
func (c *Connection) Other(userID uuid.UUID) uuid.UUID {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// StatusFor reports the relationship status from userID's perspective.
func (c *Connection) StatusFor(userID uuid.UUID) RelationshipStatus {
	if c.Status == ConnectionStatusAccepted {
		return RelationshipAccepted
	}
	if c.RequesterID == userID {
		return RelationshipSent
	}
	return RelationshipReceived
}
