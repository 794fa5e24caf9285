package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ridetrack/server/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	GetAllExcept(ctx context.Context, id uuid.UUID) ([]*domain.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserSession, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	GetAll(ctx context.Context) ([]*domain.Group, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	GetMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.User, error)
	GetGroupIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type ConnectionRepository interface {
	Create(ctx context.Context, conn *domain.Connection) error
	// GetBetween returns the connection between the two users in either
	// direction, or gorm.ErrRecordNotFound if no row exists.
	GetBetween(ctx context.Context, a, b uuid.UUID) (*domain.Connection, error)
	// GetPending returns the pending connection with exactly this
	// (requester, receiver) direction.
	GetPending(ctx context.Context, requesterID, receiverID uuid.UUID) (*domain.Connection, error)
	Update(ctx context.Context, conn *domain.Connection) error
	GetAllForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Connection, error)
}

type RideRepository interface {
	Create(ctx context.Context, ride *domain.RideSession) error
	GetActiveByGroupID(ctx context.Context, groupID uuid.UUID) (*domain.RideSession, error)
	GetByGroupID(ctx context.Context, groupID uuid.UUID) ([]*domain.RideSession, error)
	Update(ctx context.Context, ride *domain.RideSession) error
}

// TxManager runs fn against a transaction-scoped copy of the repositories.
// Every check-then-act state transition goes through it.
type TxManager interface {
	Transaction(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	User       UserRepository
	Session    SessionRepository
	Group      GroupRepository
	Connection ConnectionRepository
	Ride       RideRepository
	Tx         TxManager
}
