package postgres

import (
	"context"

	"github.com/ridetrack/server/internal/domain"
	"github.com/ridetrack/server/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.UserSession{},
		&domain.Group{},
		&domain.GroupMember{},
		&domain.Connection{},
		&domain.RideSession{},
	)
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		User:       NewUserRepository(db),
		Session:    NewSessionRepository(db),
		Group:      NewGroupRepository(db),
		Connection: NewConnectionRepository(db),
		Ride:       NewRideRepository(db),
		Tx:         &txManager{db: db},
	}
}

type txManager struct {
	db *gorm.DB
}

// Transaction rebinds the repositories onto a single gorm transaction so a
// check-then-act sequence commits or rolls back as one unit.
func (m *txManager) Transaction(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
