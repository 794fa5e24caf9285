package service

import (
	"github.com/ridetrack/server/internal/config"
	"github.com/ridetrack/server/internal/repository"
)

type Services struct {
	Auth       *AuthService
	Profile    *ProfileService
	Connection *ConnectionService
	Group      *GroupService
	Ride       *RideService
}

func NewServices(repos *repository.Repositories, cfg *config.Config) *Services {
	return &Services{
		Auth:       NewAuthService(repos.User, repos.Session, cfg),
		Profile:    NewProfileService(repos.User, repos.Group),
		Connection: NewConnectionService(repos.Connection, repos.User, repos.Tx),
		Group:      NewGroupService(repos.Group, repos.Ride, repos.Tx),
		Ride:       NewRideService(repos.Group, repos.Ride, repos.Tx),
	}
}
