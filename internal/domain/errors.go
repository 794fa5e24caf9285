package domain

import "errors"

// User errors
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already in use")
	ErrEmailTaken    = errors.New("email already in use")
)

// Connection errors
var (
	ErrSelfConnection   = errors.New("cannot connect with yourself")
	ErrConnectionExists = errors.New("a connection or pending request already exists")
	ErrNoPendingRequest = errors.New("no pending request found from this user")
)

// Group errors
var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrGroupNameRequired = errors.New("group name is required")
	ErrNotGroupMember    = errors.New("user is not a member of this group")
)

// Ride errors
var (
	ErrNotGroupCreator   = errors.New("only the group creator can perform this action")
	ErrRideAlreadyActive = errors.New("a ride is already active for this group")
	ErrNoActiveRide      = errors.New("no active ride found for this group")
)
