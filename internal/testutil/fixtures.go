package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ridetrack/server/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	password string
	city     string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("rider_%s", suffix),
		email:    fmt.Sprintf("rider_%s@example.com", suffix),
		password: "testpassword123",
		city:     "Portland",
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithCity sets the city
func (b *UserBuilder) WithCity(city string) *UserBuilder {
	b.city = city
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
		City:         b.city,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// BuildAndAuthenticate creates a user via the API and returns the user and access token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	registerBody, _ := json.Marshal(map[string]string{
		"username": b.username,
		"email":    b.email,
		"password": b.password,
		"city":     b.city,
	})

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(registerBody))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected register status code: %d", resp.StatusCode)
	}

	loginBody, _ := json.Marshal(map[string]string{
		"email":    b.email,
		"password": b.password,
	})

	resp, err = http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(loginBody))
	if err != nil {
		t.Fatalf("failed to log in user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, _ := uuid.Parse(authResp.User.ID)
	user := &domain.User{
		ID:       userID,
		Username: authResp.User.Username,
		Email:    b.email,
	}

	return user, authResp.AccessToken
}

// GroupBuilder creates test groups with a builder pattern
type GroupBuilder struct {
	creator     *domain.User
	name        string
	description string
	members     []*domain.User
}

// NewGroupBuilder creates a new GroupBuilder with default values
func NewGroupBuilder() *GroupBuilder {
	return &GroupBuilder{
		name:        fmt.Sprintf("group_%s", uuid.New().String()[:8]),
		description: "Weekend canyon rides",
	}
}

// WithCreator sets the group creator
func (b *GroupBuilder) WithCreator(user *domain.User) *GroupBuilder {
	b.creator = user
	return b
}

// WithName sets the group name
func (b *GroupBuilder) WithName(name string) *GroupBuilder {
	b.name = name
	return b
}

// WithDescription sets the group description
func (b *GroupBuilder) WithDescription(description string) *GroupBuilder {
	b.description = description
	return b
}

// WithMembers pre-joins the given users
func (b *GroupBuilder) WithMembers(users ...*domain.User) *GroupBuilder {
	b.members = append(b.members, users...)
	return b
}

// Build creates the group (and any members) in the database
func (b *GroupBuilder) Build(t *testing.T, db *gorm.DB) *domain.Group {
	t.Helper()

	if b.creator == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.creator = user
	}

	group := &domain.Group{
		ID:          uuid.New(),
		Name:        b.name,
		Description: b.description,
		CreatorID:   b.creator.ID,
		CreatedAt:   time.Now(),
	}

	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create group: %v", err)
	}

	for _, member := range b.members {
		gm := &domain.GroupMember{GroupID: group.ID, UserID: member.ID}
		if err := db.Create(gm).Error; err != nil {
			t.Fatalf("failed to add group member: %v", err)
		}
	}

	return group
}
