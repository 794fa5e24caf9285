package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ridetrack/server/internal/domain"
	"github.com/ridetrack/server/internal/repository/postgres"
	"github.com/ridetrack/server/internal/service"
	"github.com/ridetrack/server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*service.AuthService, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	return service.NewAuthService(repos.User, repos.Session, testutil.TestConfig()), testDB
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, service.RegisterInput{
		Username: "roadrunner",
		Email:    "roadrunner@example.com",
		Password: "supersecret",
		City:     "Tucson",
	})
	require.NoError(t, err)
	assert.Equal(t, "roadrunner", user.Username)
	assert.NotEqual(t, "supersecret", user.PasswordHash)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, service.RegisterInput{
			Username: "someone_else",
			Email:    "roadrunner@example.com",
			Password: "supersecret",
		})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, service.RegisterInput{
			Username: "roadrunner",
			Email:    "other@example.com",
			Password: "supersecret",
		})
		assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	})
}

func TestAuthService_ConcurrentRegister(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	const attempts = 6

	// Racing registrations for the same identity: exactly one wins, the
	// rest see a taken email or username, never a raw database error.
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, service.RegisterInput{
				Username: "tandem",
				Email:    "tandem@example.com",
				Password: "supersecret",
				City:     "Davis",
			})
		}(i)
	}
	wg.Wait()

	var successes, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, domain.ErrUsernameTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, taken)
}

func TestAuthService_Login(t *testing.T) {
	svc, testDB := newAuthService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	t.Run("valid credentials", func(t *testing.T) {
		result, err := svc.Login(ctx, service.LoginInput{
			Email:    user.Email,
			Password: password,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)

		claims, err := svc.ValidateToken(result.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), (*claims)["sub"])
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, service.LoginInput{
			Email:    user.Email,
			Password: "not-the-password",
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, service.LoginInput{
			Email:    "ghost@example.com",
			Password: password,
		})
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestAuthService_OneLiveSessionPerUser(t *testing.T) {
	svc, testDB := newAuthService(t)
	ctx := context.Background()

	user, password := testutil.NewUserBuilder().Build(t, testDB.DB)

	for i := 0; i < 3; i++ {
		_, err := svc.Login(ctx, service.LoginInput{
			Email:    user.Email,
			Password: password,
		})
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, testDB.DB.Model(&domain.UserSession{}).
		Where("user_id = ?", user.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAuthService_ValidateToken(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
