package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ridetrack/server/internal/domain"
	"github.com/ridetrack/server/internal/repository/postgres"
	"github.com/ridetrack/server/internal/service"
	"github.com/ridetrack/server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRideService(t *testing.T) (*service.RideService, *testutil.TestDB) {
	t.Helper()
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	return service.NewRideService(repos.Group, repos.Ride, repos.Tx), testDB
}

func TestRideService_Lifecycle(t *testing.T) {
	svc, testDB := newRideService(t)
	ctx := context.Background()

	creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	outsider, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	group := testutil.NewGroupBuilder().WithCreator(creator).Build(t, testDB.DB)

	t.Run("unknown group", func(t *testing.T) {
		_, err := svc.StartRide(ctx, creator.ID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	})

	t.Run("only creator may start", func(t *testing.T) {
		_, err := svc.StartRide(ctx, outsider.ID, group.ID)
		assert.ErrorIs(t, err, domain.ErrNotGroupCreator)
	})

	t.Run("ending with nothing active fails", func(t *testing.T) {
		_, err := svc.EndRide(ctx, creator.ID, group.ID)
		assert.ErrorIs(t, err, domain.ErrNoActiveRide)
	})

	var first *domain.RideSession

	t.Run("creator starts a ride", func(t *testing.T) {
		ride, err := svc.StartRide(ctx, creator.ID, group.ID)
		require.NoError(t, err)
		assert.True(t, ride.Active)
		assert.Nil(t, ride.EndTime)
		first = ride
	})

	t.Run("second start conflicts while active", func(t *testing.T) {
		_, err := svc.StartRide(ctx, creator.ID, group.ID)
		assert.ErrorIs(t, err, domain.ErrRideAlreadyActive)
	})

	t.Run("only creator may end", func(t *testing.T) {
		_, err := svc.EndRide(ctx, outsider.ID, group.ID)
		assert.ErrorIs(t, err, domain.ErrNotGroupCreator)
	})

	t.Run("creator ends the ride", func(t *testing.T) {
		ride, err := svc.EndRide(ctx, creator.ID, group.ID)
		require.NoError(t, err)
		assert.False(t, ride.Active)
		require.NotNil(t, ride.EndTime)
		assert.Equal(t, first.ID, ride.ID)
	})

	t.Run("ending twice fails", func(t *testing.T) {
		_, err := svc.EndRide(ctx, creator.ID, group.ID)
		assert.ErrorIs(t, err, domain.ErrNoActiveRide)
	})

	t.Run("group returns to idle and can start again", func(t *testing.T) {
		second, err := svc.StartRide(ctx, creator.ID, group.ID)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		history, err := svc.RideHistory(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	})
}

func TestRideService_ConcurrentStarts(t *testing.T) {
	svc, testDB := newRideService(t)
	ctx := context.Background()

	creator, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	group := testutil.NewGroupBuilder().WithCreator(creator).Build(t, testDB.DB)

	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.StartRide(ctx, creator.ID, group.ID)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrRideAlreadyActive):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	// Exactly one active session survives the stampede.
	history, err := svc.RideHistory(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Active)
}
