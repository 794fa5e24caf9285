package postgres_test

import (
	"context"
	"testing"

	"github.com/ridetrack/server/internal/domain"
	"github.com/ridetrack/server/internal/repository"
	"github.com/ridetrack/server/internal/repository/postgres"
	"github.com/ridetrack/server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestConnectionRepository_GetBetween(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	alice, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	_, err := repos.Connection.GetBetween(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	conn := &domain.Connection{
		RequesterID: alice.ID,
		ReceiverID:  bob.ID,
		Status:      domain.ConnectionStatusPending,
	}
	require.NoError(t, repos.Connection.Create(ctx, conn))

	// The row is found regardless of argument order.
	found, err := repos.Connection.GetBetween(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.RequesterID)

	found, err = repos.Connection.GetBetween(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.RequesterID)

	// GetPending is strictly directional.
	_, err = repos.Connection.GetPending(ctx, bob.ID, alice.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	pending, err := repos.Connection.GetPending(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConnectionStatusPending, pending.Status)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	alice, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	err := repos.Tx.Transaction(ctx, func(txRepos *repository.Repositories) error {
		conn := &domain.Connection{
			RequesterID: alice.ID,
			ReceiverID:  bob.ID,
			Status:      domain.ConnectionStatusPending,
		}
		if err := txRepos.Connection.Create(ctx, conn); err != nil {
			return err
		}
		return domain.ErrConnectionExists
	})
	assert.ErrorIs(t, err, domain.ErrConnectionExists)

	// The failed transaction left nothing behind.
	_, err = repos.Connection.GetBetween(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGroupRepository_Membership(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	group := testutil.NewGroupBuilder().Build(t, testDB.DB)

	isMember, err := repos.Group.IsMember(ctx, group.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, isMember)

	require.NoError(t, repos.Group.AddMember(ctx, group.ID, user.ID))

	isMember, err = repos.Group.IsMember(ctx, group.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	ids, err := repos.Group.GetGroupIDsForUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, group.ID, ids[0])

	require.NoError(t, repos.Group.RemoveMember(ctx, group.ID, user.ID))

	members, err := repos.Group.GetMembers(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}
