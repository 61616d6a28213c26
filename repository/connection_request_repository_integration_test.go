package repository_test

import (
	"context"
	"testing"

	"skillswap/models"
	"skillswap/repository"
	"skillswap/repository/testutil"
	"skillswap/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionRequestRepository_PendingPairIndex_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	requestRepo := repository.NewConnectionRequestRepository(testDB.DB)
	users := testutil.SeedUsers(t, testDB.DB, 3, 100)
	alice, bob, carol := users[0], users[1], users[2]

	first := testutil.SeedPendingRequest(t, testDB.DB, alice.ID, bob.ID, 5)

	t.Run("duplicate pending request same direction", func(t *testing.T) {
		err := requestRepo.Create(ctx, &models.ConnectionRequest{
			SenderID:    alice.ID,
			ReceiverID:  bob.ID,
			Status:      models.RequestStatusPending,
			CreditsHeld: 5,
		})
		assert.ErrorIs(t, err, service.ErrDuplicateRequest)
	})

	t.Run("duplicate pending request reversed direction", func(t *testing.T) {
		// The index is on the unordered pair, so bob asking alice also collides
		err := requestRepo.Create(ctx, &models.ConnectionRequest{
			SenderID:    bob.ID,
			ReceiverID:  alice.ID,
			Status:      models.RequestStatusPending,
			CreditsHeld: 5,
		})
		assert.ErrorIs(t, err, service.ErrDuplicateRequest)
	})

	t.Run("different pair is unaffected", func(t *testing.T) {
		err := requestRepo.Create(ctx, &models.ConnectionRequest{
			SenderID:    alice.ID,
			ReceiverID:  carol.ID,
			Status:      models.RequestStatusPending,
			CreditsHeld: 5,
		})
		assert.NoError(t, err)
	})

	t.Run("resolved request frees the pair", func(t *testing.T) {
		transitioned, err := requestRepo.MarkResolved(ctx, first.ID, models.RequestStatusDeclined)
		require.NoError(t, err)
		require.True(t, transitioned)

		err = requestRepo.Create(ctx, &models.ConnectionRequest{
			SenderID:    alice.ID,
			ReceiverID:  bob.ID,
			Status:      models.RequestStatusPending,
			CreditsHeld: 5,
		})
		assert.NoError(t, err)
	})
}

func TestConnectionRequestRepository_MarkResolved_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	requestRepo := repository.NewConnectionRequestRepository(testDB.DB)
	users := testutil.SeedUsers(t, testDB.DB, 2, 100)
	request := testutil.SeedPendingRequest(t, testDB.DB, users[0].ID, users[1].ID, 5)

	transitioned, err := requestRepo.MarkResolved(ctx, request.ID, models.RequestStatusAccepted)
	require.NoError(t, err)
	assert.True(t, transitioned)

	// The guard refuses a second transition off pending
	transitioned, err = requestRepo.MarkResolved(ctx, request.ID, models.RequestStatusDeclined)
	require.NoError(t, err)
	assert.False(t, transitioned)

	resolved, err := requestRepo.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
}

func TestConnectionRequestRepository_ListPendingForUser_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	requestRepo := repository.NewConnectionRequestRepository(testDB.DB)
	users := testutil.SeedUsers(t, testDB.DB, 3, 100)
	alice, bob, carol := users[0], users[1], users[2]

	sent := testutil.SeedPendingRequest(t, testDB.DB, alice.ID, bob.ID, 5)
	received := testutil.SeedPendingRequest(t, testDB.DB, carol.ID, alice.ID, 5)

	// A resolved request is excluded from the pending list
	_, err := requestRepo.MarkResolved(ctx, received.ID, models.RequestStatusCancelled)
	require.NoError(t, err)

	pending, err := requestRepo.ListPendingForUser(ctx, alice.ID)
	require.NoError(t, err)

	require.Len(t, pending, 1)
	assert.Equal(t, sent.ID, pending[0].ID)
}
