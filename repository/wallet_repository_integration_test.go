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

func TestWalletRepository_ApplyDelta_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	walletRepo := repository.NewWalletRepository(testDB.DB)
	user, _ := testutil.SeedUser(t, testDB.DB, "alice@example.com", 100)

	t.Run("hold moves credits from available to outgoing", func(t *testing.T) {
		wallet, err := walletRepo.ApplyDelta(ctx, user.ID, models.BalanceDelta{
			Available: -5,
			Outgoing:  5,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(95), wallet.Available)
		assert.Equal(t, int64(5), wallet.Outgoing)
	})

	t.Run("refund restores available", func(t *testing.T) {
		wallet, err := walletRepo.ApplyDelta(ctx, user.ID, models.BalanceDelta{
			Available: 5,
			Outgoing:  -5,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(100), wallet.Available)
		assert.Equal(t, int64(0), wallet.Outgoing)
	})

	t.Run("overdraft is rejected without partial application", func(t *testing.T) {
		wallet, err := walletRepo.ApplyDelta(ctx, user.ID, models.BalanceDelta{
			Available: -101,
			Outgoing:  101,
		})
		assert.True(t, service.IsInsufficientFunds(err))
		assert.Nil(t, wallet)

		// Nothing moved
		current, err := walletRepo.GetByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(100), current.Available)
		assert.Equal(t, int64(0), current.Outgoing)
	})

	t.Run("negative outgoing is rejected", func(t *testing.T) {
		_, err := walletRepo.ApplyDelta(ctx, user.ID, models.BalanceDelta{
			Outgoing: -1,
		})
		assert.Error(t, err)
	})

	t.Run("missing wallet", func(t *testing.T) {
		wallet, err := walletRepo.ApplyDelta(ctx, 999999, models.BalanceDelta{Available: -5})
		assert.ErrorIs(t, err, service.ErrWalletNotFound)
		assert.Nil(t, wallet)
	})
}

func TestWalletRepository_Create_Integration(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	walletRepo := repository.NewWalletRepository(testDB.DB)
	user := testutil.CreateTestUser("bob@example.com", "Bob")
	require.NoError(t, repository.NewUserRepository(testDB.DB).Create(ctx, user))

	wallet, err := walletRepo.Create(ctx, user.ID, 100)
	require.NoError(t, err)

	assert.Equal(t, user.ID, wallet.UserID)
	assert.Equal(t, int64(100), wallet.Available)
	assert.Equal(t, int64(0), wallet.Outgoing)
	assert.Equal(t, int64(0), wallet.Incoming)
}
