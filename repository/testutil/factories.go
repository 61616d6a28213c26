package testutil

import (
	"context"
	"fmt"
	"testing"

	"skillswap/database"
	"skillswap/models"
	"skillswap/repository"

	"github.com/stretchr/testify/require"
)

// CreateTestUser builds an unsaved user with default values
func CreateTestUser(email, fullName string) *models.User {
	return &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: "$2a$04$test.hash.not.a.real.credential.padding",
	}
}

// SeedUser inserts a user with a seeded wallet and returns both
func SeedUser(t *testing.T, db *database.DB, email string, balance int64) (*models.User, *models.Wallet) {
	ctx := context.Background()

	user := CreateTestUser(email, "Test User")
	err := repository.NewUserRepository(db).Create(ctx, user)
	require.NoError(t, err)

	wallet, err := repository.NewWalletRepository(db).Create(ctx, user.ID, balance)
	require.NoError(t, err)

	return user, wallet
}

// SeedUsers inserts n users with seeded wallets using numbered emails
func SeedUsers(t *testing.T, db *database.DB, n int, balance int64) []*models.User {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, _ := SeedUser(t, db, fmt.Sprintf("user%d@example.com", i+1), balance)
		users = append(users, user)
	}
	return users
}

// SeedPendingRequest inserts a pending connection request between two users
func SeedPendingRequest(t *testing.T, db *database.DB, senderID, receiverID, credits int64) *models.ConnectionRequest {
	ctx := context.Background()

	request := &models.ConnectionRequest{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Status:      models.RequestStatusPending,
		CreditsHeld: credits,
	}
	err := repository.NewConnectionRequestRepository(db).Create(ctx, request)
	require.NoError(t, err)

	return request
}

// SeedHoldEntry inserts the pending ledger entry that accompanies a request
func SeedHoldEntry(t *testing.T, db *database.DB, walletID, requestID, receiverID, amount int64) *models.Transaction {
	ctx := context.Background()

	hold := &models.Transaction{
		WalletID:            walletID,
		Amount:              amount,
		Type:                models.TransactionTypeRequestSent,
		Status:              models.TransactionStatusPending,
		RelatedUserID:       &receiverID,
		ConnectionRequestID: &requestID,
		Note:                "credits held for connection request",
	}
	err := repository.NewTransactionRepository(db).Append(ctx, hold)
	require.NoError(t, err)

	return hold
}
