package repository

import (
	"context"
	"fmt"

	"skillswap/database"
	"skillswap/models"
	"skillswap/service"

	"github.com/jackc/pgx/v5"
)

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// GetByUserID retrieves the wallet for a user
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `
		SELECT id, user_id, available_balance, outgoing_balance, incoming_balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Available,
		&wallet.Outgoing,
		&wallet.Incoming,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}

	return &wallet, nil
}

// Create creates a wallet for a user seeded with the initial balance
func (r *WalletRepository) Create(ctx context.Context, userID int64, initialBalance int64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, available_balance)
		VALUES ($1, $2)
		RETURNING id, user_id, available_balance, outgoing_balance, incoming_balance, created_at, updated_at
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, userID, initialBalance).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Available,
		&wallet.Outgoing,
		&wallet.Incoming,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d: %w", userID, err)
	}

	return &wallet, nil
}

// ApplyDelta applies signed deltas to the three balance fields in one
// guarded statement. The WHERE clause refuses any update that would take
// a field negative, so insufficient funds never partially apply.
func (r *WalletRepository) ApplyDelta(ctx context.Context, userID int64, delta models.BalanceDelta) (*models.Wallet, error) {
	query := `
		UPDATE wallets
		SET available_balance = available_balance + $1,
		    outgoing_balance = outgoing_balance + $2,
		    incoming_balance = incoming_balance + $3,
		    updated_at = NOW()
		WHERE user_id = $4
		  AND available_balance + $1 >= 0
		  AND outgoing_balance + $2 >= 0
		  AND incoming_balance + $3 >= 0
		RETURNING id, user_id, available_balance, outgoing_balance, incoming_balance, created_at, updated_at
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query,
		delta.Available,
		delta.Outgoing,
		delta.Incoming,
		userID,
	).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Available,
		&wallet.Outgoing,
		&wallet.Incoming,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		// Distinguish a missing wallet from a balance that would go negative
		current, getErr := r.GetByUserID(ctx, userID)
		if getErr != nil {
			return nil, fmt.Errorf("failed to check wallet: %w", getErr)
		}
		if current == nil {
			return nil, service.ErrWalletNotFound
		}
		return nil, &service.InsufficientFundsError{
			Available: current.Available,
			Needed:    -delta.Available,
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply balance delta for user %d: %w", userID, err)
	}

	return &wallet, nil
}
