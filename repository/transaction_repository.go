package repository

import (
	"context"
	"fmt"

	"skillswap/database"
	"skillswap/models"
	"skillswap/service"

	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements the append-only ledger
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

// newTransactionRepositoryWithTx creates a new transaction repository with a transaction
func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

// Append writes an immutable ledger entry
func (r *TransactionRepository) Append(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (wallet_id, amount, type, status, related_user_id, connection_request_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.WalletID,
		txn.Amount,
		txn.Type,
		txn.Status,
		txn.RelatedUserID,
		txn.ConnectionRequestID,
		txn.Note,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append transaction for wallet %d: %w", txn.WalletID, err)
	}

	return nil
}

// ListForWallet returns entries for a wallet, newest first
func (r *TransactionRepository) ListForWallet(ctx context.Context, walletID int64, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, wallet_id, amount, type, status, related_user_id, connection_request_id, note, created_at
		FROM transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for wallet %d: %w", walletID, err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.WalletID,
			&txn.Amount,
			&txn.Type,
			&txn.Status,
			&txn.RelatedUserID,
			&txn.ConnectionRequestID,
			&txn.Note,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// GetHoldForRequest returns the pending hold entry tagged with the request id
func (r *TransactionRepository) GetHoldForRequest(ctx context.Context, requestID int64) (*models.Transaction, error) {
	query := `
		SELECT id, wallet_id, amount, type, status, related_user_id, connection_request_id, note, created_at
		FROM transactions
		WHERE connection_request_id = $1 AND type = $2 AND status = $3
	`

	var txn models.Transaction
	err := r.q.QueryRow(ctx, query,
		requestID,
		models.TransactionTypeRequestSent,
		models.TransactionStatusPending,
	).Scan(
		&txn.ID,
		&txn.WalletID,
		&txn.Amount,
		&txn.Type,
		&txn.Status,
		&txn.RelatedUserID,
		&txn.ConnectionRequestID,
		&txn.Note,
		&txn.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hold entry for request %d: %w", requestID, err)
	}

	return &txn, nil
}

// MarkStatus transitions an entry from one status to another. The guard on
// the current status makes a repeated settlement a no-op rejected as
// ErrInvalidState instead of a blind overwrite.
func (r *TransactionRepository) MarkStatus(ctx context.Context, id int64, from, to models.TransactionStatus) error {
	query := `
		UPDATE transactions
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.Exec(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update transaction %d status: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return service.ErrInvalidState
	}

	return nil
}
