package repository

import (
	"context"
	"errors"
	"fmt"

	"skillswap/database"
	"skillswap/models"
	"skillswap/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ConnectionRequestRepository implements connection request data access
type ConnectionRequestRepository struct {
	q queryable
}

// NewConnectionRequestRepository creates a new connection request repository
func NewConnectionRequestRepository(db *database.DB) *ConnectionRequestRepository {
	return &ConnectionRequestRepository{q: db.Pool}
}

// newConnectionRequestRepositoryWithTx creates a new connection request repository with a transaction
func newConnectionRequestRepositoryWithTx(tx queryable) *ConnectionRequestRepository {
	return &ConnectionRequestRepository{q: tx}
}

// Create inserts a new pending request. Concurrent sends for the same pair
// race on the partial unique index; the loser comes back as ErrDuplicateRequest.
func (r *ConnectionRequestRepository) Create(ctx context.Context, request *models.ConnectionRequest) error {
	query := `
		INSERT INTO connection_requests (sender_id, receiver_id, status, credits_held)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		request.SenderID,
		request.ReceiverID,
		request.Status,
		request.CreditsHeld,
	).Scan(&request.ID, &request.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation {
			return service.ErrDuplicateRequest
		}
		return fmt.Errorf("failed to create connection request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by id
func (r *ConnectionRequestRepository) GetByID(ctx context.Context, id int64) (*models.ConnectionRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, credits_held, created_at, resolved_at
		FROM connection_requests
		WHERE id = $1
	`

	var request models.ConnectionRequest
	err := r.q.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.SenderID,
		&request.ReceiverID,
		&request.Status,
		&request.CreditsHeld,
		&request.CreatedAt,
		&request.ResolvedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection request %d: %w", id, err)
	}

	return &request, nil
}

// HasPendingBetween reports whether a pending request exists between the
// pair in either direction
func (r *ConnectionRequestRepository) HasPendingBetween(ctx context.Context, userA, userB int64) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM connection_requests
			WHERE status = $1
			  AND ((sender_id = $2 AND receiver_id = $3) OR (sender_id = $3 AND receiver_id = $2))
		)
	`

	var exists bool
	err := r.q.QueryRow(ctx, query, models.RequestStatusPending, userA, userB).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending requests between %d and %d: %w", userA, userB, err)
	}

	return exists, nil
}

// MarkResolved transitions a pending request to a terminal status. Returns
// false when the guard matched no row, meaning another transition already won.
func (r *ConnectionRequestRepository) MarkResolved(ctx context.Context, id int64, to models.RequestStatus) (bool, error) {
	query := `
		UPDATE connection_requests
		SET status = $1, resolved_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.Exec(ctx, query, to, id, models.RequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to resolve connection request %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}

// ListPendingForUser returns pending requests the user sent or received
func (r *ConnectionRequestRepository) ListPendingForUser(ctx context.Context, userID int64) ([]*models.ConnectionRequest, error) {
	query := `
		SELECT id, sender_id, receiver_id, status, credits_held, created_at, resolved_at
		FROM connection_requests
		WHERE status = $1 AND (sender_id = $2 OR receiver_id = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, models.RequestStatusPending, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests for user %d: %w", userID, err)
	}
	defer rows.Close()

	var requests []*models.ConnectionRequest
	for rows.Next() {
		var request models.ConnectionRequest
		err := rows.Scan(
			&request.ID,
			&request.SenderID,
			&request.ReceiverID,
			&request.Status,
			&request.CreditsHeld,
			&request.CreatedAt,
			&request.ResolvedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection request: %w", err)
		}
		requests = append(requests, &request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connection requests: %w", err)
	}

	return requests, nil
}
