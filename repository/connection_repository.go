package repository

import (
	"context"
	"errors"
	"fmt"

	"skillswap/database"
	"skillswap/models"
	"skillswap/service"

	"github.com/jackc/pgx/v5/pgconn"
)

// ConnectionRepository implements connection data access
type ConnectionRepository struct {
	q queryable
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *database.DB) *ConnectionRepository {
	return &ConnectionRepository{q: db.Pool}
}

// newConnectionRepositoryWithTx creates a new connection repository with a transaction
func newConnectionRepositoryWithTx(tx queryable) *ConnectionRepository {
	return &ConnectionRepository{q: tx}
}

// Create inserts an active connection for the pair. The partial unique
// index over the normalized pair rejects a second active connection.
func (r *ConnectionRepository) Create(ctx context.Context, userA, userB int64) (*models.Connection, error) {
	user1, user2 := models.NormalizePair(userA, userB)

	query := `
		INSERT INTO connections (user1_id, user2_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, user1_id, user2_id, status, created_at
	`

	var conn models.Connection
	err := r.q.QueryRow(ctx, query, user1, user2, models.ConnectionStatusActive).Scan(
		&conn.ID,
		&conn.User1ID,
		&conn.User2ID,
		&conn.Status,
		&conn.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCodeUniqueViolation {
			return nil, service.ErrAlreadyConnected
		}
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}

	return &conn, nil
}

// ActiveBetween reports whether an active connection exists for the pair
func (r *ConnectionRepository) ActiveBetween(ctx context.Context, userA, userB int64) (bool, error) {
	user1, user2 := models.NormalizePair(userA, userB)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM connections
			WHERE user1_id = $1 AND user2_id = $2 AND status = $3
		)
	`

	var exists bool
	err := r.q.QueryRow(ctx, query, user1, user2, models.ConnectionStatusActive).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check connection between %d and %d: %w", userA, userB, err)
	}

	return exists, nil
}

// ListActiveForUser returns active connections involving the user
func (r *ConnectionRepository) ListActiveForUser(ctx context.Context, userID int64) ([]*models.Connection, error) {
	query := `
		SELECT id, user1_id, user2_id, status, created_at
		FROM connections
		WHERE status = $1 AND (user1_id = $2 OR user2_id = $2)
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, models.ConnectionStatusActive, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections for user %d: %w", userID, err)
	}
	defer rows.Close()

	var connections []*models.Connection
	for rows.Next() {
		var conn models.Connection
		err := rows.Scan(
			&conn.ID,
			&conn.User1ID,
			&conn.User2ID,
			&conn.Status,
			&conn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		connections = append(connections, &conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connections: %w", err)
	}

	return connections, nil
}
