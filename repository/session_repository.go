package repository

import (
	"context"
	"fmt"

	"skillswap/database"
	"skillswap/models"

	"github.com/jackc/pgx/v5"
)

// SessionRepository implements session token data access
type SessionRepository struct {
	q queryable
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{q: db.Pool}
}

// newSessionRepositoryWithTx creates a new session repository with a transaction
func newSessionRepositoryWithTx(tx queryable) *SessionRepository {
	return &SessionRepository{q: tx}
}

// Create persists a new session token
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query,
		session.Token,
		session.UserID,
		session.ExpiresAt,
	).Scan(&session.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create session for user %d: %w", session.UserID, err)
	}

	return nil
}

// GetByToken retrieves an unexpired session
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token, user_id, created_at, expires_at
		FROM sessions
		WHERE token = $1 AND expires_at > NOW()
	`

	var session models.Session
	err := r.q.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// Delete removes a session token
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	query := `DELETE FROM sessions WHERE token = $1`

	if _, err := r.q.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}
