package models

import (
	"time"
)

// ConnectionStatus represents the state of a connection
type ConnectionStatus string

const (
	ConnectionStatusActive ConnectionStatus = "active"
)

// Connection represents an active mutual relationship between two users,
// formed only by acceptance of a connection request. The pair is stored
// normalized: User1ID is always the smaller id.
type Connection struct {
	ID        int64            `db:"id"`
	User1ID   int64            `db:"user1_id"`
	User2ID   int64            `db:"user2_id"`
	Status    ConnectionStatus `db:"status"`
	CreatedAt time.Time        `db:"created_at"`
}

// NormalizePair orders two user ids so the smaller comes first.
func NormalizePair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}

// Involves checks if a user is part of the connection
func (c *Connection) Involves(userID int64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// Other returns the other user of the connection for a given participant
func (c *Connection) Other(userID int64) int64 {
	if c.User1ID == userID {
		return c.User2ID
	}
	if c.User2ID == userID {
		return c.User1ID
	}
	return 0
}
