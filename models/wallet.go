package models

import (
	"time"
)

// Wallet holds a user's credit balances. Available is spendable now,
// Outgoing is held against pending requests the user sent, Incoming is
// pledged to the user by pending requests from others. All three are
// non-negative at all times.
type Wallet struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Available int64     `db:"available_balance"`
	Outgoing  int64     `db:"outgoing_balance"`
	Incoming  int64     `db:"incoming_balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BalanceDelta is a signed adjustment applied to all three wallet fields
// in a single statement.
type BalanceDelta struct {
	Available int64
	Outgoing  int64
	Incoming  int64
}

// IsZero reports whether the delta changes nothing.
func (d BalanceDelta) IsZero() bool {
	return d.Available == 0 && d.Outgoing == 0 && d.Incoming == 0
}
