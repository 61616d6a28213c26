package models

import (
	"time"
)

// TransactionType represents the kind of ledger event
type TransactionType string

const (
	TransactionTypeInitialAllocation TransactionType = "initial_allocation"
	TransactionTypeRequestSent       TransactionType = "connection_request_sent"
	TransactionTypeRequestAccepted   TransactionType = "connection_request_accepted"
	TransactionTypeRequestDeclined   TransactionType = "connection_request_declined"
	TransactionTypeRequestCancelled  TransactionType = "connection_request_cancelled"
)

// TransactionStatus represents the settlement state of a ledger entry
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)

// Transaction is an immutable ledger entry. Amount is always positive;
// the Type says which direction the credits moved. The only permitted
// mutation is a status transition from pending to a terminal status.
type Transaction struct {
	ID                  int64             `db:"id"`
	WalletID            int64             `db:"wallet_id"`
	Amount              int64             `db:"amount"`
	Type                TransactionType   `db:"type"`
	Status              TransactionStatus `db:"status"`
	RelatedUserID       *int64            `db:"related_user_id"`
	ConnectionRequestID *int64            `db:"connection_request_id"`
	Note                string            `db:"note"`
	CreatedAt           time.Time         `db:"created_at"`
}
