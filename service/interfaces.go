package service

import (
	"context"

	"skillswap/events"
	"skillswap/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, returning nil if none exists
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail retrieves a user by email (case-insensitive), returning nil if none exists
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Create inserts a new user, filling in ID and timestamps.
	// Returns ErrDuplicateEmail if the email is already taken.
	Create(ctx context.Context, user *models.User) error
}

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// GetByUserID retrieves the wallet for a user, returning nil if none exists
	GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error)

	// Create creates a wallet for a user seeded with the initial balance
	Create(ctx context.Context, userID int64, initialBalance int64) (*models.Wallet, error)

	// ApplyDelta applies signed deltas to the three balance fields in one
	// guarded statement and returns the updated wallet. Fails with
	// ErrWalletNotFound if no wallet exists, or *InsufficientFundsError if
	// any resulting field would go negative.
	ApplyDelta(ctx context.Context, userID int64, delta models.BalanceDelta) (*models.Wallet, error)
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Append writes an immutable ledger entry, filling in ID and CreatedAt
	Append(ctx context.Context, txn *models.Transaction) error

	// ListForWallet returns entries for a wallet, newest first
	ListForWallet(ctx context.Context, walletID int64, limit int) ([]*models.Transaction, error)

	// GetHoldForRequest returns the pending hold entry tagged with the
	// request id, or nil if none exists
	GetHoldForRequest(ctx context.Context, requestID int64) (*models.Transaction, error)

	// MarkStatus transitions an entry from one status to another. The
	// update is guarded on the current status; a row already moved past
	// it is reported as ErrInvalidState.
	MarkStatus(ctx context.Context, id int64, from, to models.TransactionStatus) error
}

// ConnectionRequestRepository defines the interface for request data access
type ConnectionRequestRepository interface {
	// Create inserts a new pending request, filling in ID and CreatedAt.
	// A racing duplicate over the pending-pair index is returned as
	// ErrDuplicateRequest.
	Create(ctx context.Context, request *models.ConnectionRequest) error

	// GetByID retrieves a request by id, returning nil if none exists
	GetByID(ctx context.Context, id int64) (*models.ConnectionRequest, error)

	// HasPendingBetween reports whether a pending request exists between
	// the pair in either direction
	HasPendingBetween(ctx context.Context, userA, userB int64) (bool, error)

	// MarkResolved transitions a pending request to a terminal status.
	// Returns false when the request was no longer pending, so a racing
	// second transition can be rejected rather than overwritten.
	MarkResolved(ctx context.Context, id int64, to models.RequestStatus) (bool, error)

	// ListPendingForUser returns pending requests the user sent or received
	ListPendingForUser(ctx context.Context, userID int64) ([]*models.ConnectionRequest, error)
}

// ConnectionRepository defines the interface for connection data access
type ConnectionRepository interface {
	// Create inserts an active connection for the pair. A second active
	// connection for the same pair is returned as ErrAlreadyConnected.
	Create(ctx context.Context, userA, userB int64) (*models.Connection, error)

	// ActiveBetween reports whether an active connection exists for the pair
	ActiveBetween(ctx context.Context, userA, userB int64) (bool, error)

	// ListActiveForUser returns active connections involving the user
	ListActiveForUser(ctx context.Context, userID int64) ([]*models.Connection, error)
}

// SessionRepository defines the interface for session token data access
type SessionRepository interface {
	// Create persists a new session token
	Create(ctx context.Context, session *models.Session) error

	// GetByToken retrieves an unexpired session, returning nil if none exists
	GetByToken(ctx context.Context, token string) (*models.Session, error)

	// Delete removes a session token
	Delete(ctx context.Context, token string) error
}

// UserService defines the interface for registration and identity
type UserService interface {
	// Register creates a user with a seeded wallet and initial allocation
	// ledger entry, all in one transaction
	Register(ctx context.Context, email, password, fullName string) (*models.User, error)

	// Login verifies credentials and issues an opaque session token
	Login(ctx context.Context, email, password string) (*models.Session, error)

	// Authenticate resolves a session token to its user
	Authenticate(ctx context.Context, token string) (*models.User, error)

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// LedgerService coordinates connection-request transitions with wallet
// holds and ledger entries. Each operation is one atomic transaction.
type LedgerService interface {
	// SendRequest creates a pending request and holds the request cost
	// from the sender's available balance
	SendRequest(ctx context.Context, senderID, receiverID int64) (*models.ConnectionRequest, error)

	// AcceptRequest settles the hold: the sender's held credits are
	// forfeited and the receiver is credited the same amount
	AcceptRequest(ctx context.Context, requestID, actingUserID int64) (*models.ConnectionRequest, error)

	// DeclineRequest refunds the hold to the sender
	DeclineRequest(ctx context.Context, requestID, actingUserID int64) (*models.ConnectionRequest, error)

	// CancelRequest refunds the hold to the sender; only the sender may cancel
	CancelRequest(ctx context.Context, requestID, actingUserID int64) (*models.ConnectionRequest, error)

	// ListPendingRequests returns pending requests involving the user
	ListPendingRequests(ctx context.Context, userID int64) ([]*models.ConnectionRequest, error)

	// ListConnections returns the user's active connections
	ListConnections(ctx context.Context, userID int64) ([]*models.Connection, error)
}

// WalletService defines the interface for wallet reads
type WalletService interface {
	// GetWallet returns the user's current balances
	GetWallet(ctx context.Context, userID int64) (*models.Wallet, error)

	// ListTransactions returns the user's ledger entries, newest first
	ListTransactions(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	WalletRepository() WalletRepository
	TransactionRepository() TransactionRepository
	ConnectionRequestRepository() ConnectionRequestRepository
	ConnectionRepository() ConnectionRepository
	SessionRepository() SessionRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
