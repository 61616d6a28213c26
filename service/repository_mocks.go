package service

import (
	"context"

	"skillswap/events"
	"skillswap/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, userID int64, initialBalance int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ApplyDelta(ctx context.Context, userID int64, delta models.BalanceDelta) (*models.Wallet, error) {
	args := m.Called(ctx, userID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListForWallet(ctx context.Context, walletID int64, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetHoldForRequest(ctx context.Context, requestID int64) (*models.Transaction, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) MarkStatus(ctx context.Context, id int64, from, to models.TransactionStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

// MockConnectionRequestRepository is a mock implementation of ConnectionRequestRepository
type MockConnectionRequestRepository struct {
	mock.Mock
}

func (m *MockConnectionRequestRepository) Create(ctx context.Context, request *models.ConnectionRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockConnectionRequestRepository) GetByID(ctx context.Context, id int64) (*models.ConnectionRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConnectionRequest), args.Error(1)
}

func (m *MockConnectionRequestRepository) HasPendingBetween(ctx context.Context, userA, userB int64) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *MockConnectionRequestRepository) MarkResolved(ctx context.Context, id int64, to models.RequestStatus) (bool, error) {
	args := m.Called(ctx, id, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockConnectionRequestRepository) ListPendingForUser(ctx context.Context, userID int64) ([]*models.ConnectionRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConnectionRequest), args.Error(1)
}

// MockConnectionRepository is a mock implementation of ConnectionRepository
type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) Create(ctx context.Context, userA, userB int64) (*models.Connection, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Connection), args.Error(1)
}

func (m *MockConnectionRepository) ActiveBetween(ctx context.Context, userA, userB int64) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *MockConnectionRepository) ListActiveForUser(ctx context.Context, userID int64) ([]*models.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Connection), args.Error(1)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Begin, Commit and
// Rollback run through testify expectations; the repository getters return
// whatever SetRepositories installed.
type MockUnitOfWork struct {
	mock.Mock

	userRepo        UserRepository
	walletRepo      WalletRepository
	transactionRepo TransactionRepository
	requestRepo     ConnectionRequestRepository
	connectionRepo  ConnectionRepository
	sessionRepo     SessionRepository
	eventBus        EventPublisher
}

// SetRepositories installs the mock repositories returned by the getters.
// Pass nil for repositories the test never touches.
func (m *MockUnitOfWork) SetRepositories(
	userRepo UserRepository,
	walletRepo WalletRepository,
	transactionRepo TransactionRepository,
	requestRepo ConnectionRequestRepository,
	connectionRepo ConnectionRepository,
	sessionRepo SessionRepository,
) {
	m.userRepo = userRepo
	m.walletRepo = walletRepo
	m.transactionRepo = transactionRepo
	m.requestRepo = requestRepo
	m.connectionRepo = connectionRepo
	m.sessionRepo = sessionRepo
}

// SetEventBus installs the publisher returned by EventBus
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) WalletRepository() WalletRepository {
	return m.walletRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) ConnectionRequestRepository() ConnectionRequestRepository {
	return m.requestRepo
}

func (m *MockUnitOfWork) ConnectionRepository() ConnectionRepository {
	return m.connectionRepo
}

func (m *MockUnitOfWork) SessionRepository() SessionRepository {
	return m.sessionRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return &noopPublisher{}
	}
	return m.eventBus
}

type noopPublisher struct{}

func (*noopPublisher) Publish(events.Event) {}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
