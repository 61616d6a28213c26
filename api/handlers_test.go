package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"skillswap/models"
	"skillswap/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Register(ctx context.Context, email, password, fullName string) (*models.User, error) {
	args := m.Called(ctx, email, password, fullName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *mockUserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockLedgerService struct {
	mock.Mock
}

func (m *mockLedgerService) SendRequest(ctx context.Context, senderID, receiverID int64) (*models.ConnectionRequest, error) {
	args := m.Called(ctx, senderID, receiverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConnectionRequest), args.Error(1)
}

func (m *mockLedgerService) AcceptRequest(ctx context.Context, requestID, actingUserID int64) (*models.ConnectionRequest, error) {
	args := m.Called(ctx, requestID, actingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConnectionRequest), args.Error(1)
}

func (m *mockLedgerService) DeclineRequest(ctx context.Context, requestID, actingUserID int64) (*models.ConnectionRequest, error) {
	args := m.Called(ctx, requestID, actingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConnectionRequest), args.Error(1)
}

func (m *mockLedgerService) CancelRequest(ctx context.Context, requestID, actingUserID int64) (*models.ConnectionRequest, error) {
	args := m.Called(ctx, requestID, actingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConnectionRequest), args.Error(1)
}

func (m *mockLedgerService) ListPendingRequests(ctx context.Context, userID int64) ([]*models.ConnectionRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConnectionRequest), args.Error(1)
}

func (m *mockLedgerService) ListConnections(ctx context.Context, userID int64) ([]*models.Connection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Connection), args.Error(1)
}

type mockWalletService struct {
	mock.Mock
}

func (m *mockWalletService) GetWallet(ctx context.Context, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *mockWalletService) ListTransactions(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

type testServer struct {
	users   *mockUserService
	ledger  *mockLedgerService
	wallets *mockWalletService
	router  http.Handler
}

func newTestServer() *testServer {
	users := new(mockUserService)
	ledger := new(mockLedgerService)
	wallets := new(mockWalletService)
	handler := NewHandler(users, ledger, wallets)
	return &testServer{
		users:   users,
		ledger:  ledger,
		wallets: wallets,
		router:  NewRouter(handler),
	}
}

func (s *testServer) authenticated(user *models.User) {
	s.users.On("Authenticate", mock.Anything, "valid-token").Return(user, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Register(t *testing.T) {
	s := newTestServer()

	s.users.On("Register", mock.Anything, "alice@example.com", "hunter2secret", "Alice").
		Return(&models.User{ID: 1, Email: "alice@example.com", FullName: "Alice"}, nil)

	rec := doJSON(t, s.router, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":     "alice@example.com",
		"password":  "hunter2secret",
		"full_name": "Alice",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "alice@example.com", resp.Email)
}

func TestHandler_Register_DuplicateEmail(t *testing.T) {
	s := newTestServer()

	s.users.On("Register", mock.Anything, "alice@example.com", "hunter2secret", "Alice").
		Return(nil, service.ErrDuplicateEmail)

	rec := doJSON(t, s.router, "POST", "/api/v1/auth/register", "", map[string]string{
		"email":     "alice@example.com",
		"password":  "hunter2secret",
		"full_name": "Alice",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandler_Login(t *testing.T) {
	s := newTestServer()

	session := &models.Session{Token: "token-abc", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}
	s.users.On("Login", mock.Anything, "alice@example.com", "hunter2secret").Return(session, nil)

	rec := doJSON(t, s.router, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter2secret",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "token-abc", resp["token"])
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	s := newTestServer()

	s.users.On("Login", mock.Anything, "alice@example.com", "wrong").
		Return(nil, service.ErrInvalidCredentials)

	rec := doJSON(t, s.router, "POST", "/api/v1/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_GetWallet(t *testing.T) {
	s := newTestServer()
	s.authenticated(&models.User{ID: 1, Email: "alice@example.com"})

	s.wallets.On("GetWallet", mock.Anything, int64(1)).
		Return(&models.Wallet{ID: 10, UserID: 1, Available: 95, Outgoing: 5}, nil)

	rec := doJSON(t, s.router, "GET", "/api/v1/wallet", "valid-token", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp walletResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(95), resp.Available)
	assert.Equal(t, int64(5), resp.Outgoing)
}

func TestHandler_AuthRequired(t *testing.T) {
	s := newTestServer()

	rec := doJSON(t, s.router, "GET", "/api/v1/wallet", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.users.On("Authenticate", mock.Anything, "bad-token").
		Return(nil, service.ErrInvalidCredentials)

	rec = doJSON(t, s.router, "GET", "/api/v1/wallet", "bad-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.wallets.AssertNotCalled(t, "GetWallet")
}

func TestHandler_SendRequest(t *testing.T) {
	s := newTestServer()
	s.authenticated(&models.User{ID: 1})

	s.ledger.On("SendRequest", mock.Anything, int64(1), int64(2)).
		Return(&models.ConnectionRequest{
			ID: 42, SenderID: 1, ReceiverID: 2,
			Status: models.RequestStatusPending, CreditsHeld: 5,
		}, nil)

	rec := doJSON(t, s.router, "POST", "/api/v1/requests", "valid-token", map[string]int64{
		"receiver_id": 2,
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp requestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(5), resp.CreditsHeld)
}

func TestHandler_SendRequest_InsufficientFunds(t *testing.T) {
	s := newTestServer()
	s.authenticated(&models.User{ID: 1})

	s.ledger.On("SendRequest", mock.Anything, int64(1), int64(2)).
		Return(nil, &service.InsufficientFundsError{Available: 3, Needed: 5})

	rec := doJSON(t, s.router, "POST", "/api/v1/requests", "valid-token", map[string]int64{
		"receiver_id": 2,
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(3), resp["available"])
	assert.Equal(t, float64(5), resp["needed"])
}

func TestHandler_SendRequest_MissingReceiver(t *testing.T) {
	s := newTestServer()
	s.authenticated(&models.User{ID: 1})

	rec := doJSON(t, s.router, "POST", "/api/v1/requests", "valid-token", map[string]int64{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.ledger.AssertNotCalled(t, "SendRequest")
}

func TestHandler_ResolveRequest(t *testing.T) {
	resolved := func(status models.RequestStatus) *models.ConnectionRequest {
		now := time.Now()
		return &models.ConnectionRequest{
			ID: 42, SenderID: 1, ReceiverID: 2,
			Status: status, CreditsHeld: 5, ResolvedAt: &now,
		}
	}

	t.Run("accept", func(t *testing.T) {
		s := newTestServer()
		s.authenticated(&models.User{ID: 2})
		s.ledger.On("AcceptRequest", mock.Anything, int64(42), int64(2)).
			Return(resolved(models.RequestStatusAccepted), nil)

		rec := doJSON(t, s.router, "POST", "/api/v1/requests/42/accept", "valid-token", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp requestResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "accepted", resp.Status)
	})

	t.Run("decline", func(t *testing.T) {
		s := newTestServer()
		s.authenticated(&models.User{ID: 2})
		s.ledger.On("DeclineRequest", mock.Anything, int64(42), int64(2)).
			Return(resolved(models.RequestStatusDeclined), nil)

		rec := doJSON(t, s.router, "POST", "/api/v1/requests/42/decline", "valid-token", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("cancel", func(t *testing.T) {
		s := newTestServer()
		s.authenticated(&models.User{ID: 1})
		s.ledger.On("CancelRequest", mock.Anything, int64(42), int64(1)).
			Return(resolved(models.RequestStatusCancelled), nil)

		rec := doJSON(t, s.router, "POST", "/api/v1/requests/42/cancel", "valid-token", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown action", func(t *testing.T) {
		s := newTestServer()
		s.authenticated(&models.User{ID: 1})

		rec := doJSON(t, s.router, "POST", "/api/v1/requests/42/explode", "valid-token", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("forbidden", func(t *testing.T) {
		s := newTestServer()
		s.authenticated(&models.User{ID: 3})
		s.ledger.On("AcceptRequest", mock.Anything, int64(42), int64(3)).
			Return(nil, service.ErrForbidden)

		rec := doJSON(t, s.router, "POST", "/api/v1/requests/42/accept", "valid-token", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("already resolved", func(t *testing.T) {
		s := newTestServer()
		s.authenticated(&models.User{ID: 2})
		s.ledger.On("AcceptRequest", mock.Anything, int64(42), int64(2)).
			Return(nil, service.ErrInvalidState)

		rec := doJSON(t, s.router, "POST", "/api/v1/requests/42/accept", "valid-token", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_ListTransactions(t *testing.T) {
	s := newTestServer()
	s.authenticated(&models.User{ID: 1})

	s.wallets.On("ListTransactions", mock.Anything, int64(1), 10).
		Return([]*models.Transaction{
			{ID: 2, WalletID: 10, Amount: 5, Type: models.TransactionTypeRequestSent, Status: models.TransactionStatusPending},
			{ID: 1, WalletID: 10, Amount: 100, Type: models.TransactionTypeInitialAllocation, Status: models.TransactionStatusCompleted},
		}, nil)

	rec := doJSON(t, s.router, "GET", "/api/v1/wallet/transactions?limit=10", "valid-token", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []transactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "connection_request_sent", resp[0].Type)
}

func TestHandler_ListTransactions_BadLimit(t *testing.T) {
	s := newTestServer()
	s.authenticated(&models.User{ID: 1})

	rec := doJSON(t, s.router, "GET", "/api/v1/wallet/transactions?limit=nope", "valid-token", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	s.wallets.AssertNotCalled(t, "ListTransactions")
}

func TestHandler_ListConnections(t *testing.T) {
	s := newTestServer()
	s.authenticated(&models.User{ID: 1})

	s.ledger.On("ListConnections", mock.Anything, int64(1)).
		Return([]*models.Connection{
			{ID: 7, User1ID: 1, User2ID: 2, Status: models.ConnectionStatusActive},
		}, nil)

	rec := doJSON(t, s.router, "GET", "/api/v1/connections", "valid-token", nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []connectionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "active", resp[0].Status)
}

func TestHandler_Health(t *testing.T) {
	s := newTestServer()

	rec := doJSON(t, s.router, "GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
