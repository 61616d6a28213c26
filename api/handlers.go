package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"skillswap/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sendRequestBody struct {
	ReceiverID int64 `json:"receiver_id"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type walletResponse struct {
	Available int64 `json:"available"`
	Outgoing  int64 `json:"outgoing"`
	Incoming  int64 `json:"incoming"`
}

type requestResponse struct {
	ID          int64      `json:"id"`
	SenderID    int64      `json:"sender_id"`
	ReceiverID  int64      `json:"receiver_id"`
	Status      string     `json:"status"`
	CreditsHeld int64      `json:"credits_held"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

type connectionResponse struct {
	ID        int64     `json:"id"`
	User1ID   int64     `json:"user1_id"`
	User2ID   int64     `json:"user2_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type transactionResponse struct {
	ID                  int64     `json:"id"`
	Amount              int64     `json:"amount"`
	Type                string    `json:"type"`
	Status              string    `json:"status"`
	RelatedUserID       *int64    `json:"related_user_id,omitempty"`
	ConnectionRequestID *int64    `json:"connection_request_id,omitempty"`
	Note                string    `json:"note,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

func toRequestResponse(r *models.ConnectionRequest) requestResponse {
	return requestResponse{
		ID:          r.ID,
		SenderID:    r.SenderID,
		ReceiverID:  r.ReceiverID,
		Status:      string(r.Status),
		CreditsHeld: r.CreditsHeld,
		CreatedAt:   r.CreatedAt,
		ResolvedAt:  r.ResolvedAt,
	}
}

// Register creates a user with a seeded wallet
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/auth/register"))
	defer timer.ObserveDuration()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "POST", "/auth/register", "malformed JSON body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respondServiceError(w, "POST", "/auth/register", err)
		return
	}

	respondJSON(w, http.StatusCreated, "POST", "/auth/register", userResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.FullName,
	})
}

// Login verifies credentials and issues a session token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "POST", "/auth/login", "malformed JSON body")
		return
	}

	session, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, "POST", "/auth/login", err)
		return
	}

	respondJSON(w, http.StatusOK, "POST", "/auth/login", map[string]any{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
	})
}

// GetWallet returns the current user's balances
func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	wallet, err := h.wallets.GetWallet(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, "GET", "/wallet", err)
		return
	}

	respondJSON(w, http.StatusOK, "GET", "/wallet", walletResponse{
		Available: wallet.Available,
		Outgoing:  wallet.Outgoing,
		Incoming:  wallet.Incoming,
	})
}

// ListTransactions returns the current user's ledger history
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(w, http.StatusBadRequest, "GET", "/wallet/transactions", "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	transactions, err := h.wallets.ListTransactions(r.Context(), user.ID, limit)
	if err != nil {
		respondServiceError(w, "GET", "/wallet/transactions", err)
		return
	}

	payload := make([]transactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		payload = append(payload, transactionResponse{
			ID:                  txn.ID,
			Amount:              txn.Amount,
			Type:                string(txn.Type),
			Status:              string(txn.Status),
			RelatedUserID:       txn.RelatedUserID,
			ConnectionRequestID: txn.ConnectionRequestID,
			Note:                txn.Note,
			CreatedAt:           txn.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, "GET", "/wallet/transactions", payload)
}

// SendRequest creates a connection request with a credit hold
func (h *Handler) SendRequest(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", "/requests"))
	defer timer.ObserveDuration()

	user := currentUser(r)

	var body sendRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "POST", "/requests", "malformed JSON body")
		return
	}
	if body.ReceiverID <= 0 {
		respondError(w, http.StatusBadRequest, "POST", "/requests", "receiver_id is required")
		return
	}

	request, err := h.ledger.SendRequest(r.Context(), user.ID, body.ReceiverID)
	if err != nil {
		respondServiceError(w, "POST", "/requests", err)
		return
	}

	respondJSON(w, http.StatusCreated, "POST", "/requests", toRequestResponse(request))
}

// ResolveRequest handles the accept, decline and cancel transitions
func (h *Handler) ResolveRequest(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	vars := mux.Vars(r)
	requestID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil || requestID <= 0 {
		respondError(w, http.StatusBadRequest, "POST", "/requests/{id}/{action}", "invalid request id")
		return
	}

	action := vars["action"]
	endpoint := "/requests/{id}/" + action

	timer := prometheus.NewTimer(httpRequestDuration.WithLabelValues("POST", endpoint))
	defer timer.ObserveDuration()

	var request *models.ConnectionRequest
	switch action {
	case "accept":
		request, err = h.ledger.AcceptRequest(r.Context(), requestID, user.ID)
	case "decline":
		request, err = h.ledger.DeclineRequest(r.Context(), requestID, user.ID)
	case "cancel":
		request, err = h.ledger.CancelRequest(r.Context(), requestID, user.ID)
	default:
		respondError(w, http.StatusNotFound, "POST", endpoint, "unknown action")
		return
	}
	if err != nil {
		respondServiceError(w, "POST", endpoint, err)
		return
	}

	respondJSON(w, http.StatusOK, "POST", endpoint, toRequestResponse(request))
}

// ListRequests returns pending requests involving the current user
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	requests, err := h.ledger.ListPendingRequests(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, "GET", "/requests", err)
		return
	}

	payload := make([]requestResponse, 0, len(requests))
	for _, request := range requests {
		payload = append(payload, toRequestResponse(request))
	}
	respondJSON(w, http.StatusOK, "GET", "/requests", payload)
}

// ListConnections returns the current user's active connections
func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	connections, err := h.ledger.ListConnections(r.Context(), user.ID)
	if err != nil {
		respondServiceError(w, "GET", "/connections", err)
		return
	}

	payload := make([]connectionResponse, 0, len(connections))
	for _, conn := range connections {
		payload = append(payload, connectionResponse{
			ID:        conn.ID,
			User1ID:   conn.User1ID,
			User2ID:   conn.User2ID,
			Status:    string(conn.Status),
			CreatedAt: conn.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, "GET", "/connections", payload)
}
