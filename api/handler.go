package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"skillswap/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillswap_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "endpoint"})
)

// Handler bundles the services behind the HTTP surface
type Handler struct {
	users   service.UserService
	ledger  service.LedgerService
	wallets service.WalletService
}

// NewHandler creates a new API handler
func NewHandler(users service.UserService, ledger service.LedgerService, wallets service.WalletService) *Handler {
	return &Handler{
		users:   users,
		ledger:  ledger,
		wallets: wallets,
	}
}

func respondJSON(w http.ResponseWriter, code int, method, endpoint string, payload any) {
	httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, code int, method, endpoint, message string) {
	respondJSON(w, code, method, endpoint, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, method, endpoint string, err error) {
	var insufficient *service.InsufficientFundsError
	switch {
	case errors.As(err, &insufficient):
		respondJSON(w, http.StatusBadRequest, method, endpoint, map[string]any{
			"error":     insufficient.Error(),
			"available": insufficient.Available,
			"needed":    insufficient.Needed,
		})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrSelfRequest),
		errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrAlreadyConnected),
		errors.Is(err, service.ErrInvalidState):
		respondError(w, http.StatusBadRequest, method, endpoint, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, method, endpoint, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, method, endpoint, err.Error())
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrWalletNotFound):
		respondError(w, http.StatusNotFound, method, endpoint, err.Error())
	case errors.Is(err, service.ErrDuplicateEmail),
		errors.Is(err, service.ErrConflict):
		respondError(w, http.StatusConflict, method, endpoint, err.Error())
	default:
		log.WithError(err).Error("Unhandled service error")
		respondError(w, http.StatusInternalServerError, method, endpoint, "internal server error")
	}
}
