package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the HTTP routing table
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/auth/register", h.Register).Methods("POST")
	apiV1.HandleFunc("/auth/login", h.Login).Methods("POST")

	apiV1.HandleFunc("/wallet", h.requireAuth(h.GetWallet)).Methods("GET")
	apiV1.HandleFunc("/wallet/transactions", h.requireAuth(h.ListTransactions)).Methods("GET")

	apiV1.HandleFunc("/requests", h.requireAuth(h.SendRequest)).Methods("POST")
	apiV1.HandleFunc("/requests", h.requireAuth(h.ListRequests)).Methods("GET")
	apiV1.HandleFunc("/requests/{id:[0-9]+}/{action}", h.requireAuth(h.ResolveRequest)).Methods("POST")

	apiV1.HandleFunc("/connections", h.requireAuth(h.ListConnections)).Methods("GET")

	return r
}
