package api

import (
	"context"
	"net/http"
	"strings"

	"skillswap/models"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// requireAuth resolves the Bearer session token to a user and stores it
// on the request context. Requests without a valid token get 401.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, r.Method, r.URL.Path, "missing bearer token")
			return
		}

		user, err := h.users.Authenticate(r.Context(), token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, r.Method, r.URL.Path, "invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// currentUser returns the authenticated user placed on the context by
// requireAuth. Only reachable from routes behind that middleware.
func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}
