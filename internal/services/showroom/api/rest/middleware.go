package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/verisim/verisim/internal/services/showroom/auth"
	"github.com/verisim/verisim/internal/services/showroom/domain"
)

type contextKey string

const identityKey contextKey = "identity"

// requireAuth verifies the bearer token and stores the identity on the
// request context.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		identity, err := h.auth.VerifyToken(token)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey, identity)))
	}
}

// requireRole layers a role check on top of requireAuth.
func (h *Handler) requireRole(role domain.UserRole, next http.HandlerFunc) http.HandlerFunc {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		identity := identityFrom(r)
		if identity.Role != role {
			writeError(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r)
	})
}

// identityFrom returns the verified identity placed on the context by
// requireAuth. Handlers behind the middleware can rely on it being set.
func identityFrom(r *http.Request) auth.Identity {
	identity, _ := r.Context().Value(identityKey).(auth.Identity)
	return identity
}
