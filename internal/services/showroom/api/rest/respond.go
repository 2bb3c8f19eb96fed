package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/verisim/verisim/internal/services/showroom/auth"
	"github.com/verisim/verisim/internal/services/showroom/catalog"
	"github.com/verisim/verisim/internal/services/showroom/domain"
	"github.com/verisim/verisim/internal/services/showroom/engine"
	"github.com/verisim/verisim/internal/services/showroom/simulation"
	"github.com/verisim/verisim/internal/services/showroom/storage"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service sentinels to HTTP statuses. Unmatched
// errors are logged and reported as a 500 without the internal detail.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, "already exists")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, catalog.ErrNotOwner):
		writeError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, simulation.ErrProductNotAvailable),
		errors.Is(err, simulation.ErrScenarioMismatch),
		errors.Is(err, simulation.ErrSessionCompleted),
		errors.Is(err, simulation.ErrEmptyInteractionType),
		errors.Is(err, engine.ErrNotInitialized),
		errors.Is(err, auth.ErrEmptyPassword),
		errors.Is(err, domain.ErrEmptyUsername),
		errors.Is(err, domain.ErrEmptyEmail),
		errors.Is(err, domain.ErrInvalidUserRole),
		errors.Is(err, domain.ErrEmptyOwnerID),
		errors.Is(err, domain.ErrEmptyProductName),
		errors.Is(err, domain.ErrEmptyProductID),
		errors.Is(err, domain.ErrEmptyScenarioName),
		errors.Is(err, domain.ErrEmptySessionUserID),
		errors.Is(err, domain.ErrEmptySessionProductID):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
