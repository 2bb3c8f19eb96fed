// Package rest exposes the showroom services as a JSON HTTP API.
package rest

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/verisim/verisim/internal/services/showroom/auth"
	"github.com/verisim/verisim/internal/services/showroom/catalog"
	"github.com/verisim/verisim/internal/services/showroom/domain"
	"github.com/verisim/verisim/internal/services/showroom/simulation"
)

// Handler wires the showroom services into HTTP endpoints.
type Handler struct {
	auth       *auth.Service
	catalog    *catalog.Service
	simulation *simulation.Service
}

// NewHandler creates a REST handler over the given services.
func NewHandler(authService *auth.Service, catalogService *catalog.Service, simulationService *simulation.Service) *Handler {
	return &Handler{
		auth:       authService,
		catalog:    catalogService,
		simulation: simulationService,
	}
}

// Router builds the route table.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", h.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.handleLogin).Methods(http.MethodPost)

	api.HandleFunc("/products", h.requireRole(domain.UserRoleOwner, h.handleUploadProduct)).Methods(http.MethodPost)
	api.HandleFunc("/products", h.handleListProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.handleGetProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.requireRole(domain.UserRoleOwner, h.handleUpdateProduct)).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", h.requireRole(domain.UserRoleOwner, h.handleDeleteProduct)).Methods(http.MethodDelete)
	api.HandleFunc("/products/{id}/scenarios", h.handleListProductScenarios).Methods(http.MethodGet)
	api.HandleFunc("/scenario-templates", h.handleListScenarioTemplates).Methods(http.MethodGet)

	api.HandleFunc("/sessions", h.requireAuth(h.handleCreateSession)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/initialize", h.requireAuth(h.handleInitializeSession)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/interactions", h.requireAuth(h.handleProcessInteraction)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/state", h.requireAuth(h.handleGetSessionState)).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}/finalize", h.requireAuth(h.handleFinalizeSession)).Methods(http.MethodPost)

	return r
}
