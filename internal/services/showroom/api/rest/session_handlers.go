package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/verisim/verisim/internal/services/showroom/domain"
	"github.com/verisim/verisim/internal/services/showroom/engine"
)

type createSessionRequest struct {
	ProductID  string `json:"product_id"`
	ScenarioID string `json:"scenario_id"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.simulation.CreateSession(r.Context(), domain.CreateSessionInput{
		UserID:     identityFrom(r).UserID,
		ProductID:  req.ProductID,
		ScenarioID: req.ScenarioID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"session": toSessionView(session)})
}

func (h *Handler) handleInitializeSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.simulation.InitializeSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": state})
}

type interactionRequest struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

type interactionResponse struct {
	Result      string       `json:"result"`
	Kind        string       `json:"kind"`
	Step        int          `json:"step"`
	CurrentStep int          `json:"current_step"`
	State       engine.State `json:"state"`
}

func (h *Handler) handleProcessInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.simulation.ProcessInteraction(r.Context(), mux.Vars(r)["id"], req.Type, req.Data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, interactionResponse{
		Result:      result.Outcome.Result,
		Kind:        string(result.Outcome.Kind),
		Step:        result.Outcome.Step,
		CurrentStep: result.State.CurrentStep,
		State:       result.State,
	})
}

func (h *Handler) handleGetSessionState(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.simulation.GetState(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":         snapshot.SessionID,
		"status":             snapshot.Status.String(),
		"initialized":        snapshot.Initialized,
		"product":            snapshot.Product,
		"scenario":           snapshot.Scenario,
		"current_step":       snapshot.CurrentStep,
		"interactions_count": snapshot.InteractionCount,
	})
}

func (h *Handler) handleFinalizeSession(w http.ResponseWriter, r *http.Request) {
	result, err := h.simulation.FinalizeSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id":         result.SessionID,
		"status":             result.Status.String(),
		"total_interactions": result.TotalInteractions,
		"completed_at":       result.CompletedAt,
		"state":              result.State,
	})
}
