// Package simulation runs interactive test sessions against published
// products. Each operation loads the persisted engine state, applies
// one change, and writes the state back; a per-session lock serializes
// the read-modify-write cycle.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verisim/verisim/internal/id"
	"github.com/verisim/verisim/internal/services/showroom/domain"
	"github.com/verisim/verisim/internal/services/showroom/engine"
	"github.com/verisim/verisim/internal/services/showroom/storage"
)

var (
	// ErrProductNotAvailable indicates the product is not verified for
	// testing.
	ErrProductNotAvailable = errors.New("simulation: product not available for testing")
	// ErrScenarioMismatch indicates the scenario does not belong to the
	// session's product.
	ErrScenarioMismatch = errors.New("simulation: scenario does not belong to product")
	// ErrSessionCompleted indicates the session has already been
	// finalized.
	ErrSessionCompleted = errors.New("simulation: session already completed")
	// ErrEmptyInteractionType indicates an interaction without a type tag.
	ErrEmptyInteractionType = errors.New("simulation: interaction type is required")
)

// Stores groups the storage interfaces the simulation service needs.
type Stores struct {
	User     storage.UserStore
	Product  storage.ProductStore
	Scenario storage.ScenarioStore
	Session  storage.SessionStore
}

// Service exposes the test session lifecycle.
type Service struct {
	stores      Stores
	clock       func() time.Time
	idGenerator func() (string, error)
	locks       *sessionLocks
}

// NewService creates a simulation service with default dependencies.
func NewService(stores Stores) *Service {
	return &Service{
		stores:      stores,
		clock:       time.Now,
		idGenerator: id.NewID,
		locks:       newSessionLocks(),
	}
}

// StateSnapshot is the read model returned by GetState. It summarizes
// the session without carrying the full interaction log.
type StateSnapshot struct {
	SessionID        string
	Status           domain.SessionStatus
	Initialized      bool
	Product          engine.ProductSnapshot
	Scenario         map[string]any
	CurrentStep      int
	InteractionCount int
}

// FinalizeResult reports the outcome of finalizing a session, with the
// frozen final state. TotalInteractions counts the state buffer;
// LoggedInteractions counts the durable log, which also keeps records
// from before any re-initialization.
type FinalizeResult struct {
	SessionID          string
	Status             domain.SessionStatus
	TotalInteractions  int
	LoggedInteractions int
	CompletedAt        time.Time
	State              engine.State
}

// InteractionResult reports the outcome of one processed interaction.
type InteractionResult struct {
	Outcome engine.Outcome
	State   engine.State
}

// CreateSession starts a new test session for a verified product. The
// session is created uninitialized; the engine state appears when
// InitializeSession runs.
func (s *Service) CreateSession(ctx context.Context, input domain.CreateSessionInput) (domain.TestSession, error) {
	normalized, err := domain.NormalizeCreateSessionInput(input)
	if err != nil {
		return domain.TestSession{}, err
	}

	if _, err := s.stores.User.GetUser(ctx, normalized.UserID); err != nil {
		return domain.TestSession{}, fmt.Errorf("check user: %w", err)
	}
	product, err := s.stores.Product.GetProduct(ctx, normalized.ProductID)
	if err != nil {
		return domain.TestSession{}, fmt.Errorf("check product: %w", err)
	}
	if product.Status != domain.ProductStatusVerified {
		return domain.TestSession{}, ErrProductNotAvailable
	}
	if normalized.ScenarioID != "" {
		scenario, err := s.stores.Scenario.GetScenario(ctx, normalized.ScenarioID)
		if err != nil {
			return domain.TestSession{}, fmt.Errorf("check scenario: %w", err)
		}
		if scenario.ProductID != product.ID {
			return domain.TestSession{}, ErrScenarioMismatch
		}
	}

	session, err := domain.CreateSession(normalized, s.clock, s.idGenerator)
	if err != nil {
		return domain.TestSession{}, err
	}
	if err := s.stores.Session.CreateSession(ctx, session); err != nil {
		return domain.TestSession{}, fmt.Errorf("persist session: %w", err)
	}
	return session, nil
}

// InitializeSession builds a fresh engine state from the session's
// product and optional scenario, replacing any previous state. The
// session restarts from step zero.
func (s *Service) InitializeSession(ctx context.Context, sessionID string) (engine.State, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return engine.State{}, storage.ErrNotFound
	}
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	session, err := s.stores.Session.GetSession(ctx, sessionID)
	if err != nil {
		return engine.State{}, fmt.Errorf("load session: %w", err)
	}
	if session.Status == domain.SessionStatusCompleted {
		return engine.State{}, ErrSessionCompleted
	}

	product, err := s.stores.Product.GetProduct(ctx, session.ProductID)
	if err != nil {
		return engine.State{}, fmt.Errorf("load product: %w", err)
	}
	var scenarioData map[string]any
	if session.ScenarioID != "" {
		scenario, err := s.stores.Scenario.GetScenario(ctx, session.ScenarioID)
		if err != nil {
			return engine.State{}, fmt.Errorf("load scenario: %w", err)
		}
		scenarioData = scenario.Data
	}

	state := engine.Initialize(engine.ProductSnapshot{
		ID:        product.ID,
		Name:      product.Name,
		ModelFile: product.ModelFilePath,
	}, scenarioData)

	raw, err := state.Encode()
	if err != nil {
		return engine.State{}, err
	}
	if err := s.stores.Session.UpdateSessionData(ctx, sessionID, raw); err != nil {
		return engine.State{}, fmt.Errorf("persist state: %w", err)
	}
	return state, nil
}

// ProcessInteraction applies one interaction to the session: the engine
// advances, the interaction joins the durable log, and the new state is
// persisted.
func (s *Service) ProcessInteraction(ctx context.Context, sessionID, tag string, data map[string]any) (InteractionResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return InteractionResult{}, storage.ErrNotFound
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return InteractionResult{}, ErrEmptyInteractionType
	}
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	session, err := s.stores.Session.GetSession(ctx, sessionID)
	if err != nil {
		return InteractionResult{}, fmt.Errorf("load session: %w", err)
	}
	if session.Status == domain.SessionStatusCompleted {
		return InteractionResult{}, ErrSessionCompleted
	}

	state, err := engine.Decode(session.SessionData)
	if err != nil {
		return InteractionResult{}, err
	}

	now := s.clock().UTC()
	outcome, err := state.ProcessInteraction(tag, data, now)
	if err != nil {
		return InteractionResult{}, err
	}

	interactionID, err := s.idGenerator()
	if err != nil {
		return InteractionResult{}, fmt.Errorf("generate interaction id: %w", err)
	}
	if err := s.stores.Session.AppendInteraction(ctx, domain.Interaction{
		ID:        interactionID,
		SessionID: sessionID,
		Type:      tag,
		Data:      data,
		Timestamp: now,
	}); err != nil {
		return InteractionResult{}, fmt.Errorf("log interaction: %w", err)
	}

	raw, err := state.Encode()
	if err != nil {
		return InteractionResult{}, err
	}
	if err := s.stores.Session.UpdateSessionData(ctx, sessionID, raw); err != nil {
		return InteractionResult{}, fmt.Errorf("persist state: %w", err)
	}

	return InteractionResult{Outcome: outcome, State: state}, nil
}

// GetState returns the current session state without mutating it.
func (s *Service) GetState(ctx context.Context, sessionID string) (StateSnapshot, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return StateSnapshot{}, storage.ErrNotFound
	}

	session, err := s.stores.Session.GetSession(ctx, sessionID)
	if err != nil {
		return StateSnapshot{}, fmt.Errorf("load session: %w", err)
	}
	state, err := engine.Decode(session.SessionData)
	if err != nil {
		return StateSnapshot{}, err
	}

	// The snapshot counts the state buffer, not the durable log; a
	// re-initialized session reports zero interactions again.
	return StateSnapshot{
		SessionID:        session.ID,
		Status:           session.Status,
		Initialized:      state.Initialized,
		Product:          state.Product,
		Scenario:         state.Scenario,
		CurrentStep:      state.CurrentStep,
		InteractionCount: state.InteractionCount(),
	}, nil
}

// FinalizeSession completes the session and reports the interaction
// total. Finalizing an already completed session returns the same
// totals without error.
func (s *Service) FinalizeSession(ctx context.Context, sessionID string) (FinalizeResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return FinalizeResult{}, storage.ErrNotFound
	}
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	session, err := s.stores.Session.GetSession(ctx, sessionID)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("load session: %w", err)
	}
	if session.Status != domain.SessionStatusCompleted {
		if err := s.stores.Session.UpdateSessionStatus(ctx, sessionID, domain.SessionStatusCompleted); err != nil {
			return FinalizeResult{}, fmt.Errorf("complete session: %w", err)
		}
		session, err = s.stores.Session.GetSession(ctx, sessionID)
		if err != nil {
			return FinalizeResult{}, fmt.Errorf("reload session: %w", err)
		}
	}

	logged, err := s.stores.Session.CountInteractions(ctx, sessionID)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("count interactions: %w", err)
	}
	state, err := engine.Decode(session.SessionData)
	if err != nil {
		return FinalizeResult{}, err
	}

	result := FinalizeResult{
		SessionID:          session.ID,
		Status:             session.Status,
		TotalInteractions:  state.InteractionCount(),
		LoggedInteractions: logged,
		State:              state,
	}
	if session.CompletedAt != nil {
		result.CompletedAt = *session.CompletedAt
	}
	return result, nil
}
