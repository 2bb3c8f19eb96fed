// Package engine holds the simulation state machine for a single test
// session. The state is a plain value serialized to JSON between
// operations; the engine itself keeps nothing in memory.
package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/verisim/verisim/internal/services/showroom/domain"
)

// ErrNotInitialized is returned when an interaction arrives before the
// session has been initialized.
var ErrNotInitialized = errors.New("engine: session not initialized")

// ProductSnapshot is the slice of product metadata captured at
// initialization time. Later edits to the product do not reach a
// running session.
type ProductSnapshot struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ModelFile string `json:"model_file"`
}

// StepRecord is one processed interaction as it appears in the state.
type StepRecord struct {
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Step      int            `json:"step"`
}

// State is the full simulation state for one session.
type State struct {
	Initialized  bool            `json:"initialized"`
	Product      ProductSnapshot `json:"product"`
	Scenario     map[string]any  `json:"scenario,omitempty"`
	CurrentStep  int             `json:"current_step"`
	Interactions []StepRecord    `json:"interactions"`

	// Interaction effects. Absent until the matching interaction kind
	// has been processed at least once.
	Clicked  *bool    `json:"clicked,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Zoom     *float64 `json:"zoom,omitempty"`
}

// Outcome reports what a single interaction did to the state.
type Outcome struct {
	Kind   domain.InteractionKind
	Result string
	Step   int
}

// Initialize builds a fresh state for the given product. Any prior
// state for the session is discarded; re-initializing restarts the
// simulation from step zero.
func Initialize(product ProductSnapshot, scenario map[string]any) State {
	return State{
		Initialized:  true,
		Product:      product,
		Scenario:     scenario,
		CurrentStep:  0,
		Interactions: []StepRecord{},
	}
}

// ProcessInteraction advances the state by one step and applies the
// effect of the interaction. Unknown interaction tags are accepted and
// recorded with a generic outcome.
func (s *State) ProcessInteraction(tag string, data map[string]any, now time.Time) (Outcome, error) {
	if !s.Initialized {
		return Outcome{}, ErrNotInitialized
	}

	// The record carries the step counter as it stood when the
	// interaction arrived; the counter advances afterwards.
	s.Interactions = append(s.Interactions, StepRecord{
		Type:      tag,
		Data:      data,
		Timestamp: now.UTC(),
		Step:      s.CurrentStep,
	})
	s.CurrentStep++

	kind := domain.KindOf(tag)
	outcome := Outcome{Kind: kind, Step: s.CurrentStep}
	switch kind {
	case domain.InteractionKindClick:
		clicked := true
		s.Clicked = &clicked
		outcome.Result = "click handled"
	case domain.InteractionKindRotate:
		angle := floatField(data, "angle", 0)
		s.Rotation = &angle
		outcome.Result = "rotation handled"
	case domain.InteractionKindZoom:
		level := floatField(data, "level", 1.0)
		s.Zoom = &level
		outcome.Result = "zoom handled"
	default:
		outcome.Result = "interaction handled"
	}
	return outcome, nil
}

// InteractionCount reports how many interactions the state has
// recorded.
func (s State) InteractionCount() int {
	return len(s.Interactions)
}

// Encode serializes the state for persistence.
func (s State) Encode() ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode engine state: %w", err)
	}
	return raw, nil
}

// Decode restores a state from its persisted form. Empty input yields
// an uninitialized state so that sessions created before their first
// initialize call decode cleanly.
func Decode(raw []byte) (State, error) {
	if len(raw) == 0 {
		return State{}, nil
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("decode engine state: %w", err)
	}
	return state, nil
}

// floatField pulls a numeric field out of a decoded JSON payload,
// falling back to def when the field is missing or not a number.
func floatField(data map[string]any, key string, def float64) float64 {
	if data == nil {
		return def
	}
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}
