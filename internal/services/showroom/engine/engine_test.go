package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/verisim/verisim/internal/services/showroom/domain"
)

var testProduct = ProductSnapshot{
	ID:        "prod-1",
	Name:      "Desk Lamp",
	ModelFile: "models/prod-1.glb",
}

func TestInitializeResetsState(t *testing.T) {
	t.Parallel()

	state := Initialize(testProduct, nil)
	if _, err := state.ProcessInteraction("click", nil, time.Now()); err != nil {
		t.Fatalf("process interaction: %v", err)
	}
	if state.CurrentStep != 1 {
		t.Fatalf("current step = %d, want 1", state.CurrentStep)
	}

	state = Initialize(testProduct, map[string]any{"mode": "guided"})
	if state.CurrentStep != 0 {
		t.Fatalf("current step after re-initialize = %d, want 0", state.CurrentStep)
	}
	if len(state.Interactions) != 0 {
		t.Fatalf("interactions after re-initialize = %d, want 0", len(state.Interactions))
	}
	if state.Clicked != nil {
		t.Fatal("clicked flag survived re-initialize")
	}
	if state.Scenario["mode"] != "guided" {
		t.Fatalf("scenario mode = %v, want guided", state.Scenario["mode"])
	}
}

func TestProcessInteractionRequiresInitialize(t *testing.T) {
	t.Parallel()

	var state State
	_, err := state.ProcessInteraction("click", nil, time.Now())
	if !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("error = %v, want %v", err, ErrNotInitialized)
	}
	if state.CurrentStep != 0 || len(state.Interactions) != 0 {
		t.Fatal("rejected interaction mutated the state")
	}
}

func TestProcessInteractionDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		tag        string
		data       map[string]any
		wantKind   domain.InteractionKind
		wantResult string
		check      func(t *testing.T, state State)
	}{
		{
			name:       "click sets the clicked flag",
			tag:        "click",
			wantKind:   domain.InteractionKindClick,
			wantResult: "click handled",
			check: func(t *testing.T, state State) {
				if state.Clicked == nil || !*state.Clicked {
					t.Fatal("expected clicked flag")
				}
			},
		},
		{
			name:       "rotate records the angle",
			tag:        "rotate",
			data:       map[string]any{"angle": 45.0},
			wantKind:   domain.InteractionKindRotate,
			wantResult: "rotation handled",
			check: func(t *testing.T, state State) {
				if state.Rotation == nil || *state.Rotation != 45 {
					t.Fatalf("rotation = %v, want 45", state.Rotation)
				}
			},
		},
		{
			name:       "rotate without angle defaults to zero",
			tag:        "rotate",
			wantKind:   domain.InteractionKindRotate,
			wantResult: "rotation handled",
			check: func(t *testing.T, state State) {
				if state.Rotation == nil || *state.Rotation != 0 {
					t.Fatalf("rotation = %v, want 0", state.Rotation)
				}
			},
		},
		{
			name:       "zoom records the level",
			tag:        "zoom",
			data:       map[string]any{"level": 2.5},
			wantKind:   domain.InteractionKindZoom,
			wantResult: "zoom handled",
			check: func(t *testing.T, state State) {
				if state.Zoom == nil || *state.Zoom != 2.5 {
					t.Fatalf("zoom = %v, want 2.5", state.Zoom)
				}
			},
		},
		{
			name:       "zoom without level defaults to one",
			tag:        "zoom",
			wantKind:   domain.InteractionKindZoom,
			wantResult: "zoom handled",
			check: func(t *testing.T, state State) {
				if state.Zoom == nil || *state.Zoom != 1.0 {
					t.Fatalf("zoom = %v, want 1.0", state.Zoom)
				}
			},
		},
		{
			name:       "unknown tag falls back to generic handling",
			tag:        "shake",
			data:       map[string]any{"force": 3.0},
			wantKind:   domain.InteractionKindGeneric,
			wantResult: "interaction handled",
			check: func(t *testing.T, state State) {
				if state.Clicked != nil || state.Rotation != nil || state.Zoom != nil {
					t.Fatal("generic interaction touched a typed effect")
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			state := Initialize(testProduct, nil)
			outcome, err := state.ProcessInteraction(tt.tag, tt.data, time.Now())
			if err != nil {
				t.Fatalf("process interaction: %v", err)
			}
			if outcome.Kind != tt.wantKind {
				t.Fatalf("kind = %v, want %v", outcome.Kind, tt.wantKind)
			}
			if outcome.Result != tt.wantResult {
				t.Fatalf("result = %q, want %q", outcome.Result, tt.wantResult)
			}
			if outcome.Step != 1 {
				t.Fatalf("step = %d, want 1", outcome.Step)
			}
			tt.check(t, state)
		})
	}
}

func TestProcessInteractionRecordsSteps(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 3, 16, 0, 0, 0, time.UTC)
	state := Initialize(testProduct, nil)

	first, err := state.ProcessInteraction("rotate", map[string]any{"angle": 45.0}, now)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	second, err := state.ProcessInteraction("zoom", nil, now.Add(time.Second))
	if err != nil {
		t.Fatalf("zoom: %v", err)
	}

	if first.Step != 1 || second.Step != 2 {
		t.Fatalf("steps = %d, %d, want 1, 2", first.Step, second.Step)
	}
	if state.CurrentStep != 2 {
		t.Fatalf("current step = %d, want 2", state.CurrentStep)
	}
	if state.InteractionCount() != 2 {
		t.Fatalf("interaction count = %d, want 2", state.InteractionCount())
	}
	if state.Rotation == nil || *state.Rotation != 45 {
		t.Fatalf("rotation = %v, want 45", state.Rotation)
	}
	if state.Zoom == nil || *state.Zoom != 1.0 {
		t.Fatalf("zoom = %v, want 1.0", state.Zoom)
	}
	// Records keep the step counter as it stood before the
	// interaction advanced it.
	if state.Interactions[0].Step != 0 {
		t.Fatalf("first recorded step = %d, want 0", state.Interactions[0].Step)
	}
	if state.Interactions[1].Step != 1 {
		t.Fatalf("second recorded step = %d, want 1", state.Interactions[1].Step)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	state := Initialize(testProduct, map[string]any{"mode": "free"})
	if _, err := state.ProcessInteraction("zoom", map[string]any{"level": 3.0}, time.Now()); err != nil {
		t.Fatalf("zoom: %v", err)
	}

	raw, err := state.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !restored.Initialized {
		t.Fatal("decoded state lost initialization")
	}
	if restored.Product != state.Product {
		t.Fatalf("product = %+v, want %+v", restored.Product, state.Product)
	}
	if restored.CurrentStep != 1 {
		t.Fatalf("current step = %d, want 1", restored.CurrentStep)
	}
	if restored.Zoom == nil || *restored.Zoom != 3.0 {
		t.Fatalf("zoom = %v, want 3.0", restored.Zoom)
	}
}

func TestDecodeEmptyState(t *testing.T) {
	t.Parallel()

	state, err := Decode(nil)
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if state.Initialized {
		t.Fatal("empty state reported initialized")
	}
}
