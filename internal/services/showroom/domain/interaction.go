package domain

import "time"

// InteractionKind identifies the known kinds of session interactions.
type InteractionKind string

const (
	// InteractionKindClick records a pointer click on the product.
	InteractionKindClick InteractionKind = "click"
	// InteractionKindRotate records a rotation of the product view.
	InteractionKindRotate InteractionKind = "rotate"
	// InteractionKindZoom records a zoom change of the product view.
	InteractionKindZoom InteractionKind = "zoom"
	// InteractionKindGeneric covers any tag outside the known kinds.
	InteractionKindGeneric InteractionKind = "generic"
)

// IsKnown reports whether the interaction kind has dedicated handling.
func (k InteractionKind) IsKnown() bool {
	switch k {
	case InteractionKindClick, InteractionKindRotate, InteractionKindZoom:
		return true
	default:
		return false
	}
}

// KindOf classifies a raw interaction tag. Unknown tags map to the generic
// kind; the raw tag is still preserved verbatim in the interaction log.
func KindOf(tag string) InteractionKind {
	kind := InteractionKind(tag)
	if kind.IsKnown() {
		return kind
	}
	return InteractionKindGeneric
}

// Interaction captures one immutable session-scoped interaction log entry.
type Interaction struct {
	ID        string
	SessionID string
	Type      string         // raw caller-supplied tag
	Data      map[string]any // caller-defined payload, opaque to the engine
	Timestamp time.Time      // server-assigned
}
