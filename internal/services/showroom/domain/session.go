package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verisim/verisim/internal/id"
)

// SessionStatus describes the lifecycle state of a test session.
type SessionStatus int

const (
	// SessionStatusUnspecified represents an invalid session status value.
	SessionStatusUnspecified SessionStatus = iota
	// SessionStatusActive indicates the session accepts interactions.
	SessionStatusActive
	// SessionStatusCompleted indicates the session has been finalized.
	SessionStatusCompleted
)

var (
	// ErrEmptySessionUserID indicates a missing session user ID.
	ErrEmptySessionUserID = errors.New("user id is required")
	// ErrEmptySessionProductID indicates a missing session product ID.
	ErrEmptySessionProductID = errors.New("product id is required")
)

// String returns the storage representation of the session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionStatusActive:
		return "active"
	case SessionStatusCompleted:
		return "completed"
	default:
		return "unspecified"
	}
}

// ParseSessionStatus maps a storage representation back to a session status.
func ParseSessionStatus(value string) SessionStatus {
	switch value {
	case "active":
		return SessionStatusActive
	case "completed":
		return SessionStatusCompleted
	default:
		return SessionStatusUnspecified
	}
}

// TestSession represents one end user's run against one product. SessionData
// holds the serialized engine state; the row is the durable owner of it.
type TestSession struct {
	ID          string
	UserID      string
	ProductID   string
	ScenarioID  string // empty when the session follows no scenario
	SessionData []byte // serialized engine state, empty until initialized
	Status      SessionStatus
	CreatedAt   time.Time
	CompletedAt *time.Time // set if and only if status is completed
}

// CreateSessionInput describes the metadata needed to create a test session.
type CreateSessionInput struct {
	UserID     string
	ProductID  string
	ScenarioID string
}

// CreateSession creates a new active session with a generated ID.
func CreateSession(input CreateSessionInput, now func() time.Time, idGenerator func() (string, error)) (TestSession, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateSessionInput(input)
	if err != nil {
		return TestSession{}, err
	}

	sessionID, err := idGenerator()
	if err != nil {
		return TestSession{}, fmt.Errorf("generate session id: %w", err)
	}

	return TestSession{
		ID:         sessionID,
		UserID:     normalized.UserID,
		ProductID:  normalized.ProductID,
		ScenarioID: normalized.ScenarioID,
		Status:     SessionStatusActive,
		CreatedAt:  now().UTC(),
	}, nil
}

// NormalizeCreateSessionInput trims and validates session metadata.
func NormalizeCreateSessionInput(input CreateSessionInput) (CreateSessionInput, error) {
	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return CreateSessionInput{}, ErrEmptySessionUserID
	}
	input.ProductID = strings.TrimSpace(input.ProductID)
	if input.ProductID == "" {
		return CreateSessionInput{}, ErrEmptySessionProductID
	}
	input.ScenarioID = strings.TrimSpace(input.ScenarioID)
	return input, nil
}
