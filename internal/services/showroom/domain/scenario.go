package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verisim/verisim/internal/id"
)

var (
	// ErrEmptyProductID indicates a missing parent product ID.
	ErrEmptyProductID = errors.New("product id is required")
	// ErrEmptyScenarioName indicates a missing scenario name.
	ErrEmptyScenarioName = errors.New("scenario name is required")
)

// Scenario describes a usage path a test session can be driven through.
// Template scenarios are reusable and not bound to a product's lifecycle.
type Scenario struct {
	ID          string
	ProductID   string
	Name        string
	Description string
	Data        map[string]any // caller-defined payload, opaque to the engine
	IsTemplate  bool
	CreatedAt   time.Time
}

// CreateScenarioInput describes the metadata needed to create a scenario.
type CreateScenarioInput struct {
	ProductID   string
	Name        string
	Description string
	Data        map[string]any
	IsTemplate  bool
}

// CreateScenario creates a new scenario with a generated ID.
func CreateScenario(input CreateScenarioInput, now func() time.Time, idGenerator func() (string, error)) (Scenario, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateScenarioInput(input)
	if err != nil {
		return Scenario{}, err
	}

	scenarioID, err := idGenerator()
	if err != nil {
		return Scenario{}, fmt.Errorf("generate scenario id: %w", err)
	}

	return Scenario{
		ID:          scenarioID,
		ProductID:   normalized.ProductID,
		Name:        normalized.Name,
		Description: normalized.Description,
		Data:        normalized.Data,
		IsTemplate:  normalized.IsTemplate,
		CreatedAt:   now().UTC(),
	}, nil
}

// NormalizeCreateScenarioInput trims and validates scenario metadata.
func NormalizeCreateScenarioInput(input CreateScenarioInput) (CreateScenarioInput, error) {
	input.ProductID = strings.TrimSpace(input.ProductID)
	if input.ProductID == "" {
		return CreateScenarioInput{}, ErrEmptyProductID
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateScenarioInput{}, ErrEmptyScenarioName
	}
	input.Description = strings.TrimSpace(input.Description)
	return input, nil
}

// Characteristic is one free-form attribute attached to a product.
type Characteristic struct {
	ID        string
	ProductID string
	Name      string
	Value     string
}
