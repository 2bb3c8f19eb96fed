// Package storage defines persistence contracts for showroom service state.
package storage

import (
	"context"
	"errors"

	"github.com/verisim/verisim/internal/services/showroom/domain"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrInvalidStatusTransition indicates a disallowed status change.
	ErrInvalidStatusTransition = errors.New("status transition is not allowed")
)

// UserStore persists registered accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
}

// ProductUpdate carries optional product field changes; nil fields are kept.
type ProductUpdate struct {
	Name          *string
	Description   *string
	ModelFilePath *string
}

// ProductStore persists product records and their verification status.
type ProductStore interface {
	CreateProduct(ctx context.Context, product domain.Product) error
	GetProduct(ctx context.Context, productID string) (domain.Product, error)
	// UpdateProductStatus applies the one-shot verification gate; it fails
	// with ErrInvalidStatusTransition unless the product is still pending.
	UpdateProductStatus(ctx context.Context, productID string, status domain.ProductStatus) error
	UpdateProduct(ctx context.Context, productID string, update ProductUpdate) error
	// DeleteProduct removes the product with its scenarios and characteristics.
	DeleteProduct(ctx context.Context, productID string) error
	ListVerifiedProducts(ctx context.Context) ([]domain.Product, error)
	ListProductsByOwner(ctx context.Context, ownerID string) ([]domain.Product, error)
}

// ScenarioStore persists usage scenarios and reusable templates.
type ScenarioStore interface {
	CreateScenario(ctx context.Context, scenario domain.Scenario) error
	GetScenario(ctx context.Context, scenarioID string) (domain.Scenario, error)
	ListScenariosByProduct(ctx context.Context, productID string) ([]domain.Scenario, error)
	ListScenarioTemplates(ctx context.Context) ([]domain.Scenario, error)
}

// CharacteristicStore persists free-form product attributes.
type CharacteristicStore interface {
	AddCharacteristic(ctx context.Context, characteristic domain.Characteristic) error
	ListCharacteristics(ctx context.Context, productID string) ([]domain.Characteristic, error)
}

// SessionStore persists test sessions and their append-only interaction log.
type SessionStore interface {
	CreateSession(ctx context.Context, session domain.TestSession) error
	GetSession(ctx context.Context, sessionID string) (domain.TestSession, error)
	UpdateSessionData(ctx context.Context, sessionID string, data []byte) error
	// UpdateSessionStatus also stamps completed_at when moving to completed.
	UpdateSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error
	AppendInteraction(ctx context.Context, interaction domain.Interaction) error
	ListInteractions(ctx context.Context, sessionID string) ([]domain.Interaction, error)
	CountInteractions(ctx context.Context, sessionID string) (int, error)
}
