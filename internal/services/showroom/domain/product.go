package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verisim/verisim/internal/id"
)

// ProductStatus describes the verification state of an uploaded product.
type ProductStatus int

const (
	// ProductStatusUnspecified represents an invalid product status value.
	ProductStatusUnspecified ProductStatus = iota
	// ProductStatusPending indicates the product has not been verified yet.
	ProductStatusPending
	// ProductStatusVerified indicates the compatibility check passed.
	ProductStatusVerified
	// ProductStatusFailed indicates the compatibility check failed.
	ProductStatusFailed
)

var (
	// ErrEmptyOwnerID indicates a missing owning user ID.
	ErrEmptyOwnerID = errors.New("owner id is required")
	// ErrEmptyProductName indicates a missing product name.
	ErrEmptyProductName = errors.New("product name is required")
	// ErrInvalidStatusTransition indicates a disallowed product status change.
	ErrInvalidStatusTransition = errors.New("product status can only move from pending to verified or failed")
)

// String returns the storage representation of the product status.
func (s ProductStatus) String() string {
	switch s {
	case ProductStatusPending:
		return "pending"
	case ProductStatusVerified:
		return "verified"
	case ProductStatusFailed:
		return "failed"
	default:
		return "unspecified"
	}
}

// ParseProductStatus maps a storage representation back to a product status.
func ParseProductStatus(value string) ProductStatus {
	switch value {
	case "pending":
		return ProductStatusPending
	case "verified":
		return ProductStatusVerified
	case "failed":
		return ProductStatusFailed
	default:
		return ProductStatusUnspecified
	}
}

// CanTransitionTo reports whether the status change is allowed. Verification
// is a one-shot gate: pending is the only state with outgoing edges.
func (s ProductStatus) CanTransitionTo(next ProductStatus) bool {
	if s != ProductStatusPending {
		return false
	}
	return next == ProductStatusVerified || next == ProductStatusFailed
}

// Product represents one publishable asset with its metadata.
type Product struct {
	ID            string
	OwnerID       string
	Name          string
	Description   string
	ModelFilePath string // empty when no model asset was uploaded
	Status        ProductStatus
	CreatedAt     time.Time
}

// CreateProductInput describes the metadata needed to create a product.
type CreateProductInput struct {
	OwnerID       string
	Name          string
	Description   string
	ModelFilePath string
}

// CreateProduct creates a new pending product with a generated ID.
func CreateProduct(input CreateProductInput, now func() time.Time, idGenerator func() (string, error)) (Product, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateProductInput(input)
	if err != nil {
		return Product{}, err
	}

	productID, err := idGenerator()
	if err != nil {
		return Product{}, fmt.Errorf("generate product id: %w", err)
	}

	return Product{
		ID:            productID,
		OwnerID:       normalized.OwnerID,
		Name:          normalized.Name,
		Description:   normalized.Description,
		ModelFilePath: normalized.ModelFilePath,
		Status:        ProductStatusPending,
		CreatedAt:     now().UTC(),
	}, nil
}

// NormalizeCreateProductInput trims and validates product metadata.
func NormalizeCreateProductInput(input CreateProductInput) (CreateProductInput, error) {
	input.OwnerID = strings.TrimSpace(input.OwnerID)
	if input.OwnerID == "" {
		return CreateProductInput{}, ErrEmptyOwnerID
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateProductInput{}, ErrEmptyProductName
	}
	input.Description = strings.TrimSpace(input.Description)
	input.ModelFilePath = strings.TrimSpace(input.ModelFilePath)
	return input, nil
}
