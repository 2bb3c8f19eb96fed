// Package catalog manages the product lifecycle for owners: uploads,
// compatibility verification, metadata edits, and the browsable list of
// verified products.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/verisim/verisim/internal/id"
	"github.com/verisim/verisim/internal/services/showroom/compat"
	"github.com/verisim/verisim/internal/services/showroom/domain"
	"github.com/verisim/verisim/internal/services/showroom/storage"
	"github.com/verisim/verisim/internal/services/showroom/storage/files"
)

// ErrNotOwner indicates the caller does not own the product it tried to
// modify.
var ErrNotOwner = errors.New("catalog: caller does not own product")

// Stores groups the storage interfaces the catalog service needs.
type Stores struct {
	Product        storage.ProductStore
	Scenario       storage.ScenarioStore
	Characteristic storage.CharacteristicStore
}

// Service exposes the product catalog operations.
type Service struct {
	stores      Stores
	models      *files.Store
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService creates a catalog service with default dependencies.
func NewService(stores Stores, models *files.Store) *Service {
	return &Service{
		stores:      stores,
		models:      models,
		clock:       time.Now,
		idGenerator: id.NewID,
	}
}

// ModelUpload carries an uploaded model asset.
type ModelUpload struct {
	Filename string
	Content  io.Reader
}

// CharacteristicInput is one name/value pair attached to an upload.
type CharacteristicInput struct {
	Name  string
	Value string
}

// ScenarioInput is one scenario definition attached to an upload.
type ScenarioInput struct {
	Name        string
	Description string
	Data        map[string]any
	IsTemplate  bool
}

// UploadInput carries everything needed to publish a product.
type UploadInput struct {
	OwnerID         string
	Name            string
	Description     string
	Model           *ModelUpload // nil when no asset was uploaded
	Characteristics []CharacteristicInput
	Scenarios       []ScenarioInput
}

// UploadResult reports the stored product and its verification outcome.
type UploadResult struct {
	Product     domain.Product
	Compat      compat.Result
	ScenarioIDs []string
}

// ProductDetails is the full read model for one product.
type ProductDetails struct {
	Product         domain.Product
	Scenarios       []domain.Scenario
	Characteristics []domain.Characteristic
}

// UploadProduct stores the model asset, creates the product with its
// characteristics and scenarios, and runs the compatibility check. The
// product leaves this call verified or failed; the status never changes
// again.
func (s *Service) UploadProduct(ctx context.Context, input UploadInput) (UploadResult, error) {
	normalized, err := domain.NormalizeCreateProductInput(domain.CreateProductInput{
		OwnerID:     input.OwnerID,
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		return UploadResult{}, err
	}

	product, err := domain.CreateProduct(normalized, s.clock, s.idGenerator)
	if err != nil {
		return UploadResult{}, err
	}

	if input.Model != nil {
		rel, err := s.models.SaveModel(product.ID, input.Model.Filename, input.Model.Content)
		if err != nil {
			return UploadResult{}, fmt.Errorf("store model asset: %w", err)
		}
		product.ModelFilePath = rel
	}

	if err := s.stores.Product.CreateProduct(ctx, product); err != nil {
		return UploadResult{}, fmt.Errorf("persist product: %w", err)
	}

	for _, c := range input.Characteristics {
		charID, err := s.idGenerator()
		if err != nil {
			return UploadResult{}, fmt.Errorf("generate characteristic id: %w", err)
		}
		err = s.stores.Characteristic.AddCharacteristic(ctx, domain.Characteristic{
			ID:        charID,
			ProductID: product.ID,
			Name:      strings.TrimSpace(c.Name),
			Value:     strings.TrimSpace(c.Value),
		})
		if err != nil {
			return UploadResult{}, fmt.Errorf("persist characteristic: %w", err)
		}
	}

	scenarioIDs := make([]string, 0, len(input.Scenarios))
	for _, sc := range input.Scenarios {
		scenario, err := domain.CreateScenario(domain.CreateScenarioInput{
			ProductID:   product.ID,
			Name:        sc.Name,
			Description: sc.Description,
			Data:        sc.Data,
			IsTemplate:  sc.IsTemplate,
		}, s.clock, s.idGenerator)
		if err != nil {
			return UploadResult{}, err
		}
		if err := s.stores.Scenario.CreateScenario(ctx, scenario); err != nil {
			return UploadResult{}, fmt.Errorf("persist scenario: %w", err)
		}
		scenarioIDs = append(scenarioIDs, scenario.ID)
	}

	check := s.verifyProduct(product)
	status := domain.ProductStatusFailed
	if check.OK {
		status = domain.ProductStatusVerified
	}
	if err := s.stores.Product.UpdateProductStatus(ctx, product.ID, status); err != nil {
		return UploadResult{}, fmt.Errorf("apply verification status: %w", err)
	}
	product.Status = status
	if !check.OK {
		log.Printf("product %s failed verification: %s", product.ID, check.Reason)
	}

	return UploadResult{Product: product, Compat: check, ScenarioIDs: scenarioIDs}, nil
}

// verifyProduct runs the compatibility rules against the stored asset.
func (s *Service) verifyProduct(product domain.Product) compat.Result {
	input := compat.CheckInput{HasModelFile: product.ModelFilePath != ""}
	if input.HasModelFile {
		size, err := s.models.StatModel(product.ModelFilePath)
		if err == nil {
			input.ModelFileExists = true
			input.ModelFileSize = size
		}
	}
	return compat.Check(input)
}

// GetProductDetails returns a product with its scenarios and
// characteristics.
func (s *Service) GetProductDetails(ctx context.Context, productID string) (ProductDetails, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ProductDetails{}, storage.ErrNotFound
	}

	product, err := s.stores.Product.GetProduct(ctx, productID)
	if err != nil {
		return ProductDetails{}, fmt.Errorf("load product: %w", err)
	}
	scenarios, err := s.stores.Scenario.ListScenariosByProduct(ctx, productID)
	if err != nil {
		return ProductDetails{}, fmt.Errorf("load scenarios: %w", err)
	}
	characteristics, err := s.stores.Characteristic.ListCharacteristics(ctx, productID)
	if err != nil {
		return ProductDetails{}, fmt.Errorf("load characteristics: %w", err)
	}

	return ProductDetails{
		Product:         product,
		Scenarios:       scenarios,
		Characteristics: characteristics,
	}, nil
}

// ListAvailableProducts returns the verified products end users can
// open sessions against.
func (s *Service) ListAvailableProducts(ctx context.Context) ([]domain.Product, error) {
	return s.stores.Product.ListVerifiedProducts(ctx)
}

// ListOwnerProducts returns every product the owner has uploaded,
// regardless of status.
func (s *Service) ListOwnerProducts(ctx context.Context, ownerID string) ([]domain.Product, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, domain.ErrEmptyOwnerID
	}
	return s.stores.Product.ListProductsByOwner(ctx, ownerID)
}

// UpdateInput carries the editable product fields. Nil fields are left
// unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
}

// UpdateProduct edits product metadata. Only the owner may edit.
func (s *Service) UpdateProduct(ctx context.Context, ownerID, productID string, input UpdateInput) (domain.Product, error) {
	product, err := s.ownedProduct(ctx, ownerID, productID)
	if err != nil {
		return domain.Product{}, err
	}

	update := storage.ProductUpdate{Name: input.Name, Description: input.Description}
	if err := s.stores.Product.UpdateProduct(ctx, product.ID, update); err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	return s.stores.Product.GetProduct(ctx, product.ID)
}

// DeleteProduct removes a product, its scenarios, characteristics, and
// stored model asset. Only the owner may delete.
func (s *Service) DeleteProduct(ctx context.Context, ownerID, productID string) error {
	product, err := s.ownedProduct(ctx, ownerID, productID)
	if err != nil {
		return err
	}

	if err := s.stores.Product.DeleteProduct(ctx, product.ID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if err := s.models.DeleteModel(product.ModelFilePath); err != nil {
		log.Printf("delete model asset for %s: %v", product.ID, err)
	}
	return nil
}

// ListScenarioTemplates returns the reusable scenario templates across
// all products.
func (s *Service) ListScenarioTemplates(ctx context.Context) ([]domain.Scenario, error) {
	return s.stores.Scenario.ListScenarioTemplates(ctx)
}

func (s *Service) ownedProduct(ctx context.Context, ownerID, productID string) (domain.Product, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return domain.Product{}, domain.ErrEmptyOwnerID
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, storage.ErrNotFound
	}

	product, err := s.stores.Product.GetProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("load product: %w", err)
	}
	if product.OwnerID != ownerID {
		return domain.Product{}, ErrNotOwner
	}
	return product, nil
}
