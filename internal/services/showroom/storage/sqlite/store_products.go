package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/verisim/verisim/internal/services/showroom/domain"
	"github.com/verisim/verisim/internal/services/showroom/storage"
)

const productColumns = `product_id, owner_id, name, description, model_file_path, status, created_at`

// CreateProduct inserts one product record.
func (s *Store) CreateProduct(ctx context.Context, product domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	productID := strings.TrimSpace(product.ID)
	if productID == "" {
		return fmt.Errorf("product id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO products (`+productColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		productID,
		product.OwnerID,
		product.Name,
		product.Description,
		product.ModelFilePath,
		product.Status.String(),
		toMillis(product.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetProduct returns one product by ID.
func (s *Store) GetProduct(ctx context.Context, productID string) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Product{}, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, fmt.Errorf("product id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+productColumns+` FROM products WHERE product_id = ?`,
		productID,
	)
	product, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, storage.ErrNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}

// UpdateProductStatus applies the one-shot verification gate. The guard is in
// the WHERE clause so concurrent verifiers cannot both win.
func (s *Store) UpdateProductStatus(ctx context.Context, productID string, status domain.ProductStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("product id is required")
	}
	if !domain.ProductStatusPending.CanTransitionTo(status) {
		return storage.ErrInvalidStatusTransition
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE products SET status = ? WHERE product_id = ? AND status = 'pending'`,
		status.String(),
		productID,
	)
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product status: %w", err)
	}
	if affected == 0 {
		if _, err := s.GetProduct(ctx, productID); errors.Is(err, storage.ErrNotFound) {
			return storage.ErrNotFound
		}
		return storage.ErrInvalidStatusTransition
	}
	return nil
}

// UpdateProduct applies the provided field changes; nil fields are untouched.
func (s *Store) UpdateProduct(ctx context.Context, productID string, update storage.ProductUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("product id is required")
	}

	assignments := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if update.Name != nil {
		assignments = append(assignments, "name = ?")
		args = append(args, strings.TrimSpace(*update.Name))
	}
	if update.Description != nil {
		assignments = append(assignments, "description = ?")
		args = append(args, strings.TrimSpace(*update.Description))
	}
	if update.ModelFilePath != nil {
		assignments = append(assignments, "model_file_path = ?")
		args = append(args, strings.TrimSpace(*update.ModelFilePath))
	}
	if len(assignments) == 0 {
		return nil
	}
	args = append(args, productID)

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE products SET `+strings.Join(assignments, ", ")+` WHERE product_id = ?`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteProduct removes the product with its scenarios and characteristics.
func (s *Store) DeleteProduct(ctx context.Context, productID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return fmt.Errorf("product id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete product: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_characteristics WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("delete product characteristics: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("delete product scenarios: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE product_id = ?`, productID)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete product: %w", err)
	}
	return nil
}

// ListVerifiedProducts returns all products available to end users.
func (s *Store) ListVerifiedProducts(ctx context.Context) ([]domain.Product, error) {
	return s.listProducts(ctx, `SELECT `+productColumns+` FROM products WHERE status = 'verified' ORDER BY created_at ASC, product_id ASC`)
}

// ListProductsByOwner returns all products of one owner regardless of status.
func (s *Store) ListProductsByOwner(ctx context.Context, ownerID string) ([]domain.Product, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required")
	}
	return s.listProducts(ctx, `SELECT `+productColumns+` FROM products WHERE owner_id = ? ORDER BY created_at ASC, product_id ASC`, ownerID)
}

func (s *Store) listProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func scanProduct(scan func(dest ...any) error) (domain.Product, error) {
	var product domain.Product
	var status string
	var createdAt int64
	if err := scan(
		&product.ID,
		&product.OwnerID,
		&product.Name,
		&product.Description,
		&product.ModelFilePath,
		&status,
		&createdAt,
	); err != nil {
		return domain.Product{}, err
	}
	product.Status = domain.ParseProductStatus(status)
	product.CreatedAt = fromMillis(createdAt)
	return product, nil
}
