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

const scenarioColumns = `scenario_id, product_id, name, description, scenario_data, is_template, created_at`

// CreateScenario inserts one scenario record.
func (s *Store) CreateScenario(ctx context.Context, scenario domain.Scenario) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	scenarioID := strings.TrimSpace(scenario.ID)
	if scenarioID == "" {
		return fmt.Errorf("scenario id is required")
	}
	payload, err := marshalPayload(scenario.Data)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO scenarios (`+scenarioColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		scenarioID,
		scenario.ProductID,
		scenario.Name,
		scenario.Description,
		payload,
		boolToInt(scenario.IsTemplate),
		toMillis(scenario.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create scenario: %w", err)
	}
	return nil
}

// GetScenario returns one scenario by ID.
func (s *Store) GetScenario(ctx context.Context, scenarioID string) (domain.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return domain.Scenario{}, err
	}
	if err := s.ready(); err != nil {
		return domain.Scenario{}, err
	}
	scenarioID = strings.TrimSpace(scenarioID)
	if scenarioID == "" {
		return domain.Scenario{}, fmt.Errorf("scenario id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT `+scenarioColumns+` FROM scenarios WHERE scenario_id = ?`,
		scenarioID,
	)
	scenario, err := scanScenario(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Scenario{}, storage.ErrNotFound
		}
		return domain.Scenario{}, fmt.Errorf("get scenario: %w", err)
	}
	return scenario, nil
}

// ListScenariosByProduct returns all scenarios attached to one product.
func (s *Store) ListScenariosByProduct(ctx context.Context, productID string) ([]domain.Scenario, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("product id is required")
	}
	return s.listScenarios(ctx, `SELECT `+scenarioColumns+` FROM scenarios WHERE product_id = ? ORDER BY created_at ASC, scenario_id ASC`, productID)
}

// ListScenarioTemplates returns all reusable scenario templates.
func (s *Store) ListScenarioTemplates(ctx context.Context) ([]domain.Scenario, error) {
	return s.listScenarios(ctx, `SELECT `+scenarioColumns+` FROM scenarios WHERE is_template = 1 ORDER BY created_at ASC, scenario_id ASC`)
}

func (s *Store) listScenarios(ctx context.Context, query string, args ...any) ([]domain.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	defer rows.Close()

	var scenarios []domain.Scenario
	for rows.Next() {
		scenario, err := scanScenario(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list scenarios: %w", err)
		}
		scenarios = append(scenarios, scenario)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenarios: %w", err)
	}
	return scenarios, nil
}

func scanScenario(scan func(dest ...any) error) (domain.Scenario, error) {
	var scenario domain.Scenario
	var payload string
	var isTemplate int
	var createdAt int64
	if err := scan(
		&scenario.ID,
		&scenario.ProductID,
		&scenario.Name,
		&scenario.Description,
		&payload,
		&isTemplate,
		&createdAt,
	); err != nil {
		return domain.Scenario{}, err
	}
	data, err := unmarshalPayload(payload)
	if err != nil {
		return domain.Scenario{}, err
	}
	scenario.Data = data
	scenario.IsTemplate = isTemplate != 0
	scenario.CreatedAt = fromMillis(createdAt)
	return scenario, nil
}

// AddCharacteristic inserts one product characteristic record.
func (s *Store) AddCharacteristic(ctx context.Context, characteristic domain.Characteristic) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	characteristicID := strings.TrimSpace(characteristic.ID)
	if characteristicID == "" {
		return fmt.Errorf("characteristic id is required")
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO product_characteristics (characteristic_id, product_id, characteristic_name, characteristic_value)
		 VALUES (?, ?, ?, ?)`,
		characteristicID,
		characteristic.ProductID,
		characteristic.Name,
		characteristic.Value,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("add characteristic: %w", err)
	}
	return nil
}

// ListCharacteristics returns all characteristics attached to one product.
func (s *Store) ListCharacteristics(ctx context.Context, productID string) ([]domain.Characteristic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("product id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT characteristic_id, product_id, characteristic_name, characteristic_value
		   FROM product_characteristics
		  WHERE product_id = ?
		  ORDER BY characteristic_id ASC`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list characteristics: %w", err)
	}
	defer rows.Close()

	var characteristics []domain.Characteristic
	for rows.Next() {
		var characteristic domain.Characteristic
		if err := rows.Scan(
			&characteristic.ID,
			&characteristic.ProductID,
			&characteristic.Name,
			&characteristic.Value,
		); err != nil {
			return nil, fmt.Errorf("list characteristics: %w", err)
		}
		characteristics = append(characteristics, characteristic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list characteristics: %w", err)
	}
	return characteristics, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
