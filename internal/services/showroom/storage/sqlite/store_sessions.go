package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verisim/verisim/internal/services/showroom/domain"
	"github.com/verisim/verisim/internal/services/showroom/storage"
)

// CreateSession inserts one test session record.
func (s *Store) CreateSession(ctx context.Context, session domain.TestSession) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	sessionID := strings.TrimSpace(session.ID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	var scenarioID any
	if strings.TrimSpace(session.ScenarioID) != "" {
		scenarioID = session.ScenarioID
	}
	var completedAt any
	if session.CompletedAt != nil {
		completedAt = toMillis(*session.CompletedAt)
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO test_sessions (session_id, user_id, product_id, scenario_id, session_data, status, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID,
		session.UserID,
		session.ProductID,
		scenarioID,
		session.SessionData,
		session.Status.String(),
		toMillis(session.CreatedAt),
		completedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession returns one test session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (domain.TestSession, error) {
	if err := ctx.Err(); err != nil {
		return domain.TestSession{}, err
	}
	if err := s.ready(); err != nil {
		return domain.TestSession{}, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return domain.TestSession{}, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT session_id, user_id, product_id, scenario_id, session_data, status, created_at, completed_at
		   FROM test_sessions
		  WHERE session_id = ?`,
		sessionID,
	)

	var session domain.TestSession
	var scenarioID sql.NullString
	var sessionData []byte
	var status string
	var createdAt int64
	var completedAt sql.NullInt64
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.ProductID,
		&scenarioID,
		&sessionData,
		&status,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TestSession{}, storage.ErrNotFound
		}
		return domain.TestSession{}, fmt.Errorf("get session: %w", err)
	}
	if scenarioID.Valid {
		session.ScenarioID = scenarioID.String
	}
	session.SessionData = sessionData
	session.Status = domain.ParseSessionStatus(status)
	session.CreatedAt = fromMillis(createdAt)
	if completedAt.Valid {
		value := fromMillis(completedAt.Int64)
		session.CompletedAt = &value
	}
	return session, nil
}

// UpdateSessionData replaces the serialized engine state of one session.
func (s *Store) UpdateSessionData(ctx context.Context, sessionID string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`UPDATE test_sessions SET session_data = ? WHERE session_id = ?`,
		data,
		sessionID,
	)
	if err != nil {
		return fmt.Errorf("update session data: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session data: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateSessionStatus changes the session lifecycle state. Moving to
// completed stamps completed_at; the stamp is kept on repeated calls.
func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	if status != domain.SessionStatusActive && status != domain.SessionStatusCompleted {
		return fmt.Errorf("session status %v is not storable", status)
	}

	var result sql.Result
	var err error
	if status == domain.SessionStatusCompleted {
		result, err = s.sqlDB.ExecContext(
			ctx,
			`UPDATE test_sessions
			    SET status = ?, completed_at = COALESCE(completed_at, ?)
			  WHERE session_id = ?`,
			status.String(),
			toMillis(time.Now()),
			sessionID,
		)
	} else {
		result, err = s.sqlDB.ExecContext(
			ctx,
			`UPDATE test_sessions SET status = ?, completed_at = NULL WHERE session_id = ?`,
			status.String(),
			sessionID,
		)
	}
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AppendInteraction durably appends one interaction log row. The log is
// append-only and authoritative for audit regardless of session state writes.
func (s *Store) AppendInteraction(ctx context.Context, interaction domain.Interaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	interactionID := strings.TrimSpace(interaction.ID)
	if interactionID == "" {
		return fmt.Errorf("interaction id is required")
	}
	sessionID := strings.TrimSpace(interaction.SessionID)
	if sessionID == "" {
		return fmt.Errorf("session id is required")
	}
	payload, err := marshalPayload(interaction.Data)
	if err != nil {
		return err
	}

	timestamp := interaction.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO interactions (interaction_id, session_id, interaction_type, interaction_data, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		interactionID,
		sessionID,
		interaction.Type,
		payload,
		toMillis(timestamp),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("append interaction: %w", err)
	}
	return nil
}

// ListInteractions returns the interaction log of one session in append order.
func (s *Store) ListInteractions(ctx context.Context, sessionID string) ([]domain.Interaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	rows, err := s.sqlDB.QueryContext(
		ctx,
		`SELECT interaction_id, session_id, interaction_type, interaction_data, timestamp
		   FROM interactions
		  WHERE session_id = ?
		  ORDER BY rowid ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var interactions []domain.Interaction
	for rows.Next() {
		var interaction domain.Interaction
		var payload string
		var timestamp int64
		if err := rows.Scan(
			&interaction.ID,
			&interaction.SessionID,
			&interaction.Type,
			&payload,
			&timestamp,
		); err != nil {
			return nil, fmt.Errorf("list interactions: %w", err)
		}
		data, err := unmarshalPayload(payload)
		if err != nil {
			return nil, err
		}
		interaction.Data = data
		interaction.Timestamp = fromMillis(timestamp)
		interactions = append(interactions, interaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return interactions, nil
}

// CountInteractions returns the number of logged interactions of one session.
func (s *Store) CountInteractions(ctx context.Context, sessionID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return 0, fmt.Errorf("session id is required")
	}

	var count int
	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM interactions WHERE session_id = ?`,
		sessionID,
	)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count interactions: %w", err)
	}
	return count, nil
}
