package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/verisim/verisim/internal/id"
)

// UserRole describes what a user account is allowed to do on the platform.
type UserRole string

const (
	// UserRoleOwner publishes products and manages their catalog entries.
	UserRoleOwner UserRole = "owner"
	// UserRoleEndUser runs test sessions against published products.
	UserRoleEndUser UserRole = "end_user"
)

var (
	// ErrEmptyUsername indicates a missing username.
	ErrEmptyUsername = errors.New("username is required")
	// ErrEmptyEmail indicates a missing email address.
	ErrEmptyEmail = errors.New("email is required")
	// ErrInvalidUserRole indicates an unsupported user role value.
	ErrInvalidUserRole = errors.New("user role must be owner or end_user")
)

// IsValid reports whether the user role is supported.
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleOwner, UserRoleEndUser:
		return true
	default:
		return false
	}
}

// User represents one registered account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
}

// CreateUserInput describes the metadata needed to register a user.
type CreateUserInput struct {
	Username     string
	Email        string
	PasswordHash string
	Role         UserRole
}

// CreateUser creates a new user with a generated ID and creation timestamp.
func CreateUser(input CreateUserInput, now func() time.Time, idGenerator func() (string, error)) (User, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateUserInput(input)
	if err != nil {
		return User{}, err
	}

	userID, err := idGenerator()
	if err != nil {
		return User{}, fmt.Errorf("generate user id: %w", err)
	}

	return User{
		ID:           userID,
		Username:     normalized.Username,
		Email:        normalized.Email,
		PasswordHash: normalized.PasswordHash,
		Role:         normalized.Role,
		CreatedAt:    now().UTC(),
	}, nil
}

// NormalizeCreateUserInput trims and validates user registration metadata.
func NormalizeCreateUserInput(input CreateUserInput) (CreateUserInput, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" {
		return CreateUserInput{}, ErrEmptyUsername
	}
	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" {
		return CreateUserInput{}, ErrEmptyEmail
	}
	if !input.Role.IsValid() {
		return CreateUserInput{}, ErrInvalidUserRole
	}
	return input, nil
}
