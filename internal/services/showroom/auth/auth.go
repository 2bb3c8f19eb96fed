// Package auth handles account registration, password checks, and
// bearer token issuance for the showroom API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/verisim/verisim/internal/id"
	"github.com/verisim/verisim/internal/services/showroom/domain"
	"github.com/verisim/verisim/internal/services/showroom/storage"
)

var (
	// ErrInvalidCredentials indicates an unknown username or a password
	// mismatch. The two cases are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrEmptyPassword indicates a missing password at registration.
	ErrEmptyPassword = errors.New("auth: password is required")
	// ErrInvalidToken indicates a bearer token that failed verification.
	ErrInvalidToken = errors.New("auth: invalid token")
)

const tokenTTL = 24 * time.Hour

// Service registers accounts and issues HS256 bearer tokens.
type Service struct {
	users       storage.UserStore
	secret      []byte
	clock       func() time.Time
	idGenerator func() (string, error)
}

// NewService creates an auth service signing tokens with the given
// secret.
func NewService(users storage.UserStore, secret []byte) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: token secret is required")
	}
	return &Service{
		users:       users,
		secret:      secret,
		clock:       time.Now,
		idGenerator: id.NewID,
	}, nil
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.UserRole
}

// Identity is the verified subject of a bearer token.
type Identity struct {
	UserID string
	Role   domain.UserRole
}

// RegisterUser creates an account with a bcrypt password hash. Username
// and email must be unique.
func (s *Service) RegisterUser(ctx context.Context, input RegisterInput) (domain.User, error) {
	if strings.TrimSpace(input.Password) == "" {
		return domain.User{}, ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := domain.CreateUser(domain.CreateUserInput{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
	}, s.clock, s.idGenerator)
	if err != nil {
		return domain.User{}, err
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("persist user: %w", err)
	}
	return user, nil
}

// Authenticate checks a username/password pair and returns the account
// on success.
func (s *Service) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken signs a bearer token for the user.
func (s *Service) IssueToken(user domain.User) (string, error) {
	now := s.clock().UTC()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks a bearer token and returns the identity embedded
// in it.
func (s *Service) VerifyToken(raw string) (Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}, ErrInvalidToken
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(func() time.Time { return s.clock() }))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	roleValue, _ := claims["role"].(string)
	role := domain.UserRole(roleValue)
	if sub == "" || !role.IsValid() {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: sub, Role: role}, nil
}
