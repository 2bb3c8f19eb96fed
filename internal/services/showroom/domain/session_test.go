package domain

import (
	"errors"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func staticID(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

func TestCreateSessionDefaults(t *testing.T) {
	t.Parallel()

	session, err := CreateSession(CreateSessionInput{
		UserID:    " user-1 ",
		ProductID: "prod-1",
	}, fixedClock, staticID("sess-1"))
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.ID != "sess-1" {
		t.Fatalf("id = %q, want %q", session.ID, "sess-1")
	}
	if session.UserID != "user-1" {
		t.Fatalf("user id = %q, want trimmed %q", session.UserID, "user-1")
	}
	if session.Status != SessionStatusActive {
		t.Fatalf("status = %v, want %v", session.Status, SessionStatusActive)
	}
	if session.CompletedAt != nil {
		t.Fatal("expected nil completed_at on a new session")
	}
	if !session.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("created_at = %v, want %v", session.CreatedAt, fixedClock())
	}
}

func TestCreateSessionRequiresUserAndProduct(t *testing.T) {
	t.Parallel()

	if _, err := CreateSession(CreateSessionInput{ProductID: "prod-1"}, nil, nil); !errors.Is(err, ErrEmptySessionUserID) {
		t.Fatalf("missing user error = %v, want %v", err, ErrEmptySessionUserID)
	}
	if _, err := CreateSession(CreateSessionInput{UserID: "user-1"}, nil, nil); !errors.Is(err, ErrEmptySessionProductID) {
		t.Fatalf("missing product error = %v, want %v", err, ErrEmptySessionProductID)
	}
}

func TestSessionStatusRoundTrip(t *testing.T) {
	t.Parallel()

	for _, status := range []SessionStatus{SessionStatusActive, SessionStatusCompleted} {
		if got := ParseSessionStatus(status.String()); got != status {
			t.Fatalf("round trip of %v = %v", status, got)
		}
	}
	if got := ParseSessionStatus("bogus"); got != SessionStatusUnspecified {
		t.Fatalf("parse bogus status = %v, want %v", got, SessionStatusUnspecified)
	}
}

func TestProductStatusTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from    ProductStatus
		to      ProductStatus
		allowed bool
	}{
		{ProductStatusPending, ProductStatusVerified, true},
		{ProductStatusPending, ProductStatusFailed, true},
		{ProductStatusVerified, ProductStatusFailed, false},
		{ProductStatusFailed, ProductStatusVerified, false},
		{ProductStatusVerified, ProductStatusPending, false},
		{ProductStatusPending, ProductStatusPending, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%v -> %v = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestCreateProductStartsPending(t *testing.T) {
	t.Parallel()

	product, err := CreateProduct(CreateProductInput{
		OwnerID: "owner-1",
		Name:    "Widget",
	}, fixedClock, staticID("prod-1"))
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if product.Status != ProductStatusPending {
		t.Fatalf("status = %v, want %v", product.Status, ProductStatusPending)
	}
}

func TestKindOfFallsBackToGeneric(t *testing.T) {
	t.Parallel()

	cases := []struct {
		tag  string
		want InteractionKind
	}{
		{"click", InteractionKindClick},
		{"rotate", InteractionKindRotate},
		{"zoom", InteractionKindZoom},
		{"hover", InteractionKindGeneric},
		{"", InteractionKindGeneric},
	}
	for _, tc := range cases {
		if got := KindOf(tc.tag); got != tc.want {
			t.Fatalf("KindOf(%q) = %v, want %v", tc.tag, got, tc.want)
		}
	}
}

func TestCreateUserValidatesRole(t *testing.T) {
	t.Parallel()

	if _, err := CreateUser(CreateUserInput{
		Username: "ana",
		Email:    "ana@example.com",
		Role:     UserRole("admin"),
	}, nil, nil); !errors.Is(err, ErrInvalidUserRole) {
		t.Fatalf("invalid role error = %v, want %v", err, ErrInvalidUserRole)
	}

	user, err := CreateUser(CreateUserInput{
		Username:     "ana",
		Email:        "ana@example.com",
		PasswordHash: "hash",
		Role:         UserRoleOwner,
	}, fixedClock, staticID("user-1"))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Role != UserRoleOwner {
		t.Fatalf("role = %v, want %v", user.Role, UserRoleOwner)
	}
}
