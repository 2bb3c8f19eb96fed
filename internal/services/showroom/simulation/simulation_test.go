package simulation

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/verisim/verisim/internal/services/showroom/domain"
	"github.com/verisim/verisim/internal/services/showroom/engine"
	"github.com/verisim/verisim/internal/services/showroom/storage"
	"github.com/verisim/verisim/internal/services/showroom/storage/sqlite"
)

type testEnv struct {
	service *Service
	store   *sqlite.Store
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "showroom.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var seq int
	service := NewService(Stores{
		User:     store,
		Product:  store,
		Scenario: store,
		Session:  store,
	})
	service.clock = func() time.Time {
		return time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)
	}
	service.idGenerator = func() (string, error) {
		seq++
		return fmt.Sprintf("generated-%d", seq), nil
	}

	ctx := context.Background()
	if err := store.CreateUser(ctx, domain.User{
		ID:           "user-1",
		Username:     "tester",
		Email:        "tester@example.com",
		PasswordHash: "hash",
		Role:         domain.UserRoleEndUser,
		CreatedAt:    time.Now(),
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := store.CreateProduct(ctx, domain.Product{
		ID:            "prod-1",
		OwnerID:       "user-1",
		Name:          "Desk Lamp",
		ModelFilePath: "models/prod-1.glb",
		Status:        domain.ProductStatusPending,
		CreatedAt:     time.Now(),
	}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := store.UpdateProductStatus(ctx, "prod-1", domain.ProductStatusVerified); err != nil {
		t.Fatalf("verify product: %v", err)
	}

	return testEnv{service: service, store: store}
}

func createSession(t *testing.T, env testEnv) domain.TestSession {
	t.Helper()
	session, err := env.service.CreateSession(context.Background(), domain.CreateSessionInput{
		UserID:    "user-1",
		ProductID: "prod-1",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

func TestCreateSessionRequiresVerifiedProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.store.CreateProduct(ctx, domain.Product{
		ID:        "prod-pending",
		OwnerID:   "user-1",
		Name:      "Draft",
		Status:    domain.ProductStatusPending,
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed pending product: %v", err)
	}

	_, err := env.service.CreateSession(ctx, domain.CreateSessionInput{
		UserID:    "user-1",
		ProductID: "prod-pending",
	})
	if !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("error = %v, want %v", err, ErrProductNotAvailable)
	}
}

func TestCreateSessionRejectsForeignScenario(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.store.CreateProduct(ctx, domain.Product{
		ID:        "prod-2",
		OwnerID:   "user-1",
		Name:      "Other",
		Status:    domain.ProductStatusPending,
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := env.store.CreateScenario(ctx, domain.Scenario{
		ID:        "scen-other",
		ProductID: "prod-2",
		Name:      "Other walkthrough",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("seed scenario: %v", err)
	}

	_, err := env.service.CreateSession(ctx, domain.CreateSessionInput{
		UserID:     "user-1",
		ProductID:  "prod-1",
		ScenarioID: "scen-other",
	})
	if !errors.Is(err, ErrScenarioMismatch) {
		t.Fatalf("error = %v, want %v", err, ErrScenarioMismatch)
	}
}

func TestInteractionBeforeInitializeFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	session := createSession(t, env)

	_, err := env.service.ProcessInteraction(context.Background(), session.ID, "click", nil)
	if !errors.Is(err, engine.ErrNotInitialized) {
		t.Fatalf("error = %v, want %v", err, engine.ErrNotInitialized)
	}

	count, err := env.store.CountInteractions(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("count interactions: %v", err)
	}
	if count != 0 {
		t.Fatalf("interaction log grew on rejected interaction: %d", count)
	}
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	session := createSession(t, env)

	state, err := env.service.InitializeSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if !state.Initialized {
		t.Fatal("state not initialized")
	}
	if state.Product.ID != "prod-1" || state.Product.ModelFile != "models/prod-1.glb" {
		t.Fatalf("product snapshot = %+v", state.Product)
	}

	rotate, err := env.service.ProcessInteraction(ctx, session.ID, "rotate", map[string]any{"angle": 45.0})
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if rotate.Outcome.Step != 1 || rotate.Outcome.Result != "rotation handled" {
		t.Fatalf("rotate outcome = %+v", rotate.Outcome)
	}

	zoom, err := env.service.ProcessInteraction(ctx, session.ID, "zoom", nil)
	if err != nil {
		t.Fatalf("zoom: %v", err)
	}
	if zoom.Outcome.Step != 2 {
		t.Fatalf("zoom step = %d, want 2", zoom.Outcome.Step)
	}
	if zoom.State.Zoom == nil || *zoom.State.Zoom != 1.0 {
		t.Fatalf("zoom level = %v, want default 1.0", zoom.State.Zoom)
	}

	snapshot, err := env.service.GetState(ctx, session.ID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if snapshot.CurrentStep != 2 {
		t.Fatalf("current step = %d, want 2", snapshot.CurrentStep)
	}
	if snapshot.InteractionCount != 2 {
		t.Fatalf("interaction count = %d, want 2", snapshot.InteractionCount)
	}

	result, err := env.service.FinalizeSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if result.Status != domain.SessionStatusCompleted {
		t.Fatalf("status = %v, want %v", result.Status, domain.SessionStatusCompleted)
	}
	if result.TotalInteractions != 2 {
		t.Fatalf("total interactions = %d, want 2", result.TotalInteractions)
	}
	if result.CompletedAt.IsZero() {
		t.Fatal("expected completion timestamp")
	}
	if result.State.CurrentStep != 2 {
		t.Fatalf("final state step = %d, want 2", result.State.CurrentStep)
	}

	// Finalize repeats without error and keeps the first stamp.
	repeat, err := env.service.FinalizeSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("repeat finalize: %v", err)
	}
	if !repeat.CompletedAt.Equal(result.CompletedAt) {
		t.Fatalf("completion stamp moved: %v -> %v", result.CompletedAt, repeat.CompletedAt)
	}

	_, err = env.service.ProcessInteraction(ctx, session.ID, "click", nil)
	if !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("interaction after finalize = %v, want %v", err, ErrSessionCompleted)
	}
}

func TestInitializeSessionResetsProgress(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	session := createSession(t, env)

	if _, err := env.service.InitializeSession(ctx, session.ID); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := env.service.ProcessInteraction(ctx, session.ID, "click", nil); err != nil {
		t.Fatalf("click: %v", err)
	}

	state, err := env.service.InitializeSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	if state.CurrentStep != 0 || len(state.Interactions) != 0 {
		t.Fatalf("state after re-initialize = step %d, %d interactions", state.CurrentStep, len(state.Interactions))
	}

	// The snapshot counts the reset buffer, not the durable log.
	snapshot, err := env.service.GetState(ctx, session.ID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if snapshot.InteractionCount != 0 {
		t.Fatalf("interaction count after re-initialize = %d, want 0", snapshot.InteractionCount)
	}

	// The durable log still keeps the earlier interaction.
	logged, err := env.store.CountInteractions(ctx, session.ID)
	if err != nil {
		t.Fatalf("count interactions: %v", err)
	}
	if logged != 1 {
		t.Fatalf("logged interactions = %d, want 1", logged)
	}

	result, err := env.service.FinalizeSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if result.TotalInteractions != 0 || result.LoggedInteractions != 1 {
		t.Fatalf("finalize counts = %d/%d, want 0 total, 1 logged",
			result.TotalInteractions, result.LoggedInteractions)
	}
}

func TestGetStateBeforeInitialize(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	session := createSession(t, env)

	snapshot, err := env.service.GetState(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if snapshot.Initialized {
		t.Fatal("uninitialized session reported initialized")
	}
	if snapshot.Status != domain.SessionStatusActive {
		t.Fatalf("status = %v, want %v", snapshot.Status, domain.SessionStatusActive)
	}
}

func TestGetStateUnknownSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.service.GetState(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestConcurrentInteractionsSerialize(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	session := createSession(t, env)
	if _, err := env.service.InitializeSession(ctx, session.ID); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.service.ProcessInteraction(ctx, session.ID, "click", nil)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent interaction: %v", err)
		}
	}

	snapshot, err := env.service.GetState(ctx, session.ID)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if snapshot.CurrentStep != workers {
		t.Fatalf("current step = %d, want %d", snapshot.CurrentStep, workers)
	}
	if snapshot.InteractionCount != workers {
		t.Fatalf("interaction count = %d, want %d", snapshot.InteractionCount, workers)
	}
}
