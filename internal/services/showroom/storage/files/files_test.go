package files

import (
	"errors"
	"strings"
	"testing"
)

func TestNewStoreRequiresRoot(t *testing.T) {
	t.Parallel()

	if _, err := NewStore("  "); err == nil {
		t.Fatal("expected empty root error")
	}
}

func TestSaveStatDeleteModel(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	rel, err := store.SaveModel("prod-1", "lamp.glb", strings.NewReader("mesh-bytes"))
	if err != nil {
		t.Fatalf("save model: %v", err)
	}
	if rel != "models/prod-1.glb" {
		t.Fatalf("relative path = %q, want %q", rel, "models/prod-1.glb")
	}

	size, err := store.StatModel(rel)
	if err != nil {
		t.Fatalf("stat model: %v", err)
	}
	if size != int64(len("mesh-bytes")) {
		t.Fatalf("size = %d, want %d", size, len("mesh-bytes"))
	}

	if err := store.DeleteModel(rel); err != nil {
		t.Fatalf("delete model: %v", err)
	}
	if _, err := store.StatModel(rel); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stat after delete = %v, want %v", err, ErrNotFound)
	}

	// Repeat deletes are a no-op.
	if err := store.DeleteModel(rel); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestSaveModelReplacesExistingAsset(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, err := store.SaveModel("prod-1", "v1.glb", strings.NewReader("first")); err != nil {
		t.Fatalf("save first: %v", err)
	}
	rel, err := store.SaveModel("prod-1", "v2.glb", strings.NewReader("second-version"))
	if err != nil {
		t.Fatalf("save second: %v", err)
	}

	size, err := store.StatModel(rel)
	if err != nil {
		t.Fatalf("stat model: %v", err)
	}
	if size != int64(len("second-version")) {
		t.Fatalf("size = %d, want %d", size, len("second-version"))
	}
}

func TestStatModelMissing(t *testing.T) {
	t.Parallel()

	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.StatModel("models/missing.glb"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("stat missing = %v, want %v", err, ErrNotFound)
	}
	if _, err := store.OpenModel("models/missing.glb"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("open missing = %v, want %v", err, ErrNotFound)
	}
}
