package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/julianstephens/foodplannery/internal/storage"
	"github.com/julianstephens/foodplannery/internal/storage/storagetest"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store := NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	}
	return store, cleanup
}

func TestStoreConformance(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	storagetest.Run(t, store)
}

func TestLoadNotInitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestSlotsSurviveReopen(t *testing.T) {
	store, _ := setupTestStore(t)
	if err := store.Set("foodplannery_meals", []byte(`[{"id":"a"}]`)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened := NewStore(store.GetConfigPath())
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("foodplannery_meals")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `[{"id":"a"}]` {
		t.Errorf("Get() = %s", got)
	}
}

func TestUnloadedStore(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "x.db"))
	if _, err := store.Get("k"); !errors.Is(err, storage.ErrNotLoaded) {
		t.Errorf("Get() error = %v, want ErrNotLoaded", err)
	}
	if store.GetDB() != nil {
		t.Error("GetDB() should be nil before Init")
	}
}
