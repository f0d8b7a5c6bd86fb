package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupJSONStore(t *testing.T) *JSONStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "foodplannery.json")
	store := NewJSONStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return store
}

func TestJSONStoreInit(t *testing.T) {
	t.Run("creates file and directory", func(t *testing.T) {
		store := setupJSONStore(t)
		if _, err := os.Stat(store.GetConfigPath()); err != nil {
			t.Errorf("expected storage file to exist: %v", err)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		store := setupJSONStore(t)
		again := NewJSONStore(store.GetConfigPath())
		if err := again.Init(); err == nil || !strings.Contains(err.Error(), "already initialized") {
			t.Errorf("second Init() error = %v, want already initialized", err)
		}
	})
}

func TestJSONStoreLoad(t *testing.T) {
	t.Run("not initialized", func(t *testing.T) {
		store := NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
		if err := store.Load(); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("Load() error = %v, want ErrNotInitialized", err)
		}
	})

	t.Run("corrupt document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		store := NewJSONStore(path)
		if err := store.Load(); err == nil {
			t.Error("Load() on corrupt document returned nil error")
		}
	})

	t.Run("persists across instances", func(t *testing.T) {
		store := setupJSONStore(t)
		if err := store.Set("foodplannery_meals", []byte(`[{"id":"1"}]`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		reopened := NewJSONStore(store.GetConfigPath())
		if err := reopened.Load(); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		got, err := reopened.Get("foodplannery_meals")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != `[{"id":"1"}]` {
			t.Errorf("Get() = %s", got)
		}
	})
}

func TestJSONStoreNotLoaded(t *testing.T) {
	store := NewJSONStore(filepath.Join(t.TempDir(), "x.json"))
	if _, err := store.Get("k"); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Get() error = %v, want ErrNotLoaded", err)
	}
	if err := store.Set("k", nil); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Set() error = %v, want ErrNotLoaded", err)
	}
}

func TestJSONStoreNoTempFileLeft(t *testing.T) {
	store := setupJSONStore(t)
	if err := store.Set("k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(store.GetConfigPath() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}
