// Package storagetest holds the behaviour every storage.Provider must share.
package storagetest

import (
	"errors"
	"reflect"
	"testing"

	"github.com/julianstephens/foodplannery/internal/storage"
)

// Run exercises p, which must already be initialized or loaded and empty.
func Run(t *testing.T, p storage.Provider) {
	t.Helper()

	t.Run("missing slot", func(t *testing.T) {
		_, err := p.Get("missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		want := []byte(`[{"id":"1","name":"Oats"}]`)
		if err := p.Set("meals", want); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := p.Get("meals")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != string(want) {
			t.Errorf("Get() = %s, want %s", got, want)
		}
	})

	t.Run("overwrite replaces whole value", func(t *testing.T) {
		if err := p.Set("meals", []byte(`[]`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		got, err := p.Get("meals")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if string(got) != `[]` {
			t.Errorf("Get() = %s, want []", got)
		}
	})

	t.Run("keys sorted", func(t *testing.T) {
		if err := p.Set("consultations", []byte(`[]`)); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		keys, err := p.Keys()
		if err != nil {
			t.Fatalf("Keys() error = %v", err)
		}
		want := []string{"consultations", "meals"}
		if !reflect.DeepEqual(keys, want) {
			t.Errorf("Keys() = %v, want %v", keys, want)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := p.Delete("consultations"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := p.Get("consultations"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
		}
		// Deleting again is not an error
		if err := p.Delete("consultations"); err != nil {
			t.Errorf("second Delete() error = %v", err)
		}
	})
}
