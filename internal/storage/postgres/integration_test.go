package postgres

import (
	"os"
	"testing"

	"github.com/julianstephens/foodplannery/internal/storage/storagetest"
)

// Set FOODPLANNERY_TEST_POSTGRES to a disposable database, e.g.
// postgres://postgres@localhost:5432/foodplannery_test?sslmode=disable
// The foodplannery schema in that database is dropped before the run.
func TestPostgresIntegration(t *testing.T) {
	connStr := os.Getenv("FOODPLANNERY_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("FOODPLANNERY_TEST_POSTGRES not set")
	}

	store := New(connStr)
	db, err := store.open()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := db.Exec("DROP SCHEMA IF EXISTS foodplannery CASCADE"); err != nil {
		t.Fatalf("reset schema: %v", err)
	}
	db.Close()

	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer store.Close()

	storagetest.Run(t, store)

	reopened := New(connStr)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get("meals")
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("Get() after reopen = %s, want []", got)
	}
}
