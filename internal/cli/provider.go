package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/julianstephens/foodplannery/internal/config"
	"github.com/julianstephens/foodplannery/internal/constants"
	"github.com/julianstephens/foodplannery/internal/keyring"
	"github.com/julianstephens/foodplannery/internal/storage"
	"github.com/julianstephens/foodplannery/internal/storage/postgres"
	"github.com/julianstephens/foodplannery/internal/storage/sqlite"
)

// KeyringStorage selects the PostgreSQL connection string saved in the OS keyring
const KeyringStorage = "keyring"

// MemoryStorage keeps slots in process memory only
const MemoryStorage = ":memory:"

func isPostgres(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// NewProvider picks a storage backend for target: ":memory:", "keyring", a
// PostgreSQL URL, a .json file or, by default, a SQLite database file.
func NewProvider(target string) (storage.Provider, error) {
	target = strings.TrimSpace(target)

	switch {
	case target == MemoryStorage:
		return storage.NewMemoryStore(), nil

	case target == KeyringStorage:
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("%w. Use 'foodplannery db set-connection' to store one", err)
			}
			return nil, err
		}
		// The keyring is encrypted, so a password inside the string is tolerated there
		if err := postgres.ValidateConnString(connStr); err != nil && !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, fmt.Errorf("connection string in keyring: %w", err)
		}
		return postgres.New(connStr), nil

	case isPostgres(target):
		if err := postgres.ValidateConnString(target); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w. Use PGPASSWORD, ~/.pgpass or 'foodplannery db set-connection' instead", err)
			}
			return nil, err
		}
		return postgres.New(target), nil
	}

	path, err := config.ExpandPath(target)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}

// LockPath returns where the instance lock for target lives. Only file
// backends are locked.
func LockPath(target string) (string, bool) {
	target = strings.TrimSpace(target)
	if target == MemoryStorage || target == KeyringStorage || isPostgres(target) {
		return "", false
	}
	path, err := config.ExpandPath(target)
	if err != nil {
		return "", false
	}
	return filepath.Join(filepath.Dir(path), constants.LockfileName), true
}
