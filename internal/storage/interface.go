package storage

import "errors"

var (
	// ErrNotFound is returned by Get when a slot has never been written or was deleted
	ErrNotFound = errors.New("slot not found")
	// ErrNotInitialized is returned by Load when the backing file or database does not exist yet
	ErrNotInitialized = errors.New("storage not initialized")
	// ErrNotLoaded is returned by slot operations called before Init or Load
	ErrNotLoaded = errors.New("storage not loaded")
)

// Provider is a durable key-value slot store. Each slot holds one serialized value
// that survives process restarts; writers always replace the whole value.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Slots
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)

	// Utils
	GetConfigPath() string
}

// IsNotFound reports whether err means the slot has no value
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
