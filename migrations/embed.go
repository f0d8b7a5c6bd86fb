// Package migrations embeds the versioned schema files for the SQL storage providers.
package migrations

import (
	"embed"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS

// SQLite returns the migrations for the SQLite provider
func SQLite() (fs.FS, error) {
	return fs.Sub(FS, "sqlite")
}

// Postgres returns the migrations for the PostgreSQL provider
func Postgres() (fs.FS, error) {
	return fs.Sub(FS, "postgres")
}
