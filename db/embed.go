// Package db embeds the SQL migration files so both binaries can run
// migrations without shipping the files alongside the executable.
package db

import "embed"

// MigrationsFS holds the goose migration files.
//
//go:embed migrations/*.sql
var MigrationsFS embed.FS
