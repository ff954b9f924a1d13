// Package migrations embeds the goose SQL migrations.
// The statements are portable between PostgreSQL and SQLite.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
