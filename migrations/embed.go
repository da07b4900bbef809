// Package migrations holds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS contains every migration. Files ending in _rollback.sql undo the
// migration with the same prefix.
//
//go:embed *.sql
var FS embed.FS
