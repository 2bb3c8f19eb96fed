package migrations

import "embed"

// FS contains embedded SQLite migrations for showroom storage.
//
//go:embed *.sql
var FS embed.FS
