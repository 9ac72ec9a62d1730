// Package migrations embeds the SQL migrations for the sqlite store.
package migrations

import "embed"

// FS holds the embedded migration files.
//
//go:embed *.sql
var FS embed.FS
