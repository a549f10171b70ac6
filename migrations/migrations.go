// Package migrations embeds the SQLite schema applied by the database layer on open.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
