// Package migrations embeds the PostgreSQL schema scripts.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
