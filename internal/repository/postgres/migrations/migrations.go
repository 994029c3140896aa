// Package migrations embeds the goose migration set for the Postgres-backed
// relic repository.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
