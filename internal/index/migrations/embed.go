// Package migrations embeds the goose migrations for the backup index.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
