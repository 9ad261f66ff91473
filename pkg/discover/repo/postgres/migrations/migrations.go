// Package migrations embeds the goose SQL migrations for the discover schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
