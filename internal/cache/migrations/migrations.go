// Package migrations embeds the goose migrations for the local cache tier.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
