// Package migrations embeds the SQL schema for the database identity store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
