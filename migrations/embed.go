// Package migrations embeds the SQL schema for the advisory audit log.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
