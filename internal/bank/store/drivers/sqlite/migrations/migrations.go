package migrations

import "embed"

// Migrations holds the sqlite schema, applied by golang-migrate at startup.
//
//go:embed *.sql
var Migrations embed.FS
