package postgres

import _ "embed"

// Schema is the full DDL. Every statement is idempotent, so applying it on
// an already-migrated database is a no-op.
//
//go:embed schema.sql
var Schema string
