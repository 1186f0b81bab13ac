package migrations

import "embed"

// Files stores forward-only SQL migrations embedded into the binary. Each
// file bumps the schema version by one; the version never decreases.
//
//go:embed *.sql
var Files embed.FS
