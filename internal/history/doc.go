// Package history keeps a SQLite ledger of every placement attempt so the CLI
// and API can show what moved where, and what failed, across restarts.
//
// The schema is embedded and versioned; a mismatched database is rejected
// with ErrSchemaMismatch rather than migrated in place.
package history
