// Package database provides SQLite-based run history for revigodl.
//
// Each invocation started with history enabled is stored as one row in the
// runs table, with one row per reached artifact step in the artifacts
// table. The GO list itself is not stored, only its path and SHA3 digest.
//
// The driver is modernc.org/sqlite, so the binary stays CGO-free.
package database
