// Package database provides the PostgreSQL connection pool and schema for the
// optional draw mirror.
//
// The CSV dataset stays authoritative. The mirror holds:
//   - draws: one row per draw number, append-only
//   - update_runs: one row per update that reached the mirror
package database
