// Package session holds the mutable state of one analysis session.
//
// A [Session] aggregates three parts:
//
//   - [Namer]: allocates anonymous dataset names df_1, df_2, ...
//   - [Store]: maps dataset names to immutable frames
//   - [AuditLog]: an append-only record of loads, runs and promotions
//
// Each part guards itself and is safe for concurrent use on its own.
// Sequences that must appear atomic to other callers (load a file and
// store it, or snapshot, execute and promote) run inside [Session.Update],
// which holds the session lock exclusively. Readers such as listing use
// [Session.View].
package session
