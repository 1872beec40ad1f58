// Package code runs caller-supplied scripts against the datasets of a
// session.
//
// A script sees a snapshot of the session: one global binding per stored
// dataset next to a fixed set of library bindings. It runs with private
// output buffers, and when it succeeds the globals the caller asked for are
// promoted back into the session store. A failed script never changes the
// store.
//
// # Architecture
//
// The package defines three main interfaces:
//
//   - [Engine]: The pluggable interpreter that executes one script against a
//     [Scope] and reports captured output and the requested bindings.
//
//   - [Store]: The dataset store a [DefaultExecutor] snapshots before and
//     promotes into after a run.
//
//   - [Executor]: The main entry point that applies defaults, enforces the
//     timeout, and performs snapshot, execute and promote.
//
// # Execution Limits
//
//   - Timeout: Applied via context deadline, returns [ErrLimitExceeded]
//   - MaxOutputBytes: Bounds each captured stream; overflow is replaced by a
//     truncation marker
//
// # Result Text
//
// [FormatOutput] builds the text returned to callers: an "Output:" block
// for stdout and an "Errors:" block for stderr, each present only when the
// stream is non-empty.
//
// # Errors
//
// Script failures are reported as [*CodeError], which matches
// [ErrCodeExecution] with errors.Is and records the [Stage] that failed:
// compiling the script, running it, or converting a promoted global.
// [StageOf] recovers the stage from a wrapped error. Timeouts wrap
// [ErrLimitExceeded].
// Invalid configuration returns [ErrConfiguration].
package code
