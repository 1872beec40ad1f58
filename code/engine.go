package code

import (
	"context"

	"github.com/jonwraymond/dataexec/dataset"
)

// Scope is the dataset bindings a script starts with, keyed by global name.
type Scope map[string]*dataset.Frame

// Engine is the pluggable interpreter that runs scripts against a Scope.
// Implementations are responsible for parsing and executing the code in the
// specified language.
//
// The Engine should:
//   - Bind every Scope entry as a global before the script starts
//   - Capture stdout and stderr in private buffers, never the process streams
//   - After success, convert each name in params.Promote that the script left
//     non-nil into a frame and return it in ExecuteResult.Bindings
//   - Wrap execution errors in CodeError with line info when available
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return an error wrapping ctx.Err() when canceled.
// - Errors: execution failures should return CodeError where possible; callers use errors.Is.
// - Ownership: params and scope are read-only; returned ExecuteResult is caller-owned.
type Engine interface {
	// Execute runs a script with the scope bound as globals.
	Execute(ctx context.Context, params ExecuteParams, scope Scope) (ExecuteResult, error)
}

// Store is the dataset store a DefaultExecutor reads from and promotes into.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Ownership: Snapshot returns a caller-owned map.
type Store interface {
	// Snapshot returns every stored dataset by name.
	Snapshot() map[string]*dataset.Frame

	// Put stores f under name, replacing any previous dataset.
	Put(name string, f *dataset.Frame)
}
