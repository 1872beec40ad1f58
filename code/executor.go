package code

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Executor is the main entry point for executing scripts.
// It orchestrates configuration, limits, snapshot and promotion.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use. Callers
// that need snapshot, execute and promote to be atomic with respect to
// other writers of the store serialize Run themselves.
// - Context: must honor cancellation/deadlines; deadline exceeded is wrapped with ErrLimitExceeded.
// - Errors: configuration failures return ErrConfiguration; execution failures propagate.
// - Ownership: params are read-only; returned results are caller-owned.
type Executor interface {
	// ExecuteCode runs a script against a snapshot of the store without
	// promoting anything.
	ExecuteCode(ctx context.Context, params ExecuteParams) (ExecuteResult, error)

	// Run executes a script and, on success only, stores the requested
	// globals.
	Run(ctx context.Context, params RunParams) (RunResult, error)
}

// DefaultExecutor is the standard implementation of Executor.
type DefaultExecutor struct {
	cfg Config
}

// NewDefaultExecutor creates a new DefaultExecutor with the given configuration.
// Returns ErrConfiguration if any required field is missing.
func NewDefaultExecutor(cfg Config) (*DefaultExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &DefaultExecutor{cfg: cfg}, nil
}

// ExecuteCode runs a script with the given parameters.
func (e *DefaultExecutor) ExecuteCode(ctx context.Context, params ExecuteParams) (ExecuteResult, error) {
	// Apply defaults from config
	if params.Language == "" {
		params.Language = e.cfg.DefaultLanguage
	}
	if params.Timeout == 0 {
		params.Timeout = e.cfg.DefaultTimeout
	}
	if params.MaxOutputBytes == 0 {
		params.MaxOutputBytes = e.cfg.MaxOutputBytes
	}

	scope := Scope(e.cfg.Store.Snapshot())

	var cancel context.CancelFunc
	if params.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, params.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := e.execute(ctx, params, scope)
	duration := time.Since(start).Milliseconds()
	result.DurationMs = duration

	logf(e.cfg.Logger, "executed %s script over %d datasets in %dms", params.Language, len(scope), duration)

	// Wrap timeout errors
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return result, fmt.Errorf("%w: timeout after %v: %w", ErrLimitExceeded, params.Timeout, err)
	}

	return result, err
}

// execute calls the engine, turning a panic into a CodeError.
func (e *DefaultExecutor) execute(ctx context.Context, params ExecuteParams, scope Scope) (result ExecuteResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &CodeError{Message: fmt.Sprintf("engine panic: %v", p)}
		}
	}()
	return e.cfg.Engine.Execute(ctx, params, scope)
}

// Run executes params.Code and promotes the requested globals. On any
// error the store is left untouched.
func (e *DefaultExecutor) Run(ctx context.Context, params RunParams) (RunResult, error) {
	promote := uniqueNames(params.Promote)

	res, err := e.ExecuteCode(ctx, ExecuteParams{
		Code:    params.Code,
		Timeout: params.Timeout,
		Promote: promote,
	})
	out := RunResult{
		Stdout:     res.Stdout,
		Stderr:     res.Stderr,
		DurationMs: res.DurationMs,
	}
	if err != nil {
		return out, err
	}

	for _, name := range promote {
		f, ok := res.Bindings[name]
		if !ok || f == nil {
			out.Skipped = append(out.Skipped, name)
			continue
		}
		e.cfg.Store.Put(name, f)
		out.Promoted = append(out.Promoted, name)
		rows, cols := f.Shape()
		logf(e.cfg.Logger, "promoted %s (%d rows x %d columns)", name, rows, cols)
	}
	out.Output = FormatOutput(res.Stdout, res.Stderr)
	return out, nil
}

// uniqueNames drops empty and repeated names, keeping first-seen order.
func uniqueNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
