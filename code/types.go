package code

import (
	"time"

	"github.com/jonwraymond/dataexec/dataset"
)

// ExecuteParams specifies the parameters for executing a script.
type ExecuteParams struct {
	// Language specifies the language of the script.
	// If empty, the executor's default language is used.
	Language string `json:"language"`

	// Code is the source code to execute.
	Code string `json:"code"`

	// Timeout specifies the maximum duration for execution.
	// If zero, the executor's default timeout is used.
	Timeout time.Duration `json:"timeout"`

	// Promote lists the globals to read back after a successful run.
	Promote []string `json:"promote,omitempty"`

	// MaxOutputBytes bounds each captured stream. Zero means unbounded.
	MaxOutputBytes int `json:"maxOutputBytes,omitempty"`
}

// ExecuteResult contains the outcome of executing a script.
type ExecuteResult struct {
	// Stdout contains output written via print or io.write.
	Stdout string `json:"stdout,omitempty"`

	// Stderr contains output written to the error stream.
	Stderr string `json:"stderr,omitempty"`

	// Bindings holds the requested globals that were set, as frames.
	Bindings map[string]*dataset.Frame `json:"-"`

	// Skipped lists requested globals that were nil after the run.
	Skipped []string `json:"skipped,omitempty"`

	// DurationMs is the total execution time in milliseconds.
	DurationMs int64 `json:"durationMs"`
}

// RunParams specifies a script run against the executor's store.
type RunParams struct {
	// Code is the script source.
	Code string `json:"code"`

	// Promote lists the globals to store after a successful run.
	Promote []string `json:"promote,omitempty"`

	// Timeout overrides the executor's default timeout when non-zero.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// RunResult is the outcome of a successful run.
type RunResult struct {
	// Output is the formatted result text, see FormatOutput.
	Output string `json:"output"`

	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`

	// Promoted lists the names written to the store, in request order.
	Promoted []string `json:"promoted,omitempty"`

	// Skipped lists requested names the script left unset.
	Skipped []string `json:"skipped,omitempty"`

	DurationMs int64 `json:"durationMs"`
}
