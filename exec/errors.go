package exec

import "errors"

// Category is the caller-facing class of a failed operation.
type Category string

// Error categories.
const (
	CategoryLoad      Category = "LoadError"
	CategoryExecution Category = "ExecutionError"
)

// Sentinel errors matched by *Error through errors.Is.
var (
	ErrLoad      = errors.New("exec: load failed")
	ErrExecution = errors.New("exec: execution failed")
)

// Errors returned by Dispatch and ParseOperation.
var (
	ErrUnknownOperation = errors.New("exec: unknown operation")
	ErrInvalidArgument  = errors.New("exec: invalid argument")
)

// Error is a failed Load or Run, reported to callers with its category.
type Error struct {
	Category Category
	Message  string
	Err      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return string(e.Category) + ": " + e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the error's category.
func (e *Error) Is(target error) bool {
	switch e.Category {
	case CategoryLoad:
		return target == ErrLoad
	case CategoryExecution:
		return target == ErrExecution
	}
	return false
}

func loadError(err error) *Error {
	return &Error{Category: CategoryLoad, Message: "Error loading CSV: " + err.Error(), Err: err}
}

func executionError(err error) *Error {
	return &Error{Category: CategoryExecution, Message: "Error running script: " + err.Error(), Err: err}
}
