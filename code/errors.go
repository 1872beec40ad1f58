package code

import (
	"errors"
	"fmt"
)

var (
	// ErrCodeExecution matches every *CodeError: a script that failed to
	// compile, raised at run time, or produced a value that cannot be saved.
	ErrCodeExecution = errors.New("code execution error")

	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrLimitExceeded wraps a run that hit its timeout.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// Stage is the point in a run where a script failed.
type Stage string

const (
	StageCompile Stage = "compile"
	StageRun     Stage = "run"
	StagePromote Stage = "promote"
)

// CodeError is a script failure reported by an Engine.
type CodeError struct {
	// Stage is where the failure happened. Empty reads as StageRun.
	Stage Stage

	// Message is the interpreter's message without its position prefix.
	Message string

	// Line is the 1-based script line, or zero when unknown.
	Line int

	// Name is the global being saved when Stage is StagePromote.
	Name string

	Err error
}

func (e *CodeError) Error() string {
	msg := e.Message
	if e.Stage == StagePromote && e.Name != "" {
		msg = fmt.Sprintf("cannot save %q: %s", e.Name, msg)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	return msg
}

func (e *CodeError) Unwrap() error {
	return e.Err
}

// Is makes every CodeError match ErrCodeExecution.
func (e *CodeError) Is(target error) bool {
	return target == ErrCodeExecution
}

// StageOf returns the stage of the CodeError in err's chain, or "" when
// there is none.
func StageOf(err error) Stage {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return ""
	}
	if ce.Stage == "" {
		return StageRun
	}
	return ce.Stage
}
