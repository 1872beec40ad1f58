package luaengine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	lua "github.com/Shopify/go-lua"

	"github.com/jonwraymond/dataexec/code"
	"github.com/jonwraymond/dataexec/dataset"
)

// Language is the ExecuteParams.Language this engine accepts.
const Language = "lua"

// ChunkName is the name scripts are loaded under. Error positions read
// "script:<line>:".
const ChunkName = "=script"

// DefaultHookInstructionCount is how many VM instructions run between
// cancellation checks.
const DefaultHookInstructionCount = 1000

// ErrUnsupportedLanguage is returned for any language other than Lua.
var ErrUnsupportedLanguage = errors.New("luaengine: unsupported language")

// Config configures an Engine.
type Config struct {
	// HookInstructionCount is the number of instructions between
	// context checks. Zero means DefaultHookInstructionCount.
	HookInstructionCount int

	// MaxOutputBytes bounds each output stream when ExecuteParams does not.
	// Zero means unbounded.
	MaxOutputBytes int
}

// Engine implements code.Engine with an embedded Lua 5.2 interpreter.
// Every execution gets a fresh interpreter state, so nothing a script
// defines survives into the next one except what is promoted.
type Engine struct {
	cfg Config
}

// New creates a new Engine with the given configuration.
func New(cfg Config) *Engine {
	if cfg.HookInstructionCount <= 0 {
		cfg.HookInstructionCount = DefaultHookInstructionCount
	}
	return &Engine{cfg: cfg}
}

// Execute implements code.Engine.
func (e *Engine) Execute(ctx context.Context, params code.ExecuteParams, scope code.Scope) (result code.ExecuteResult, err error) {
	if params.Language != "" && !strings.EqualFold(params.Language, Language) {
		return result, &code.CodeError{
			Message: fmt.Sprintf("unsupported language %q", params.Language),
			Err:     ErrUnsupportedLanguage,
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, interrupted(ctxErr)
	}

	limit := params.MaxOutputBytes
	if limit == 0 {
		limit = e.cfg.MaxOutputBytes
	}
	stdout := code.NewOutputBuffer(limit)
	stderr := code.NewOutputBuffer(limit)

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = &code.CodeError{Message: fmt.Sprintf("interpreter panic: %v", p)}
			result.Bindings = nil
			result.Skipped = nil
		}
		result.Stdout = stdout.String()
		result.Stderr = stderr.String()
		result.DurationMs = time.Since(start).Milliseconds()
	}()

	l := lua.NewState()
	openLibraries(l, stdout, stderr)
	for name, f := range scope {
		pushFrame(l, f)
		l.SetGlobal(name)
	}
	lua.SetDebugHook(l, func(l *lua.State, _ lua.Debug) {
		if ctx.Err() != nil {
			l.PushString("execution interrupted: " + ctx.Err().Error())
			l.Error()
		}
	}, lua.MaskCount, e.cfg.HookInstructionCount)

	if loadErr := lua.LoadBuffer(l, params.Code, ChunkName, ""); loadErr != nil {
		return result, scriptError(ctx, l, code.StageCompile, loadErr)
	}
	if callErr := l.ProtectedCall(0, 0, 0); callErr != nil {
		return result, scriptError(ctx, l, code.StageRun, callErr)
	}
	lua.SetDebugHook(l, nil, 0, 0)

	result.Bindings, result.Skipped, err = promote(l, params.Promote)
	return result, err
}

// promote reads the named globals and converts them to frames. Nil globals
// are reported as skipped. Any unconvertible value fails the whole set.
func promote(l *lua.State, names []string) (map[string]*dataset.Frame, []string, error) {
	bindings := make(map[string]*dataset.Frame, len(names))
	var skipped []string
	for _, name := range names {
		l.Global(name)
		v, err := toGo(l, -1, 0)
		l.Pop(1)
		if err == nil && v == nil {
			skipped = append(skipped, name)
			continue
		}
		var f *dataset.Frame
		if err == nil {
			f, err = toFrame(v)
		}
		if err != nil {
			return nil, nil, &code.CodeError{
				Stage:   code.StagePromote,
				Name:    name,
				Message: err.Error(),
				Err:     err,
			}
		}
		bindings[name] = f
	}
	return bindings, skipped, nil
}

var positionPattern = regexp.MustCompile(`^script:(\d+): ?`)

// scriptError builds a CodeError from the error object the interpreter
// left on the stack.
func scriptError(ctx context.Context, l *lua.State, stage code.Stage, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return interrupted(ctxErr)
	}
	msg := err.Error()
	if l.Top() > 0 {
		msg = errorObject(l)
	}
	ce := &code.CodeError{Stage: stage, Message: msg, Err: err}
	if m := positionPattern.FindStringSubmatch(msg); m != nil {
		ce.Line, _ = strconv.Atoi(m[1])
		ce.Message = msg[len(m[0]):]
	}
	return ce
}

// errorObject renders the value on top of the stack. Tables with a
// __tostring metamethod use it; other non-string values are described
// by type.
func errorObject(l *lua.State) string {
	switch l.TypeOf(-1) {
	case lua.TypeString, lua.TypeNumber:
		s, _ := l.ToString(-1)
		return s
	}
	if lua.MetaField(l, -1, "__tostring") {
		l.PushValue(-2)
		if l.ProtectedCall(1, 1, 0) == nil {
			if s, ok := l.ToString(-1); ok {
				l.Pop(1)
				return s
			}
		}
		l.Pop(1)
	}
	return fmt.Sprintf("(error object is a %s value)", typeName(l.TypeOf(-1)))
}

func interrupted(ctxErr error) error {
	return &code.CodeError{Message: "execution interrupted: " + ctxErr.Error(), Err: ctxErr}
}
