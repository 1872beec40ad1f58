package luaengine

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	lua "github.com/Shopify/go-lua"

	"github.com/jonwraymond/dataexec/dataset"
)

// maxStringBytes bounds the strings string.rep builds.
const maxStringBytes = 16 << 20

// standardLibraries are opened in every state. io, package, debug and
// coroutine are left out; os is reduced after opening.
var standardLibraries = []lua.RegistryFunction{
	{Name: "_G", Function: lua.BaseOpen},
	{Name: "table", Function: lua.TableOpen},
	{Name: "os", Function: lua.OSOpen},
	{Name: "string", Function: lua.StringOpen},
	{Name: "bit32", Function: lua.Bit32Open},
	{Name: "math", Function: lua.MathOpen},
}

// removedGlobals reach the file system or the process streams.
var removedGlobals = []string{"dofile", "loadfile"}

// removedOS keeps only time, clock, date and difftime.
var removedOS = []string{"execute", "exit", "getenv", "remove", "rename", "setlocale", "tmpname"}

// openLibraries installs the fixed library bindings. print and io.write
// go to stdout; eprint and io.stderr:write go to stderr.
func openLibraries(l *lua.State, stdout, stderr io.Writer) {
	for _, lib := range standardLibraries {
		lua.Require(l, lib.Name, lib.Function, true)
		switch lib.Name {
		case "os":
			for _, name := range removedOS {
				l.PushNil()
				l.SetField(-2, name)
			}
		case "string":
			l.PushGoFunction(guard(stringRep))
			l.SetField(-2, "rep")
		}
		l.Pop(1)
	}
	for _, name := range removedGlobals {
		l.PushNil()
		l.SetGlobal(name)
	}

	l.PushGoFunction(guard(printTo(stdout)))
	l.SetGlobal("print")
	l.PushGoFunction(guard(printTo(stderr)))
	l.SetGlobal("eprint")
	l.PushGoFunction(guard(luaLen))
	l.SetGlobal("len")

	l.NewTable()
	l.PushGoFunction(guard(writeTo(stdout, 1)))
	l.SetField(-2, "write")
	pushStream(l, stdout)
	l.SetField(-2, "stdout")
	pushStream(l, stderr)
	l.SetField(-2, "stderr")
	l.SetGlobal("io")

	registerFrameType(l)
	registerNumericLibraries(l)
}

// pushStream pushes a table whose write method is called as s:write(...).
func pushStream(l *lua.State, w io.Writer) {
	l.NewTable()
	l.PushGoFunction(guard(writeTo(w, 2)))
	l.SetField(-2, "write")
}

// printTo writes its arguments through tostring, tab separated, with a
// trailing newline.
func printTo(w io.Writer) lua.Function {
	return func(l *lua.State) int {
		n := l.Top()
		for i := 1; i <= n; i++ {
			l.Global("tostring")
			l.PushValue(i)
			l.Call(1, 1)
			s, ok := l.ToString(-1)
			if !ok {
				lua.Errorf(l, "%s", "'tostring' must return a string to 'print'")
			}
			if i > 1 {
				_, _ = io.WriteString(w, "\t")
			}
			_, _ = io.WriteString(w, s)
			l.Pop(1)
		}
		_, _ = io.WriteString(w, "\n")
		return 0
	}
}

// writeTo writes string and number arguments from index first on without
// separators. It returns its first argument so calls can be chained.
func writeTo(w io.Writer, first int) lua.Function {
	return func(l *lua.State) int {
		for i := first; i <= l.Top(); i++ {
			_, _ = io.WriteString(w, lua.CheckString(l, i))
		}
		if first > 1 {
			l.PushValue(1)
			return 1
		}
		return 0
	}
}

// luaLen returns the row count of a frame and # of anything else.
func luaLen(l *lua.State) int {
	if f, ok := l.ToUserData(1).(*dataset.Frame); ok {
		l.PushInteger(f.NumRows())
		return 1
	}
	switch l.TypeOf(1) {
	case lua.TypeString:
		s, _ := l.ToString(1)
		l.PushInteger(len(s))
	case lua.TypeTable:
		l.PushInteger(l.RawLength(1))
	default:
		lua.ArgumentError(l, 1, "frame, string or table expected")
	}
	return 1
}

// guard converts Go panics in a binding into Lua errors. Errors raised by
// the interpreter itself are passed through unchanged.
func guard(fn lua.Function) lua.Function {
	return func(l *lua.State) int {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if _, isErr := p.(error); isErr {
				if _, isRuntime := p.(runtime.Error); !isRuntime {
					panic(p)
				}
			}
			lua.Errorf(l, "%s", fmt.Sprintf("internal error: %v", p))
		}()
		return fn(l)
	}
}

// stringRep is string.rep(s, n [, sep]) with the result capped at
// maxStringBytes.
func stringRep(l *lua.State) int {
	s := lua.CheckString(l, 1)
	n := lua.CheckNumber(l, 2)
	sep := lua.OptString(l, 3, "")
	if n < 1 {
		l.PushString("")
		return 1
	}
	unit := float64(len(s) + len(sep))
	if n*unit-float64(len(sep)) > maxStringBytes {
		lua.Errorf(l, "string.rep result exceeds %d bytes", maxStringBytes)
	}
	count := int(n)
	if sep == "" {
		l.PushString(strings.Repeat(s, count))
		return 1
	}
	parts := make([]string, count)
	for i := range parts {
		parts[i] = s
	}
	l.PushString(strings.Join(parts, sep))
	return 1
}
