// Package luaengine provides a code.Engine backed by an embedded Lua 5.2
// interpreter.
//
// Each execution builds a new interpreter state, binds every dataset of
// the scope as a global frame, runs the script, and reads the requested
// globals back as frames. Scripts never share state with each other.
//
// # Libraries
//
// The base, string, table, math and bit32 libraries are available, with os
// reduced to time, clock, date and difftime. The file-system and process
// parts of the standard library are not opened. On top of these the engine
// provides:
//
//   - print, eprint, io.write, io.stdout:write, io.stderr:write: captured
//     output
//   - len(v): rows of a frame, # of anything else
//   - frame: new, from_records, concat, is_frame
//   - frame methods such as df:head(), df:filter(fn), df:groupby(k, "sum")
//     and df.column indexing
//   - stats: mean, median, std, var, quantile, corr, cov, skew, sum, min,
//     max, linregress
//   - num: linspace, arange, cumsum, round, isnan, nan, inf
//
// # Promotion
//
// A global named for promotion is converted as follows: a frame is kept as
// is; an array of records or a table of column arrays becomes a frame; an
// array of scalars becomes a "value" column; a scalar becomes a one-row
// "value" frame; nil is skipped. Functions and other values fail the run.
//
// # Cancellation
//
// A count hook checks the context every HookInstructionCount instructions,
// so deadlines stop scripts that never return.
package luaengine
