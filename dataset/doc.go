// Package dataset provides the tabular value held by an analysis session.
//
// A [Frame] is an ordered set of named, typed columns of equal length. Frames
// are immutable: every transformation ([Frame.Head], [Frame.Select],
// [Frame.Filter], [Frame.GroupBy], ...) returns a new frame and never touches
// the receiver. This is what lets a session hand the same frame to a script
// and keep it in its store at the same time.
//
// # Column Kinds
//
// Each column has a [Kind]: int, float, bool or string. Cells are stored as
// int64, float64, bool or string; a nil cell is null. Kinds are inferred
// when a frame is built from loose values ([NewColumn], [FromRecords]) or
// from delimited text ([ReadCSV]).
//
// # Rendering
//
// Every frame implements [Renderer]. [SafeRender] turns render failures and
// panics into an inline marker so that listing a session never fails.
package dataset
