package dataset

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MaxRenderRows is the largest frame rendered in full. Longer frames show
// their first and last TruncatedRows rows around an ellipsis row.
const (
	MaxRenderRows = 60
	TruncatedRows = 5
)

const cellPadding = 2

// Renderer produces a human-readable form of a value.
type Renderer interface {
	Render() (string, error)
}

// RenderError is a failure to render a stored value.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return "render error: " + e.Err.Error() }

func (e *RenderError) Unwrap() error { return e.Err }

// SafeRender renders r, replacing any error or panic with an inline
// "<render error: ...>" marker.
func SafeRender(r Renderer) (out string) {
	defer func() {
		if p := recover(); p != nil {
			out = marker(&RenderError{Err: fmt.Errorf("panic: %v", p)})
		}
	}()
	if r == nil {
		return marker(&RenderError{Err: ErrNilFrame})
	}
	s, err := r.Render()
	if err != nil {
		return marker(&RenderError{Err: err})
	}
	return s
}

func marker(err error) string { return "<" + err.Error() + ">" }

var footerPrinter = message.NewPrinter(language.English)

// Render returns a table with a row index, right-aligned cells and a
// "[R rows x C columns]" footer.
func (f *Frame) Render() (string, error) {
	if f == nil {
		return "", ErrNilFrame
	}
	if f.rows == 0 || len(f.cols) == 0 {
		return fmt.Sprintf("Empty DataFrame\nColumns: [%s]\nIndex: []", strings.Join(f.Columns(), ", ")), nil
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, cellPadding, ' ', tabwriter.AlignRight)
	header := append([]string{""}, f.Columns()...)
	writeRow(tw, header)

	if f.rows <= MaxRenderRows {
		for i := 0; i < f.rows; i++ {
			writeRow(tw, f.renderRow(i))
		}
	} else {
		for i := 0; i < TruncatedRows; i++ {
			writeRow(tw, f.renderRow(i))
		}
		dots := make([]string, len(f.cols)+1)
		for i := range dots {
			dots[i] = "..."
		}
		writeRow(tw, dots)
		for i := f.rows - TruncatedRows; i < f.rows; i++ {
			writeRow(tw, f.renderRow(i))
		}
	}
	if err := tw.Flush(); err != nil {
		return "", err
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	for i, line := range lines {
		// The index column is padded on the left as well.
		lines[i] = strings.TrimPrefix(strings.TrimRight(line, " "), strings.Repeat(" ", cellPadding))
	}
	footer := footerPrinter.Sprintf("[%d rows x %d columns]", f.rows, len(f.cols))
	return strings.Join(lines, "\n") + "\n\n" + footer, nil
}

// String implements fmt.Stringer through SafeRender.
func (f *Frame) String() string { return SafeRender(f) }

func (f *Frame) renderRow(i int) []string {
	cells := make([]string, 0, len(f.cols)+1)
	cells = append(cells, strconv.Itoa(i))
	for _, c := range f.cols {
		cells = append(cells, renderCell(c.values[i], c.Kind))
	}
	return cells
}

func renderCell(v any, kind Kind) string {
	if v == nil {
		if kind.Numeric() {
			return "NaN"
		}
		return "None"
	}
	if isNaN(v) {
		return "NaN"
	}
	return formatValue(v)
}

func writeRow(tw *tabwriter.Writer, cells []string) {
	for _, c := range cells {
		// Tabs inside a cell would split it.
		_, _ = tw.Write([]byte(strings.ReplaceAll(c, "\t", " ") + "\t"))
	}
	_, _ = tw.Write([]byte("\n"))
}
