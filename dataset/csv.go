package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// DefaultNAValues are the cell texts read as null.
var DefaultNAValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a",
	"nan", "null",
}

// CSVOptions configures ReadCSV.
type CSVOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// NAValues replaces DefaultNAValues when non-nil.
	NAValues []string
}

// LoadCSV reads a comma-separated file with a header row.
func LoadCSV(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	f, err := ReadCSV(file, CSVOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ReadCSV parses delimited text with a header row into a frame. Blank
// header cells become "Unnamed: <i>" and repeated names get a ".<n>"
// suffix. Short rows are padded with nulls; rows longer than the header are
// an error. Column kinds are inferred in the order int, float, bool, string.
func ReadCSV(r io.Reader, opts CSVOptions) (*Frame, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, err
	}
	names := headerNames(header)

	na := opts.NAValues
	if na == nil {
		na = DefaultNAValues
	}
	naSet := make(map[string]bool, len(na))
	for _, s := range na {
		naSet[s] = true
	}

	raw := make([][]string, len(names))
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if len(rec) > len(names) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrShapeMismatch, line, len(rec), len(names))
		}
		for i := range names {
			cell := ""
			if i < len(rec) {
				cell = rec[i]
			}
			raw[i] = append(raw[i], cell)
		}
	}

	cols := make([]Column, len(names))
	for i, name := range names {
		cols[i] = parseColumn(name, raw[i], naSet)
	}
	return New(cols...)
}

func headerNames(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	names := make([]string, len(header))
	seen := map[string]int{}
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

func parseColumn(name string, cells []string, na map[string]bool) Column {
	present := make([]string, 0, len(cells))
	for _, s := range cells {
		if !na[s] {
			present = append(present, strings.TrimSpace(s))
		}
	}
	kind := inferText(present)
	values := make([]any, len(cells))
	for i, s := range cells {
		if !na[s] {
			values[i] = parseCell(strings.TrimSpace(s), kind, s)
		}
	}
	return Column{Name: name, Kind: kind, values: values}
}

// inferText returns the first of int, float, bool able to parse every cell,
// or string. No cells at all is float.
func inferText(cells []string) Kind {
	if len(cells) == 0 {
		return KindFloat
	}
	for _, kind := range []Kind{KindInt, KindFloat, KindBool} {
		if allParse(cells, kind) {
			return kind
		}
	}
	return KindString
}

func allParse(cells []string, kind Kind) bool {
	for _, s := range cells {
		var err error
		switch kind {
		case KindInt:
			_, err = strconv.ParseInt(s, 10, 64)
		case KindFloat:
			_, err = strconv.ParseFloat(s, 64)
		case KindBool:
			if _, ok := parseBool(s); !ok {
				err = strconv.ErrSyntax
			}
		}
		if err != nil {
			return false
		}
	}
	return true
}

func parseCell(s string, kind Kind, original string) any {
	switch kind {
	case KindInt:
		n, _ := strconv.ParseInt(s, 10, 64)
		return n
	case KindFloat:
		f, _ := strconv.ParseFloat(s, 64)
		return f
	case KindBool:
		b, _ := parseBool(s)
		return b
	default:
		return original
	}
}

func parseBool(s string) (bool, bool) {
	switch s {
	case "True", "true", "TRUE":
		return true, true
	case "False", "false", "FALSE":
		return false, true
	}
	return false, false
}
