package code

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// TruncationMarker is appended once to a stream that hit its byte limit.
const TruncationMarker = "\n... [output truncated]\n"

// OutputBuffer is a bounded, concurrency-safe capture buffer. Writes past
// the limit are dropped and the marker is added once. Writes never fail, so
// a script cannot be stopped by its own output.
type OutputBuffer struct {
	mu        sync.Mutex
	b         strings.Builder
	limit     int
	truncated bool
}

// NewOutputBuffer returns a buffer holding at most limit bytes of output.
// A limit <= 0 means unbounded.
func NewOutputBuffer(limit int) *OutputBuffer {
	return &OutputBuffer{limit: limit}
}

// Write implements io.Writer.
func (o *OutputBuffer) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := len(p)
	if o.truncated {
		return n, nil
	}
	if o.limit > 0 && o.b.Len()+len(p) > o.limit {
		cut := o.limit - o.b.Len()
		// Back up to a rune boundary so the kept text stays valid UTF-8.
		for cut > 0 && !utf8.RuneStart(p[cut]) {
			cut--
		}
		o.b.Write(p[:cut])
		o.b.WriteString(TruncationMarker)
		o.truncated = true
		return n, nil
	}
	o.b.Write(p)
	return n, nil
}

// WriteString writes s.
func (o *OutputBuffer) WriteString(s string) (int, error) {
	return o.Write([]byte(s))
}

// String returns the captured text.
func (o *OutputBuffer) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.b.String()
}

// Truncated reports whether output was dropped.
func (o *OutputBuffer) Truncated() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.truncated
}

// FormatOutput builds the text returned for a successful run:
// "Output:\n<stdout>\n" when stdout is non-empty followed by
// "Errors:\n<stderr>\n" when stderr is non-empty. Both empty yields "".
func FormatOutput(stdout, stderr string) string {
	var b strings.Builder
	if stdout != "" {
		b.WriteString("Output:\n")
		b.WriteString(stdout)
		b.WriteString("\n")
	}
	if stderr != "" {
		b.WriteString("Errors:\n")
		b.WriteString(stderr)
		b.WriteString("\n")
	}
	return b.String()
}
