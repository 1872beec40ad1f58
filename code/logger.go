package code

// Logger receives one line per script run and one per promoted dataset.
// Implementations must be safe for concurrent use and must not panic.
type Logger interface {
	Logf(format string, args ...any)
}

// logf writes to l when it is set.
func logf(l Logger, format string, args ...any) {
	if l != nil {
		l.Logf(format, args...)
	}
}
