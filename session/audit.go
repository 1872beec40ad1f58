package session

import (
	"sync"
	"time"
)

// AuditKind classifies an audit entry.
type AuditKind string

// Audit entry kinds.
const (
	AuditLoad       AuditKind = "load"
	AuditLoadFailed AuditKind = "load_failed"
	AuditRun        AuditKind = "run"
	AuditRunFailed  AuditKind = "run_failed"
	AuditPromote    AuditKind = "promote"
	AuditResult     AuditKind = "result"
)

// AuditEntry is one immutable record in an AuditLog.
type AuditEntry struct {
	// Seq is the 1-based position of the entry in its log.
	Seq  int       `json:"seq"`
	Time time.Time `json:"time"`
	Kind AuditKind `json:"kind"`
	Text string    `json:"text"`
}

// AuditLog is an append-only, ordered list of entries.
type AuditLog struct {
	mu      sync.Mutex
	now     func() time.Time
	entries []AuditEntry
}

// NewAuditLog returns an empty log stamped by now. A nil now uses
// time.Now.
func NewAuditLog(now func() time.Time) *AuditLog {
	if now == nil {
		now = time.Now
	}
	return &AuditLog{now: now}
}

// Append records an entry and returns it.
func (l *AuditLog) Append(kind AuditKind, text string) AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := AuditEntry{
		Seq:  len(l.entries) + 1,
		Time: l.now(),
		Kind: kind,
		Text: text,
	}
	l.entries = append(l.entries, e)
	return e
}

// All returns a copy of the entries in the order they were appended.
func (l *AuditLog) All() []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *AuditLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
