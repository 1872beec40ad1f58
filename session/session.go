package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the process-wide state of one analysis session.
type Session struct {
	// ID identifies the session in logs.
	ID string

	// Created is when the session was built.
	Created time.Time

	Names *Namer
	Store *Store
	Log   *AuditLog

	mu sync.RWMutex
}

// Option configures a Session.
type Option func(*options)

type options struct {
	now func() time.Time
	id  string
}

// WithClock sets the clock used for the creation time and audit entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithID sets the session ID instead of a random UUID.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// New returns an empty session.
func New(opts ...Option) *Session {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}
	return &Session{
		ID:      o.id,
		Created: o.now(),
		Names:   &Namer{},
		Store:   NewStore(),
		Log:     NewAuditLog(o.now),
	}
}

// Update runs fn holding the session lock exclusively.
func (s *Session) Update(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// View runs fn holding the session lock shared.
func (s *Session) View(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}
