package session

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/jonwraymond/dataexec/dataset"
)

// ErrNotFound indicates a lookup of a name the store does not hold.
var ErrNotFound = errors.New("session: dataset not found")

// Entry is one rendered store item.
type Entry struct {
	Name     string
	Rendered string
}

// Store maps dataset names to frames. Putting an existing name replaces the
// previous frame. Names are not validated: scripts may promote any global.
type Store struct {
	mu     sync.RWMutex
	frames map[string]*dataset.Frame
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{frames: make(map[string]*dataset.Frame)}
}

// Put stores f under name, replacing any previous frame.
func (s *Store) Put(name string, f *dataset.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[name] = f
}

// Get returns the frame stored under name.
func (s *Store) Get(name string) (*dataset.Frame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.frames[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return f, nil
}

// Snapshot returns a new map holding every stored frame. Frames are
// immutable, so the map can be handed to a script without copying them.
func (s *Store) Snapshot() map[string]*dataset.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]*dataset.Frame, len(s.frames))
	for name, f := range s.frames {
		out[name] = f
	}
	return out
}

// Names returns the stored names in sorted order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.frames))
	for name := range s.frames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stored frames.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.frames)
}

// Describe renders every stored frame, ordered by name. A frame that fails
// to render is shown as an inline error marker.
func (s *Store) Describe() []Entry {
	snap := s.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, len(names))
	for i, name := range names {
		entries[i] = Entry{Name: name, Rendered: dataset.SafeRender(snap[name])}
	}
	return entries
}
