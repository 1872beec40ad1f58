package code

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/dataexec/dataset"
)

// mockStore implements Store for testing.
type mockStore struct {
	mu     sync.Mutex
	frames map[string]*dataset.Frame

	// Call tracking
	snapshotCalls int
	putCalls      []string
}

func newMockStore(frames map[string]*dataset.Frame) *mockStore {
	if frames == nil {
		frames = map[string]*dataset.Frame{}
	}
	return &mockStore{frames: frames}
}

func (m *mockStore) Snapshot() map[string]*dataset.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotCalls++
	out := make(map[string]*dataset.Frame, len(m.frames))
	for k, v := range m.frames {
		out[k] = v
	}
	return out
}

func (m *mockStore) Put(name string, f *dataset.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putCalls = append(m.putCalls, name)
	m.frames[name] = f
}

func (m *mockStore) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.frames))
	for k := range m.frames {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// mockEngine implements Engine for testing.
type mockEngine struct {
	mu sync.Mutex

	// Configurable returns
	executeResult ExecuteResult
	executeErr    error
	executeFunc   func(ctx context.Context, params ExecuteParams, scope Scope) (ExecuteResult, error)

	// Call tracking
	executeCalls []executeCall
}

type executeCall struct {
	ctx    context.Context
	params ExecuteParams
	scope  Scope
}

func (m *mockEngine) Execute(ctx context.Context, params ExecuteParams, scope Scope) (ExecuteResult, error) {
	m.mu.Lock()
	m.executeCalls = append(m.executeCalls, executeCall{ctx, params, scope})
	fn := m.executeFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, params, scope)
	}
	return m.executeResult, m.executeErr
}

func (m *mockEngine) lastCall() executeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executeCalls[len(m.executeCalls)-1]
}

// mockLogger implements Logger for testing.
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) Logf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf(format, args...))
}

func (l *mockLogger) joined() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.messages, "\n")
}

func oneColumn(values ...any) *dataset.Frame {
	return dataset.MustNew(dataset.NewColumn("x", values))
}

func containsStr(s, substr string) bool {
	return strings.Contains(s, substr)
}
