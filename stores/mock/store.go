// Package mock provides a test double for stores.Store.
package mock

import (
	"context"
	"sync"

	"github.com/poiesic/akashic/core"
)

// Call records one Ingest invocation.
type Call struct {
	Id       core.ID
	Text     string
	Metadata map[string]string
}

// MockStore is a test double for stores.Store.
// It allows custom behavior injection via the IngestFunc field and
// records every call for assertions. Safe for concurrent use.
type MockStore struct {
	// BackendName is returned by Name. Defaults to "mock".
	BackendName string

	// IngestFunc is called by Ingest if set. If nil, Ingest records the
	// call and succeeds.
	IngestFunc func(ctx context.Context, id core.ID, text string, metadata map[string]string) error

	mu    sync.Mutex
	calls []Call
}

// NewMockStore creates a mock store that records calls and succeeds.
func NewMockStore(name string) *MockStore {
	return &MockStore{BackendName: name}
}

func (m *MockStore) Name() string {
	if m.BackendName == "" {
		return "mock"
	}
	return m.BackendName
}

// Ingest records the call, then delegates to IngestFunc if set.
func (m *MockStore) Ingest(ctx context.Context, id core.ID, text string, metadata map[string]string) error {
	m.mu.Lock()
	cloned := make(map[string]string, len(metadata))
	for k, v := range metadata {
		cloned[k] = v
	}
	m.calls = append(m.calls, Call{Id: id, Text: text, Metadata: cloned})
	m.mu.Unlock()

	if m.IngestFunc != nil {
		return m.IngestFunc(ctx, id, text, metadata)
	}
	return nil
}

// CallCount returns the number of Ingest calls recorded.
func (m *MockStore) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls in order.
func (m *MockStore) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears recorded calls and the injected behavior.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.IngestFunc = nil
}
