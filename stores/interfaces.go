package stores

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/akashic/core"
)

// Store writes normalized content into one downstream knowledge store.
// Implementations must be thread-safe, must not retry internally, and
// should key their writes on the submission id so that repeated attempts
// with identical content do not create duplicate records where the
// backend supports de-duplication.
type Store interface {
	// Name identifies the backend in outcomes and error detail.
	Name() string

	// Ingest performs the backend-specific write. Failures are returned
	// as *StoreError.
	Ingest(ctx context.Context, id core.ID, text string, metadata map[string]string) error
}

// Outcome is the result of one store's ingest attempt.
type Outcome struct {
	Backend string
	Err     error // nil on success
}

// Outcomes aggregates per-store results for one submission, in the order
// the stores were attempted.
type Outcomes []Outcome

// AllSucceeded reports whether every attempted store succeeded.
func (o Outcomes) AllSucceeded() bool {
	for _, out := range o {
		if out.Err != nil {
			return false
		}
	}
	return len(o) > 0
}

// AllFailed reports whether every attempted store failed.
func (o Outcomes) AllFailed() bool {
	for _, out := range o {
		if out.Err == nil {
			return false
		}
	}
	return len(o) > 0
}

// Detail renders per-store outcomes for a submission's error detail,
// naming successes as well as failures so a caller can resubmit to the
// failed half only.
func (o Outcomes) Detail() string {
	parts := make([]string, 0, len(o))
	for _, out := range o {
		if out.Err == nil {
			parts = append(parts, fmt.Sprintf("%s: ok", out.Backend))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %v", out.Backend, out.Err))
		}
	}
	return strings.Join(parts, "; ")
}

// Set holds the configured store adapters and selects the targets for a
// submission. Selection order is deterministic — vector before graph —
// so partial-failure reporting is reproducible across retries.
type Set struct {
	vector Store
	graph  map[core.GraphBackend]Store
}

// NewSet creates a store set. vector may be nil when no vector store is
// configured; graph maps each configured graph backend to its adapter.
func NewSet(vector Store, graph map[core.GraphBackend]Store) *Set {
	if graph == nil {
		graph = make(map[core.GraphBackend]Store)
	}
	return &Set{vector: vector, graph: graph}
}

// ForTarget resolves the stores a submission targets.
// Returns ErrVectorNotConfigured or ErrGraphNotConfigured when the
// submission targets a store that has no adapter.
func (s *Set) ForTarget(target core.Target, backend core.GraphBackend) ([]Store, error) {
	var selected []Store

	if target.IncludesVector() {
		if s.vector == nil {
			return nil, ErrVectorNotConfigured
		}
		selected = append(selected, s.vector)
	}

	if target.IncludesGraph() {
		store, ok := s.graph[backend]
		if !ok || store == nil {
			return nil, fmt.Errorf("%w: %s", ErrGraphNotConfigured, backend)
		}
		selected = append(selected, store)
	}

	return selected, nil
}
