package storage

import (
	"context"

	"github.com/poiesic/akashic/core"
)

// TransitionOpts carries the optional fields of a status transition.
type TransitionOpts struct {
	// Progress, when non-negative, sets the new progress value. It must
	// not be lower than the current value. A transition to completed
	// pins progress to 100 regardless; a transition to failed freezes it
	// at its last value when Progress is negative.
	Progress int

	// ErrorDetail describes the failure. Required when transitioning to
	// failed, ignored otherwise.
	ErrorDetail string

	// Metadata entries are merged into the submission's metadata map.
	// Existing keys are overwritten.
	Metadata map[string]string
}

// NoProgress leaves the current progress value untouched.
const NoProgress = -1

// DocumentRegistry is the persistent record and state machine for every
// submission. Implementations must be thread-safe; Transition must be
// atomic with respect to concurrent readers.
type DocumentRegistry interface {
	// Create persists a new submission. The registry assigns the id,
	// forces status to queued and progress to 0, and stamps timestamps.
	// Returns the stored submission.
	Create(ctx context.Context, sub *core.Submission) (*core.Submission, error)

	// Transition moves a submission to a new status, enforcing the
	// forward-only state machine. Returns ErrNotFound for unknown ids and
	// ErrInvalidTransition when the move is not permitted from the
	// submission's current status. Progress is monotonically
	// non-decreasing while the submission is live.
	Transition(ctx context.Context, id core.ID, status core.Status, opts TransitionOpts) (*core.Submission, error)

	// Get retrieves a submission by id. Returns ErrNotFound if it
	// doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.Submission, error)

	// List retrieves the most recently created submissions, newest first,
	// up to limit.
	List(ctx context.Context, limit int) ([]*core.Submission, error)

	// Close releases registry resources.
	Close() error
}
