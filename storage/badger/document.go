package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/storage"
)

// DocumentRegistry implements storage.DocumentRegistry for BadgerDB.
// All state for a submission lives in a single value, so a transition is
// one read-modify-write inside one transaction and readers never observe
// a torn update of status, progress, and error detail.
type DocumentRegistry struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRegistry = (*DocumentRegistry)(nil)

// NewDocumentRegistry creates a new DocumentRegistry.
func NewDocumentRegistry(backend *Backend) (storage.DocumentRegistry, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRegistry{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRegistry) Close() error {
	return r.idSeq.Release()
}

// Create persists a new submission in queued state with progress 0.
func (r *DocumentRegistry) Create(ctx context.Context, sub *core.Submission) (*core.Submission, error) {
	stored := sub.Clone()
	stored.Status = core.StatusQueued
	stored.Progress = 0
	stored.ErrorDetail = ""

	if err := core.ValidateSubmission(stored); err != nil {
		return nil, err
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		stored.Id = core.ID(nextID)

		stored.CreatedAt = time.Now().UTC()
		stored.UpdatedAt = stored.CreatedAt

		value, err := storage.MarshalSubmission(stored)
		if err != nil {
			return err
		}
		if err := tx.Set(makeDocumentKey(stored.Id), value); err != nil {
			return err
		}

		// Creation-time index for List
		createdKey := makeDocumentCreatedKey(stored.CreatedAt, stored.Id)
		if err := tx.Set(createdKey, nil); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// Transition moves a submission to a new status, enforcing the
// forward-only state machine and monotone progress.
func (r *DocumentRegistry) Transition(ctx context.Context, id core.ID, status core.Status, opts storage.TransitionOpts) (*core.Submission, error) {
	if err := core.ValidateStatus(status); err != nil {
		return nil, err
	}
	if status == core.StatusFailed && opts.ErrorDetail == "" {
		return nil, storage.ErrDetailRequired
	}

	var updated *core.Submission
	update := func(tx *badger.Txn) error {
		sub, err := r.readDocument(tx, id)
		if err != nil {
			return err
		}
		if sub == nil {
			return storage.ErrNotFound
		}

		if !sub.Status.CanTransition(status) {
			return storage.ErrInvalidTransition
		}

		switch status {
		case core.StatusCompleted:
			// Completed always pins progress to 100.
			sub.Progress = 100
		case core.StatusFailed:
			// Failed freezes progress at its last value unless the
			// caller moves it forward explicitly.
			if opts.Progress != storage.NoProgress {
				if opts.Progress < sub.Progress {
					return storage.ErrProgressRegression
				}
				sub.Progress = opts.Progress
			}
			sub.ErrorDetail = opts.ErrorDetail
		default:
			if opts.Progress != storage.NoProgress {
				if opts.Progress < sub.Progress || opts.Progress > 100 {
					return storage.ErrProgressRegression
				}
				sub.Progress = opts.Progress
			}
		}

		sub.Status = status
		if len(opts.Metadata) > 0 {
			if sub.Metadata == nil {
				sub.Metadata = make(map[string]string, len(opts.Metadata))
			}
			for k, v := range opts.Metadata {
				sub.Metadata[k] = v
			}
		}
		sub.UpdatedAt = time.Now().UTC()

		value, err := storage.MarshalSubmission(sub)
		if err != nil {
			return err
		}
		if err := tx.Set(makeDocumentKey(id), value); err != nil {
			return err
		}

		updated = sub
		return tx.Commit()
	}

	// Concurrent writers on the same id (a cancel racing a worker's
	// claim) surface as a commit conflict; retrying the read-modify-write
	// resolves the race to a clean state-machine outcome.
	for {
		err := r.backend.WithTx(update, true)
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
}

// Get retrieves a submission by ID.
func (r *DocumentRegistry) Get(ctx context.Context, id core.ID) (*core.Submission, error) {
	var sub *core.Submission
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		sub, err = r.readDocument(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, storage.ErrNotFound
	}
	return sub, nil
}

// List retrieves the most recently created submissions, newest first.
func (r *DocumentRegistry) List(ctx context.Context, limit int) ([]*core.Submission, error) {
	if limit <= 0 {
		return nil, nil
	}

	var subs []*core.Submission
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentCreatedPrefix + ":")
		opts.Reverse = true
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Reverse iteration starts from the key just past the prefix range.
		seekKey := append([]byte(documentCreatedPrefix+":"), 0xff)
		for iter.Seek(seekKey); iter.Valid() && len(subs) < limit; iter.Next() {
			id, err := documentIDFromCreatedKey(iter.Item().KeyCopy(nil))
			if err != nil {
				return err
			}
			sub, err := r.readDocument(tx, id)
			if err != nil {
				return err
			}
			if sub != nil {
				subs = append(subs, sub)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return subs, nil
}

// readDocument reads a submission inside a transaction.
// Returns nil, nil when the key does not exist.
func (r *DocumentRegistry) readDocument(tx *badger.Txn, id core.ID) (*core.Submission, error) {
	item, err := tx.Get(makeDocumentKey(id))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var sub *core.Submission
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		sub, unmarshalErr = storage.UnmarshalSubmission(val)
		return unmarshalErr
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}
