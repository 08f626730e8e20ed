package ingestion

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/storage"
	"github.com/poiesic/akashic/stores"
	"github.com/poiesic/akashic/stores/mock"
)

func newTestQueue(t *testing.T, registry storage.DocumentRegistry, set *stores.Set, opts ...QueueOption) *Queue {
	t.Helper()
	p := newTestPipeline(t, registry, set)
	q, err := NewQueue(p, registry, opts...)
	require.NoError(t, err)
	return q
}

func rawTextJob(t *testing.T, registry storage.DocumentRegistry, text string) *Job {
	t.Helper()
	sub := createSubmission(t, registry, &core.Submission{
		SourceName: core.SourceText,
		Format:     core.FormatRaw,
		Target:     core.TargetVector,
	})
	return &Job{Submission: sub, Text: text}
}

func TestQueueProcessesJobs(t *testing.T) {
	registry := newTestRegistry(t)
	vec := mock.NewMockStore("vector")
	q := newTestQueue(t, registry, stores.NewSet(vec, nil), WithWorkers(2))

	jobs := make([]*Job, 5)
	for i := range jobs {
		jobs[i] = rawTextJob(t, registry, "content")
		require.NoError(t, q.Enqueue(jobs[i]))
	}
	q.Close()

	assert.Equal(t, 5, vec.CallCount())
	for _, job := range jobs {
		final, err := registry.Get(context.Background(), job.Submission.Id)
		require.NoError(t, err)
		assert.Equal(t, core.StatusCompleted, final.Status)
		assert.Equal(t, 100, final.Progress)
	}
}

func TestQueueFull(t *testing.T) {
	registry := newTestRegistry(t)

	release := make(chan struct{})
	vec := mock.NewMockStore("vector")
	vec.IngestFunc = func(context.Context, core.ID, string, map[string]string) error {
		<-release
		return nil
	}

	q := newTestQueue(t, registry, stores.NewSet(vec, nil),
		WithWorkers(1), WithCapacity(1))

	// First job occupies the worker, second fills the channel. The
	// dispatcher may pull the second off the channel before the third
	// arrives, so allow one extra.
	require.NoError(t, q.Enqueue(rawTextJob(t, registry, "a")))
	require.NoError(t, q.Enqueue(rawTextJob(t, registry, "b")))

	var full bool
	for i := 0; i < 3; i++ {
		if err := q.Enqueue(rawTextJob(t, registry, "c")); err != nil {
			assert.ErrorIs(t, err, ErrQueueFull)
			full = true
			break
		}
	}
	assert.True(t, full, "expected ErrQueueFull once the queue saturated")

	close(release)
	q.Close()
}

func TestQueueRejectsDuplicateClaim(t *testing.T) {
	registry := newTestRegistry(t)

	release := make(chan struct{})
	vec := mock.NewMockStore("vector")
	vec.IngestFunc = func(context.Context, core.ID, string, map[string]string) error {
		<-release
		return nil
	}

	q := newTestQueue(t, registry, stores.NewSet(vec, nil), WithWorkers(1), WithCapacity(4))

	job := rawTextJob(t, registry, "content")
	require.NoError(t, q.Enqueue(job))
	assert.ErrorIs(t, q.Enqueue(job), ErrAlreadyClaimed)
	assert.True(t, q.Claimed(job.Submission.Id))

	close(release)
	q.Close()
	assert.False(t, q.Claimed(job.Submission.Id))
}

func TestQueueEnqueueAfterClose(t *testing.T) {
	registry := newTestRegistry(t)
	q := newTestQueue(t, registry, stores.NewSet(mock.NewMockStore("vector"), nil))
	q.Close()

	assert.ErrorIs(t, q.Enqueue(rawTextJob(t, registry, "late")), ErrQueueClosed)
}

func TestQueueDropsCancelledSubmission(t *testing.T) {
	registry := newTestRegistry(t)

	release := make(chan struct{})
	vec := mock.NewMockStore("vector")
	vec.IngestFunc = func(context.Context, core.ID, string, map[string]string) error {
		<-release
		return nil
	}

	q := newTestQueue(t, registry, stores.NewSet(vec, nil), WithWorkers(1), WithCapacity(4))

	// Occupy the single worker so the next job waits in the queue
	blocker := rawTextJob(t, registry, "blocker")
	require.NoError(t, q.Enqueue(blocker))

	cancelled := rawTextJob(t, registry, "cancelled")
	require.NoError(t, q.Enqueue(cancelled))

	// Cancel while still queued: Queued -> Failed("cancelled")
	_, err := registry.Transition(context.Background(), cancelled.Submission.Id,
		core.StatusFailed, storage.TransitionOpts{
			Progress:    storage.NoProgress,
			ErrorDetail: "cancelled",
		})
	require.NoError(t, err)

	close(release)
	q.Close()

	final, err := registry.Get(context.Background(), cancelled.Submission.Id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, final.Status)
	assert.Equal(t, "cancelled", final.ErrorDetail)

	// The cancelled submission never reached a store
	for _, call := range vec.Calls() {
		assert.NotEqual(t, cancelled.Submission.Id, call.Id)
	}
}

func TestQueueConcurrencyBoundAndPerIdExclusion(t *testing.T) {
	const workers = 4
	const submissions = 100

	registry := newTestRegistry(t)

	var current, peak int64
	var mu sync.Mutex
	active := make(map[core.ID]int)

	vec := mock.NewMockStore("vector")
	vec.IngestFunc = func(ctx context.Context, id core.ID, text string, metadata map[string]string) error {
		n := atomic.AddInt64(&current, 1)
		for {
			p := atomic.LoadInt64(&peak)
			if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
				break
			}
		}

		mu.Lock()
		active[id]++
		assert.Equal(t, 1, active[id], "submission %d processed by two workers", id)
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		active[id]--
		mu.Unlock()

		atomic.AddInt64(&current, -1)
		return nil
	}

	q := newTestQueue(t, registry, stores.NewSet(vec, nil),
		WithWorkers(workers), WithCapacity(submissions))

	for i := 0; i < submissions; i++ {
		require.NoError(t, q.Enqueue(rawTextJob(t, registry, "content")))
	}
	q.Close()

	assert.Equal(t, submissions, vec.CallCount())
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(workers))

	list, err := registry.List(context.Background(), submissions)
	require.NoError(t, err)
	require.Len(t, list, submissions)
	for _, sub := range list {
		assert.Equal(t, core.StatusCompleted, sub.Status)
	}
}
