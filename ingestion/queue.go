// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/storage"
)

// Queue feeds submissions to a bounded pool of pipeline workers.
//
// Jobs are dispatched in FIFO order. The pool bounds concurrent runs;
// a claim held from Enqueue until the run finishes guarantees no two
// workers ever process the same submission id at once. When the queue
// is at capacity Enqueue fails fast with ErrQueueFull and the ingress
// adapter decides what to do.
type Queue struct {
	pipeline *Pipeline
	registry storage.DocumentRegistry
	jobs     chan *Job
	pool     *ants.Pool
	logger   *slog.Logger

	mu     sync.Mutex
	claims map[core.ID]struct{}
	closed bool

	inflight   sync.WaitGroup
	dispatcher sync.WaitGroup
}

// QueueOption configures a Queue.
type QueueOption func(*queueConfig)

type queueConfig struct {
	capacity int
	workers  int
	logger   *slog.Logger
}

// WithCapacity sets the number of jobs the queue holds before Enqueue
// returns ErrQueueFull. Default is 64.
func WithCapacity(n int) QueueOption {
	return func(c *queueConfig) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithWorkers sets the worker pool size.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithWorkers(n int) QueueOption {
	return func(c *queueConfig) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithQueueLogger sets a custom logger.
// Default is slog.Default().
func WithQueueLogger(logger *slog.Logger) QueueOption {
	return func(c *queueConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewQueue creates a queue running jobs through the given pipeline.
// The registry is consulted on dequeue so submissions cancelled while
// waiting are dropped instead of processed.
func NewQueue(pipeline *Pipeline, registry storage.DocumentRegistry, opts ...QueueOption) (*Queue, error) {
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if registry == nil {
		return nil, ErrRegistryRequired
	}

	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	config := &queueConfig{
		capacity: 64,
		workers:  workers,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(config)
	}

	pool, err := ants.NewPool(config.workers)
	if err != nil {
		return nil, err
	}

	q := &Queue{
		pipeline: pipeline,
		registry: registry,
		jobs:     make(chan *Job, config.capacity),
		pool:     pool,
		logger:   config.logger,
		claims:   make(map[core.ID]struct{}),
	}

	q.dispatcher.Add(1)
	go q.dispatch()

	return q, nil
}

// Enqueue admits a job for processing. Fails fast with ErrQueueFull at
// capacity, ErrAlreadyClaimed if the submission is queued or running,
// and ErrQueueClosed after Close.
func (q *Queue) Enqueue(job *Job) error {
	id := job.Submission.Id

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if _, claimed := q.claims[id]; claimed {
		q.mu.Unlock()
		return ErrAlreadyClaimed
	}

	select {
	case q.jobs <- job:
		q.claims[id] = struct{}{}
		q.inflight.Add(1)
		q.mu.Unlock()
		return nil
	default:
		q.mu.Unlock()
		return ErrQueueFull
	}
}

// dispatch moves jobs from the channel into the pool in FIFO order.
// Submit blocks while all workers are busy, which preserves ordering
// and bounds concurrency at the pool size.
func (q *Queue) dispatch() {
	defer q.dispatcher.Done()
	for job := range q.jobs {
		if err := q.pool.Submit(func() { q.process(job) }); err != nil {
			q.logger.Error("dispatching job", "id", job.Submission.Id, "err", err)
			q.release(job.Submission.Id)
		}
	}
}

func (q *Queue) process(job *Job) {
	defer q.release(job.Submission.Id)

	ctx := context.Background()
	id := job.Submission.Id

	// A submission cancelled while waiting is already terminal; drop it.
	current, err := q.registry.Get(ctx, id)
	if err != nil {
		q.logger.Error("reading submission before run", "id", id, "err", err)
		return
	}
	if current.Status.Terminal() {
		q.logger.Info("dropping terminal submission", "id", id, "status", current.Status)
		return
	}

	if _, err := q.pipeline.Run(ctx, job); err != nil {
		q.logger.Error("pipeline run failed", "id", id, "err", err)
	}
}

func (q *Queue) release(id core.ID) {
	q.mu.Lock()
	delete(q.claims, id)
	q.mu.Unlock()
	q.inflight.Done()
}

// Claimed reports whether the submission is queued or running.
func (q *Queue) Claimed(id core.ID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, claimed := q.claims[id]
	return claimed
}

// Close stops admission, drains queued jobs, and waits for in-flight
// runs to finish. The queue should not be used after calling Close.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.jobs)
	q.dispatcher.Wait()
	q.inflight.Wait()
	q.pool.Release()
}
