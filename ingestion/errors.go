package ingestion

import "errors"

var (
	// ErrRegistryRequired is returned when a document registry is not provided.
	ErrRegistryRequired = errors.New("document registry required")

	// ErrStoreSetRequired is returned when a store set is not provided.
	ErrStoreSetRequired = errors.New("store set required")

	// ErrPipelineRequired is returned when a pipeline is not provided.
	ErrPipelineRequired = errors.New("pipeline required")

	// ErrQueueFull is returned by Enqueue when the queue is at capacity.
	ErrQueueFull = errors.New("queue full")

	// ErrQueueClosed is returned by Enqueue after Close has been called.
	ErrQueueClosed = errors.New("queue closed")

	// ErrAlreadyClaimed is returned when a submission id is already being
	// processed or waiting in the queue.
	ErrAlreadyClaimed = errors.New("submission already claimed")
)
