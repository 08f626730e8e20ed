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

package akashic

import (
	"context"
	"log/slog"

	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/embed"
	"github.com/poiesic/akashic/extract"
	"github.com/poiesic/akashic/ingestion"
	"github.com/poiesic/akashic/storage"
	"github.com/poiesic/akashic/storage/badger"
	"github.com/poiesic/akashic/stores"
	"github.com/poiesic/akashic/stores/chroma"
	"github.com/poiesic/akashic/stores/falkor"
	"github.com/poiesic/akashic/stores/graphiti"
	"github.com/poiesic/akashic/stores/neo4j"
)

// cancelledDetail is the error detail recorded when a queued submission
// is cancelled before a worker claims it.
const cancelledDetail = "cancelled"

// Service wires the document registry, extractors, stores, and worker
// queue into one ingestion surface.
type Service struct {
	backend  *badger.Backend
	registry storage.DocumentRegistry
	storeSet *stores.Set
	queue    *ingestion.Queue
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	storeConfig *stores.Config
	embedConfig *embed.Config
	extractOpts *extract.Options
	workers     int
	capacity    int
	logger      *slog.Logger

	buildVector bool
	buildGraph  map[core.GraphBackend]bool
	vectorStore stores.Store
	graphStores map[core.GraphBackend]stores.Store
}

// WithStoreConfig sets the backend connection settings.
// Default is stores.DefaultConfig().
func WithStoreConfig(config *stores.Config) ServiceOption {
	return func(o *serviceOptions) {
		if config != nil {
			o.storeConfig = config
		}
	}
}

// WithEmbedConfig sets the embedding service settings used by the
// vector store. Default is embed.DefaultConfig().
func WithEmbedConfig(config *embed.Config) ServiceOption {
	return func(o *serviceOptions) {
		if config != nil {
			o.embedConfig = config
		}
	}
}

// WithRecognizer sets the OCR collaborator. Default is the tesseract
// CLI from PATH.
func WithRecognizer(recognizer extract.Recognizer) ServiceOption {
	return func(o *serviceOptions) {
		o.extractOpts = &extract.Options{Recognizer: recognizer}
	}
}

// EnableVector builds the ChromaDB vector store from the store and
// embedding config.
func EnableVector() ServiceOption {
	return func(o *serviceOptions) {
		o.buildVector = true
	}
}

// EnableGraph builds the adapter for the given graph backend from the
// store config.
func EnableGraph(backend core.GraphBackend) ServiceOption {
	return func(o *serviceOptions) {
		o.buildGraph[backend] = true
	}
}

// WithVectorStore injects a prebuilt vector store, overriding EnableVector.
func WithVectorStore(store stores.Store) ServiceOption {
	return func(o *serviceOptions) {
		o.vectorStore = store
	}
}

// WithGraphStore injects a prebuilt graph store for the given backend.
func WithGraphStore(backend core.GraphBackend, store stores.Store) ServiceOption {
	return func(o *serviceOptions) {
		o.graphStores[backend] = store
	}
}

// WithWorkers sets the worker pool size for concurrent processing.
func WithWorkers(n int) ServiceOption {
	return func(o *serviceOptions) {
		o.workers = n
	}
}

// WithQueueCapacity sets how many submissions may wait before Enqueue
// fails with ErrQueueFull.
func WithQueueCapacity(n int) ServiceOption {
	return func(o *serviceOptions) {
		o.capacity = n
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewService opens the registry at dbPath and wires the ingestion
// pipeline. Only the stores enabled (or injected) by options are
// constructed; submissions targeting anything else fail with a
// not-configured detail.
func NewService(dbPath string, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{
		storeConfig: stores.DefaultConfig(),
		embedConfig: embed.DefaultConfig(),
		extractOpts: &extract.Options{Recognizer: extract.NewTesseractRecognizer("")},
		logger:      slog.Default(),
		buildGraph:  make(map[core.GraphBackend]bool),
		graphStores: make(map[core.GraphBackend]stores.Store),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return nil, err
	}

	registry, err := badger.NewDocumentRegistry(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	storeSet, err := buildStoreSet(options)
	if err != nil {
		registry.Close()
		backend.Close()
		return nil, err
	}

	pipeline, err := ingestion.NewPipeline(registry, storeSet,
		ingestion.WithExtractOptions(options.extractOpts),
		ingestion.WithLogger(options.logger),
	)
	if err != nil {
		registry.Close()
		backend.Close()
		return nil, err
	}

	queueOpts := []ingestion.QueueOption{ingestion.WithQueueLogger(options.logger)}
	if options.workers > 0 {
		queueOpts = append(queueOpts, ingestion.WithWorkers(options.workers))
	}
	if options.capacity > 0 {
		queueOpts = append(queueOpts, ingestion.WithCapacity(options.capacity))
	}

	queue, err := ingestion.NewQueue(pipeline, registry, queueOpts...)
	if err != nil {
		registry.Close()
		backend.Close()
		return nil, err
	}

	return &Service{
		backend:  backend,
		registry: registry,
		storeSet: storeSet,
		queue:    queue,
		logger:   options.logger,
	}, nil
}

func buildStoreSet(options *serviceOptions) (*stores.Set, error) {
	vector := options.vectorStore
	if vector == nil && options.buildVector {
		embedder, err := embed.NewOpenAIEmbedder(options.embedConfig)
		if err != nil {
			return nil, err
		}
		vector, err = chroma.New(options.storeConfig, embedder)
		if err != nil {
			return nil, err
		}
	}

	graph := make(map[core.GraphBackend]stores.Store, len(options.graphStores))
	for backend, store := range options.graphStores {
		graph[backend] = store
	}
	for backend, enabled := range options.buildGraph {
		if !enabled || graph[backend] != nil {
			continue
		}
		switch backend {
		case core.GraphNeo4j:
			store, err := neo4j.New(options.storeConfig)
			if err != nil {
				return nil, err
			}
			graph[backend] = store
		case core.GraphFalkorDB:
			graph[backend] = falkor.New(options.storeConfig)
		case core.GraphGraphiti:
			graph[backend] = graphiti.New(options.storeConfig)
		default:
			return nil, core.ErrInvalidGraphBackend
		}
	}

	return stores.NewSet(vector, graph), nil
}

// IngestFile registers a file submission and queues it for processing.
// The format is determined from the filename extension.
func (s *Service) IngestFile(ctx context.Context, filename string, data []byte, target core.Target, backend core.GraphBackend) (*core.Submission, error) {
	format, err := core.FormatFromName(filename)
	if err != nil {
		return nil, err
	}

	sub, err := s.registry.Create(ctx, &core.Submission{
		SourceName:   filename,
		Format:       format,
		Target:       target,
		GraphBackend: backend,
	})
	if err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(&ingestion.Job{Submission: sub, Data: data}); err != nil {
		return s.failUnqueued(ctx, sub, err)
	}
	return sub, nil
}

// IngestText registers a raw text submission and queues it for
// processing. Extraction is skipped; the text is stored verbatim.
func (s *Service) IngestText(ctx context.Context, text string, target core.Target, backend core.GraphBackend) (*core.Submission, error) {
	sub, err := s.registry.Create(ctx, &core.Submission{
		SourceName:   core.SourceText,
		Format:       core.FormatRaw,
		Target:       target,
		GraphBackend: backend,
	})
	if err != nil {
		return nil, err
	}

	if err := s.queue.Enqueue(&ingestion.Job{Submission: sub, Text: text}); err != nil {
		return s.failUnqueued(ctx, sub, err)
	}
	return sub, nil
}

// failUnqueued marks a submission that never entered the queue as
// Failed so the registry doesn't accumulate phantom Queued entries,
// then surfaces the queue error to the caller.
func (s *Service) failUnqueued(ctx context.Context, sub *core.Submission, cause error) (*core.Submission, error) {
	if _, terr := s.registry.Transition(ctx, sub.Id, core.StatusFailed, storage.TransitionOpts{
		Progress:    storage.NoProgress,
		ErrorDetail: cause.Error(),
	}); terr != nil {
		s.logger.Error("failing unqueued submission", "id", sub.Id, "err", terr)
	}
	return nil, cause
}

// Status retrieves the current state of a submission.
func (s *Service) Status(ctx context.Context, id core.ID) (*core.Submission, error) {
	return s.registry.Get(ctx, id)
}

// List retrieves the most recently created submissions, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]*core.Submission, error) {
	return s.registry.List(ctx, limit)
}

// Cancel transitions a still-queued submission to Failed with a
// "cancelled" detail. Once processing has started the transition is
// rejected by the registry and the in-flight run completes on its own
// terms.
func (s *Service) Cancel(ctx context.Context, id core.ID) (*core.Submission, error) {
	return s.registry.Transition(ctx, id, core.StatusFailed, storage.TransitionOpts{
		Progress:    storage.NoProgress,
		ErrorDetail: cancelledDetail,
	})
}

// Close drains the queue, waits for in-flight runs, and releases the
// registry. The service should not be used after calling Close.
func (s *Service) Close() error {
	s.queue.Close()

	if err := s.registry.Close(); err != nil {
		s.logger.Error("error closing document registry", "err", err)
		return err
	}
	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
