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
	"fmt"
	"log/slog"

	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/extract"
	"github.com/poiesic/akashic/storage"
	"github.com/poiesic/akashic/stores"
)

// Progress checkpoints recorded while a submission moves through the
// pipeline. Store fan-out interpolates from the post-extraction value to
// 100 proportionally to stores attempted.
const (
	progressClaimed   = 5
	progressRawText   = 30
	progressExtracted = 40
	progressComplete  = 100
)

// Job is one unit of pipeline work: a registered submission plus its
// input content. Data carries file bytes; for raw-text submissions
// (format raw) Text holds the input verbatim and extraction is skipped.
type Job struct {
	Submission *core.Submission
	Data       []byte
	Text       string
}

// Pipeline runs submissions end to end, updating the registry at each
// checkpoint. It is safe for concurrent use; concurrent runs for the
// same submission id must be prevented by the caller (the Queue does
// this).
type Pipeline struct {
	registry    storage.DocumentRegistry
	storeSet    *stores.Set
	extractOpts *extract.Options
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithExtractOptions sets the extractor configuration (OCR recognizer,
// native-text threshold).
func WithExtractOptions(opts *extract.Options) Option {
	return func(p *Pipeline) error {
		p.extractOpts = opts
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline over the given registry and store set.
func NewPipeline(registry storage.DocumentRegistry, storeSet *stores.Set, opts ...Option) (*Pipeline, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if storeSet == nil {
		return nil, ErrStoreSetRequired
	}

	p := &Pipeline{
		registry: registry,
		storeSet: storeSet,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// MetaStoreOutcomes is the metadata key recording per-store results on
// the terminal transition, for Completed and Failed submissions alike.
const MetaStoreOutcomes = "store_outcomes"

// Run processes one submission: claim, extract (unless raw text), fan
// out to the targeted stores, and settle the terminal state. Extraction
// failures are fatal to the submission. Store failures are aggregated
// per the partial-failure policy: all succeed means Completed; anything
// else means Failed with per-store detail.
//
// The returned error reports registry failures only — a submission that
// ends Failed with its detail recorded is a successful run.
func (p *Pipeline) Run(ctx context.Context, job *Job) (*core.Submission, error) {
	sub := job.Submission
	log := p.logger.With("id", sub.Id, "source", sub.SourceName)

	if _, err := p.registry.Transition(ctx, sub.Id, core.StatusProcessing,
		storage.TransitionOpts{Progress: progressClaimed}); err != nil {
		return nil, fmt.Errorf("claiming submission %d: %w", sub.Id, err)
	}

	text, metadata, base, err := p.extractPhase(ctx, job, log)
	if err != nil {
		return p.fail(ctx, sub.Id, err.Error(), nil)
	}

	selected, err := p.storeSet.ForTarget(sub.Target, sub.GraphBackend)
	if err != nil {
		return p.fail(ctx, sub.Id, err.Error(), nil)
	}

	outcomes := p.fanOut(ctx, sub, selected, text, metadata, base, log)
	outcomeMeta := map[string]string{MetaStoreOutcomes: outcomes.Detail()}

	if outcomes.AllSucceeded() {
		return p.registry.Transition(ctx, sub.Id, core.StatusCompleted,
			storage.TransitionOpts{Progress: progressComplete, Metadata: outcomeMeta})
	}
	return p.fail(ctx, sub.Id, outcomes.Detail(), outcomeMeta)
}

// extractPhase normalizes the job's content to text and records the
// corresponding checkpoint. It returns the text, the submission
// metadata as of the checkpoint (extraction metadata merged in), and
// the progress value store fan-out interpolates from.
func (p *Pipeline) extractPhase(ctx context.Context, job *Job, log *slog.Logger) (string, map[string]string, int, error) {
	sub := job.Submission

	if sub.Format == core.FormatRaw {
		updated, err := p.registry.Transition(ctx, sub.Id, core.StatusProcessing,
			storage.TransitionOpts{Progress: progressRawText})
		if err != nil {
			return "", nil, 0, err
		}
		return job.Text, updated.Metadata, progressRawText, nil
	}

	extractor, err := extract.ExtractorFor(sub.Format, p.extractOpts)
	if err != nil {
		return "", nil, 0, err
	}

	result, err := extractor.Extract(ctx, job.Data)
	if err != nil {
		log.Warn("extraction failed", "format", sub.Format, "err", err)
		return "", nil, 0, err
	}

	updated, err := p.registry.Transition(ctx, sub.Id, core.StatusProcessing,
		storage.TransitionOpts{Progress: progressExtracted, Metadata: result.Metadata})
	if err != nil {
		return "", nil, 0, err
	}
	return result.Text, updated.Metadata, progressExtracted, nil
}

// fanOut attempts each selected store independently, passing every
// store the post-extraction metadata, and advancing progress
// proportionally between attempts. The terminal transition carries the
// final increment, so the last attempt records no checkpoint here.
func (p *Pipeline) fanOut(ctx context.Context, sub *core.Submission, selected []stores.Store, text string, metadata map[string]string, base int, log *slog.Logger) stores.Outcomes {
	outcomes := make(stores.Outcomes, 0, len(selected))

	for i, store := range selected {
		err := store.Ingest(ctx, sub.Id, text, metadata)
		if err != nil {
			log.Warn("store ingest failed", "backend", store.Name(), "err", err)
		}
		outcomes = append(outcomes, stores.Outcome{Backend: store.Name(), Err: err})

		if i == len(selected)-1 {
			break
		}
		progress := base + (progressComplete-base)*(i+1)/len(selected)
		if _, terr := p.registry.Transition(ctx, sub.Id, core.StatusProcessing,
			storage.TransitionOpts{Progress: progress}); terr != nil {
			log.Error("checkpoint failed", "err", terr)
		}
	}

	return outcomes
}

func (p *Pipeline) fail(ctx context.Context, id core.ID, detail string, metadata map[string]string) (*core.Submission, error) {
	return p.registry.Transition(ctx, id, core.StatusFailed,
		storage.TransitionOpts{Progress: storage.NoProgress, ErrorDetail: detail, Metadata: metadata})
}
