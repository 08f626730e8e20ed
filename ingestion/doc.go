// Package ingestion provides pipeline orchestration for processing
// document submissions.
//
// The Pipeline type runs one submission end to end: it marks the
// submission Processing, extracts text for file inputs (raw text passes
// through verbatim), fans out to the targeted stores, and records the
// outcome in the document registry at each checkpoint.
//
// The Queue type feeds submissions to a bounded worker pool. Workers run
// independent submissions in parallel while a per-id claim guarantees
// that no submission is ever processed by two workers at once.
package ingestion
