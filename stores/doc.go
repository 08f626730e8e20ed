// Package stores defines the contract between the ingestion pipeline and
// the downstream knowledge stores, plus the per-backend adapters in its
// subpackages (chroma, neo4j, falkor, graphiti).
//
// Every adapter exposes the same surface — Ingest(ctx, id, text, metadata) —
// regardless of the backend's wire protocol. Adapters never retry
// internally; retry policy belongs to whatever supervises the pipeline.
// Failures are reported as *StoreError values identifying the backend and
// the failure kind so the orchestrator can aggregate per-store outcomes.
package stores
