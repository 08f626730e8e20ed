// Package extract converts raw document bytes into normalized plain text
// plus extraction metadata, one strategy per document format.
//
// Strategies are selected by core.Format via ExtractorFor. The PDF strategy
// attempts the native text layer first and falls back to the OCR
// collaborator when the result is near-empty; DOC/DOCX have no reliable
// native path and use OCR exclusively. Extraction is deterministic on the
// same bytes, so extraction failures are not retryable — except
// ErrOCRUnavailable, which only reflects collaborator availability.
package extract
