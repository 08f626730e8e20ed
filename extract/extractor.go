package extract

import (
	"context"

	"github.com/poiesic/akashic/core"
)

// Metadata keys recorded by extractors.
const (
	// MetaFormat is the document format the extractor handled.
	MetaFormat = "format"
	// MetaExtraction is the path used: "native", "ocr", or "direct".
	MetaExtraction = "extraction"
	// MetaPages is the page count, for paginated formats.
	MetaPages = "pages"
	// MetaChapters is the chapter count, for EPUB.
	MetaChapters = "chapters"
	// MetaChapterTitles is a newline-separated ordered list of chapter titles.
	MetaChapterTitles = "chapter_titles"
	// MetaChapterOffsets is a comma-separated list of chapter byte offsets
	// into the normalized text, parallel to MetaChapterTitles.
	MetaChapterOffsets = "chapter_offsets"
	// MetaOCRConfidence is the recognizer's mean confidence, when supplied.
	MetaOCRConfidence = "ocr_confidence"
)

// Extraction path values for MetaExtraction.
const (
	extractionNative = "native"
	extractionOCR    = "ocr"
	extractionDirect = "direct"
)

// Result is the normalized output of one extraction.
// It is ephemeral: owned by the in-flight pipeline run and discarded once
// all target stores have been attempted.
type Result struct {
	Text     string
	Metadata map[string]string
}

// Extractor converts raw document bytes into normalized text plus metadata.
// Implementations must be stateless and safe for concurrent use.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (*Result, error)
}

// Options configures the extractor set.
type Options struct {
	// Recognizer is the OCR collaborator. When nil, formats that require
	// OCR fail with ErrOCRUnavailable.
	Recognizer Recognizer

	// MinNativeChars is the minimum count of non-whitespace characters a
	// native PDF text layer must yield before the OCR fallback triggers.
	// Zero means the default.
	MinNativeChars int
}

const defaultMinNativeChars = 64

func (o *Options) minNativeChars() int {
	if o == nil || o.MinNativeChars <= 0 {
		return defaultMinNativeChars
	}
	return o.MinNativeChars
}

func (o *Options) recognizer() Recognizer {
	if o == nil {
		return nil
	}
	return o.Recognizer
}

// ExtractorFor returns the extraction strategy for a format.
// Returns ErrUnsupportedFormat for formats without a strategy, including
// core.FormatRaw, which bypasses extraction entirely.
func ExtractorFor(format core.Format, opts *Options) (Extractor, error) {
	switch format {
	case core.FormatPDF:
		return &pdfExtractor{recognizer: opts.recognizer(), minNativeChars: opts.minNativeChars()}, nil
	case core.FormatText, core.FormatMarkdown:
		return &textExtractor{format: format}, nil
	case core.FormatEPUB:
		return &epubExtractor{}, nil
	case core.FormatDOC, core.FormatDOCX:
		return &wordExtractor{format: format, recognizer: opts.recognizer()}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}
