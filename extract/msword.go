package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/akashic/core"
)

// wordExtractor handles DOC and DOCX. No native parser is assumed
// reliable for these formats, so the sole strategy is render-then-recognize
// through the OCR collaborator.
//
// TODO: replace with a native OOXML parser for DOCX; this is the extension
// point most likely to need one.
type wordExtractor struct {
	format     core.Format
	recognizer Recognizer
}

var _ Extractor = (*wordExtractor)(nil)

func (e *wordExtractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty %s", ErrCorrupt, e.format)
	}

	if e.recognizer == nil || !e.recognizer.Available() {
		return nil, fmt.Errorf("%w: %s extraction requires ocr", ErrOCRUnavailable, e.format)
	}

	rec, err := e.recognizer.Recognize(ctx, data)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(rec.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: ocr recognized no text", ErrEmptyDocument)
	}

	metadata := map[string]string{
		MetaFormat:     e.format.String(),
		MetaExtraction: extractionOCR,
	}
	if rec.Confidence >= 0 {
		metadata[MetaOCRConfidence] = strconv.FormatFloat(rec.Confidence, 'f', 1, 64)
	}

	return &Result{Text: text, Metadata: metadata}, nil
}
