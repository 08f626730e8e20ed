package extract

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/poiesic/akashic/core"
)

// pdfExtractor attempts the native text layer first. When the result is
// near-empty (a scanned or image-only document) it hands the document to
// the OCR collaborator instead, and never returns near-empty text as a
// successful native extraction.
type pdfExtractor struct {
	recognizer     Recognizer
	minNativeChars int
}

var _ Extractor = (*pdfExtractor)(nil)

func (e *pdfExtractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty pdf", ErrCorrupt)
	}

	text, pages, err := e.nativeText(data)
	if err != nil {
		return nil, err
	}

	if substantiveChars(text) >= e.minNativeChars {
		return &Result{
			Text: strings.TrimSpace(text),
			Metadata: map[string]string{
				MetaFormat:     core.FormatPDF.String(),
				MetaExtraction: extractionNative,
				MetaPages:      strconv.Itoa(pages),
			},
		}, nil
	}

	// Near-empty text layer: scanned document, fall back to OCR.
	return e.ocrText(ctx, data, pages)
}

// nativeText walks the PDF page by page, concatenating the text layer.
// Pages that fail to decode are skipped; a document that cannot be opened
// at all is corrupt.
func (e *pdfExtractor) nativeText(data []byte) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()

	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable pages
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	return sb.String(), numPages, nil
}

func (e *pdfExtractor) ocrText(ctx context.Context, data []byte, pages int) (*Result, error) {
	if e.recognizer == nil || !e.recognizer.Available() {
		return nil, fmt.Errorf("%w: pdf has no extractable text layer", ErrOCRUnavailable)
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
		MetaFormat:     core.FormatPDF.String(),
		MetaExtraction: extractionOCR,
		MetaPages:      strconv.Itoa(pages),
	}
	if rec.Confidence >= 0 {
		metadata[MetaOCRConfidence] = strconv.FormatFloat(rec.Confidence, 'f', 1, 64)
	}

	return &Result{Text: text, Metadata: metadata}, nil
}

// substantiveChars counts runes that are neither whitespace nor control
// characters. A text layer below the threshold is treated as absent.
func substantiveChars(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			continue
		}
		n++
	}
	return n
}
