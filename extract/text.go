package extract

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/poiesic/akashic/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// textExtractor handles TXT and Markdown: a direct decode of the byte
// content as UTF-8 text.
type textExtractor struct {
	format core.Format
}

var _ Extractor = (*textExtractor)(nil)

func (e *textExtractor) Extract(ctx context.Context, data []byte) (*Result, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s content is not valid UTF-8", ErrInvalidEncoding, e.format)
	}

	return &Result{
		Text: string(data),
		Metadata: map[string]string{
			MetaFormat:     e.format.String(),
			MetaExtraction: extractionDirect,
		},
	}, nil
}
