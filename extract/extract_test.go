package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/akashic/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRecognizer is a test double for the OCR collaborator.
// It allows custom behavior injection via function fields.
type fakeRecognizer struct {
	RecognizeFunc func(ctx context.Context, data []byte) (*Recognition, error)
	available     bool
	callCount     int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, data []byte) (*Recognition, error) {
	f.callCount++
	if f.RecognizeFunc != nil {
		return f.RecognizeFunc(ctx, data)
	}
	return &Recognition{Text: "recognized text from scan", Confidence: 91.5}, nil
}

func (f *fakeRecognizer) Available() bool {
	return f.available
}

// emptyPagePDF builds a valid single-page PDF whose content stream is
// empty, i.e. a document with no extractable text layer.
func emptyPagePDF() []byte {
	var b bytes.Buffer
	offsets := make([]int, 5)
	obj := func(i int, body string) {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i, body)
	}

	b.WriteString("%PDF-1.4\n")
	obj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	obj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	obj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << >> >>")
	obj(4, "<< /Length 0 >>\nstream\n\nendstream")

	xrefPos := b.Len()
	b.WriteString("xref\n0 5\n")
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size 5 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefPos)
	return b.Bytes()
}

func TestExtractorFor(t *testing.T) {
	tests := []struct {
		format  core.Format
		wantErr bool
	}{
		{core.FormatPDF, false},
		{core.FormatText, false},
		{core.FormatMarkdown, false},
		{core.FormatEPUB, false},
		{core.FormatDOC, false},
		{core.FormatDOCX, false},
		{core.FormatRaw, true},
		{core.Format(99), true},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			ex, err := ExtractorFor(tt.format, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, ex)
		})
	}
}

func TestTextExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("plain text passes through", func(t *testing.T) {
		ex, err := ExtractorFor(core.FormatText, nil)
		require.NoError(t, err)

		result, err := ex.Extract(ctx, []byte("Hello world"))
		require.NoError(t, err)
		assert.Equal(t, "Hello world", result.Text)
		assert.Equal(t, "txt", result.Metadata[MetaFormat])
		assert.Equal(t, "direct", result.Metadata[MetaExtraction])
	})

	t.Run("markdown passes through unchanged", func(t *testing.T) {
		ex, err := ExtractorFor(core.FormatMarkdown, nil)
		require.NoError(t, err)

		result, err := ex.Extract(ctx, []byte("# Title\n\nHello world"))
		require.NoError(t, err)
		assert.Equal(t, "# Title\n\nHello world", result.Text)
		assert.Equal(t, "md", result.Metadata[MetaFormat])
	})

	t.Run("strips utf8 bom", func(t *testing.T) {
		ex, err := ExtractorFor(core.FormatText, nil)
		require.NoError(t, err)

		result, err := ex.Extract(ctx, append([]byte{0xEF, 0xBB, 0xBF}, []byte("content")...))
		require.NoError(t, err)
		assert.Equal(t, "content", result.Text)
	})

	t.Run("invalid encoding", func(t *testing.T) {
		ex, err := ExtractorFor(core.FormatText, nil)
		require.NoError(t, err)

		_, err = ex.Extract(ctx, []byte{0xff, 0xfe, 0x41})
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}

func TestPDFExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("corrupt bytes", func(t *testing.T) {
		ex, err := ExtractorFor(core.FormatPDF, nil)
		require.NoError(t, err)

		_, err = ex.Extract(ctx, []byte("definitely not a pdf"))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("empty input", func(t *testing.T) {
		ex, err := ExtractorFor(core.FormatPDF, nil)
		require.NoError(t, err)

		_, err = ex.Extract(ctx, nil)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("near-empty text layer invokes ocr exactly once", func(t *testing.T) {
		rec := &fakeRecognizer{available: true}
		ex, err := ExtractorFor(core.FormatPDF, &Options{Recognizer: rec})
		require.NoError(t, err)

		result, err := ex.Extract(ctx, emptyPagePDF())
		require.NoError(t, err)
		assert.Equal(t, 1, rec.callCount)
		assert.Equal(t, "recognized text from scan", result.Text)
		assert.Equal(t, "ocr", result.Metadata[MetaExtraction])
		assert.Equal(t, "91.5", result.Metadata[MetaOCRConfidence])
	})

	t.Run("ocr disabled surfaces unavailable, never empty success", func(t *testing.T) {
		ex, err := ExtractorFor(core.FormatPDF, nil)
		require.NoError(t, err)

		_, err = ex.Extract(ctx, emptyPagePDF())
		assert.ErrorIs(t, err, ErrOCRUnavailable)
	})

	t.Run("ocr configured but collaborator down", func(t *testing.T) {
		rec := &fakeRecognizer{available: false}
		ex, err := ExtractorFor(core.FormatPDF, &Options{Recognizer: rec})
		require.NoError(t, err)

		_, err = ex.Extract(ctx, emptyPagePDF())
		assert.ErrorIs(t, err, ErrOCRUnavailable)
		assert.Equal(t, 0, rec.callCount)
	})

	t.Run("ocr error propagates", func(t *testing.T) {
		rec := &fakeRecognizer{
			available: true,
			RecognizeFunc: func(ctx context.Context, data []byte) (*Recognition, error) {
				return nil, errors.New("engine crashed")
			},
		}
		ex, err := ExtractorFor(core.FormatPDF, &Options{Recognizer: rec})
		require.NoError(t, err)

		_, err = ex.Extract(ctx, emptyPagePDF())
		assert.ErrorContains(t, err, "engine crashed")
	})

	t.Run("ocr with no confidence omits metadata key", func(t *testing.T) {
		rec := &fakeRecognizer{
			available: true,
			RecognizeFunc: func(ctx context.Context, data []byte) (*Recognition, error) {
				return &Recognition{Text: "scanned words", Confidence: -1}, nil
			},
		}
		ex, err := ExtractorFor(core.FormatPDF, &Options{Recognizer: rec})
		require.NoError(t, err)

		result, err := ex.Extract(ctx, emptyPagePDF())
		require.NoError(t, err)
		_, present := result.Metadata[MetaOCRConfidence]
		assert.False(t, present)
	})
}

// buildEPUB assembles an in-memory EPUB with the given chapters.
func buildEPUB(t *testing.T, chapters map[string]string, spine []string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	add := func(name, content string) {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}

	add("META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)

	var manifest, spineXML bytes.Buffer
	for i, name := range spine {
		fmt.Fprintf(&manifest, `<item id="ch%d" href="%s" media-type="application/xhtml+xml"/>`, i, name)
		fmt.Fprintf(&spineXML, `<itemref idref="ch%d"/>`, i)
	}
	add("OEBPS/content.opf", fmt.Sprintf(`<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0">
  <manifest>%s</manifest>
  <spine>%s</spine>
</package>`, manifest.String(), spineXML.String()))

	for name, content := range chapters {
		add("OEBPS/"+name, content)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestEPUBExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("chapters in spine order with titles and offsets", func(t *testing.T) {
		data := buildEPUB(t, map[string]string{
			"ch1.xhtml": `<html><head><title>Chapter One</title></head><body><p>First chapter text.</p></body></html>`,
			"ch2.xhtml": `<html><head><title>Chapter Two</title></head><body><p>Second chapter text.</p></body></html>`,
		}, []string{"ch1.xhtml", "ch2.xhtml"})

		ex, err := ExtractorFor(core.FormatEPUB, nil)
		require.NoError(t, err)

		result, err := ex.Extract(ctx, data)
		require.NoError(t, err)

		assert.Contains(t, result.Text, "First chapter text.")
		assert.Contains(t, result.Text, "Second chapter text.")
		assert.Less(t,
			bytes.Index([]byte(result.Text), []byte("First")),
			bytes.Index([]byte(result.Text), []byte("Second")))

		assert.Equal(t, "2", result.Metadata[MetaChapters])
		assert.Equal(t, "Chapter One\nChapter Two", result.Metadata[MetaChapterTitles])
		assert.Equal(t, "epub", result.Metadata[MetaFormat])
		assert.NotEmpty(t, result.Metadata[MetaChapterOffsets])
	})

	t.Run("untitled chapter falls back to filename", func(t *testing.T) {
		data := buildEPUB(t, map[string]string{
			"intro.xhtml": `<html><body><p>Untitled content here.</p></body></html>`,
		}, []string{"intro.xhtml"})

		ex, err := ExtractorFor(core.FormatEPUB, nil)
		require.NoError(t, err)

		result, err := ex.Extract(ctx, data)
		require.NoError(t, err)
		assert.Equal(t, "intro.xhtml", result.Metadata[MetaChapterTitles])
	})

	t.Run("not a zip", func(t *testing.T) {
		ex, err := ExtractorFor(core.FormatEPUB, nil)
		require.NoError(t, err)

		_, err = ex.Extract(ctx, []byte("plain text, no archive"))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("zip without container.xml", func(t *testing.T) {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		f, err := w.Create("random.txt")
		require.NoError(t, err)
		_, err = f.Write([]byte("data"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		ex, err := ExtractorFor(core.FormatEPUB, nil)
		require.NoError(t, err)

		_, err = ex.Extract(ctx, buf.Bytes())
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestWordExtractor(t *testing.T) {
	ctx := context.Background()

	t.Run("uses ocr as sole strategy", func(t *testing.T) {
		rec := &fakeRecognizer{available: true}
		ex, err := ExtractorFor(core.FormatDOCX, &Options{Recognizer: rec})
		require.NoError(t, err)

		result, err := ex.Extract(ctx, []byte("fake docx bytes"))
		require.NoError(t, err)
		assert.Equal(t, 1, rec.callCount)
		assert.Equal(t, "docx", result.Metadata[MetaFormat])
		assert.Equal(t, "ocr", result.Metadata[MetaExtraction])
	})

	t.Run("no recognizer", func(t *testing.T) {
		ex, err := ExtractorFor(core.FormatDOC, nil)
		require.NoError(t, err)

		_, err = ex.Extract(ctx, []byte("fake doc bytes"))
		assert.ErrorIs(t, err, ErrOCRUnavailable)
	})
}

func TestSubstantiveChars(t *testing.T) {
	assert.Equal(t, 0, substantiveChars(""))
	assert.Equal(t, 0, substantiveChars("   \n\t\r\n  "))
	assert.Equal(t, 10, substantiveChars("hello world"))
	assert.Equal(t, 4, substantiveChars(" a b\nc\td "))
}

func TestParseTesseractConfidence(t *testing.T) {
	assert.Equal(t, 87.0, parseTesseractConfidence("Estimating resolution\nMean confidence: 87\n"))
	assert.Equal(t, -1.0, parseTesseractConfidence("no confidence line"))
	assert.Equal(t, -1.0, parseTesseractConfidence(""))
}

func TestTesseractRecognizerUnavailable(t *testing.T) {
	rec := NewTesseractRecognizer("/nonexistent/path/to/tesseract")
	assert.False(t, rec.Available())

	_, err := rec.Recognize(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, ErrOCRUnavailable)
}
