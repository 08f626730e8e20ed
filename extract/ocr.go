package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Recognition is the output of one OCR pass.
type Recognition struct {
	Text string
	// Confidence is the recognizer's mean confidence in [0, 100], or -1
	// when the collaborator does not supply one.
	Confidence float64
}

// Recognizer is the OCR collaborator contract. The recognition algorithm
// itself is external; the pipeline only depends on this boundary.
type Recognizer interface {
	// Recognize runs OCR over a document or page image.
	Recognize(ctx context.Context, data []byte) (*Recognition, error)

	// Available reports whether the collaborator can be reached at all.
	Available() bool
}

// TesseractRecognizer shells out to the tesseract CLI.
type TesseractRecognizer struct {
	// Path is the tesseract binary. Empty means "tesseract" on PATH.
	Path string
}

var _ Recognizer = (*TesseractRecognizer)(nil)

// NewTesseractRecognizer creates a recognizer using the given binary path,
// or "tesseract" from PATH when empty.
func NewTesseractRecognizer(path string) *TesseractRecognizer {
	return &TesseractRecognizer{Path: path}
}

func (r *TesseractRecognizer) binary() string {
	if r.Path != "" {
		return r.Path
	}
	return "tesseract"
}

// Available reports whether the tesseract binary can be found.
func (r *TesseractRecognizer) Available() bool {
	_, err := exec.LookPath(r.binary())
	return err == nil
}

// Recognize writes data to a temporary file and runs tesseract over it,
// reading recognized text from stdout.
func (r *TesseractRecognizer) Recognize(ctx context.Context, data []byte) (*Recognition, error) {
	if !r.Available() {
		return nil, ErrOCRUnavailable
	}

	tmp, err := os.CreateTemp("", "akashic-ocr-*")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary(), tmp.Name(), "stdout")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("tesseract failed: %s: %w", strings.TrimSpace(stderr.String()), err)
	}

	return &Recognition{
		Text:       stdout.String(),
		Confidence: parseTesseractConfidence(stderr.String()),
	}, nil
}

// parseTesseractConfidence pulls a "Mean confidence: NN" line out of
// tesseract's diagnostic output when present.
func parseTesseractConfidence(diagnostics string) float64 {
	for _, line := range strings.Split(diagnostics, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "Mean confidence:")
		if !ok {
			continue
		}
		if v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64); err == nil {
			return v
		}
	}
	return -1
}
