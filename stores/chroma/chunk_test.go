package chroma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single paragraph",
			text: "Hello world",
			want: []string{"Hello world"},
		},
		{
			name: "two paragraphs",
			text: "First paragraph.\n\nSecond paragraph.",
			want: []string{"First paragraph.", "Second paragraph."},
		},
		{
			name: "collapses extra blank lines",
			text: "One.\n\n\n\nTwo.",
			want: []string{"One.", "Two."},
		},
		{
			name: "windows line endings",
			text: "One.\r\n\r\nTwo.",
			want: []string{"One.", "Two."},
		},
		{
			name: "trims surrounding whitespace",
			text: "\n\n  padded  \n\n",
			want: []string{"padded"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "   \n\n \t ",
			want: nil,
		},
		{
			name: "keeps single newlines inside a paragraph",
			text: "line one\nline two\n\nnext",
			want: []string{"line one\nline two", "next"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitParagraphs(tt.text))
		})
	}
}
