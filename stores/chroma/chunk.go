package chroma

import "strings"

// SplitParagraphs splits text on blank lines into trimmed, non-empty
// paragraph chunks. Consecutive blank lines collapse; a document with no
// blank lines yields a single chunk.
func SplitParagraphs(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	var chunks []string
	for _, part := range strings.Split(normalized, "\n\n") {
		part = strings.TrimSpace(part)
		if part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks
}
