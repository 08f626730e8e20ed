package chroma

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/akashic/core"
)

func TestBuildDocumentsStableAcrossAttempts(t *testing.T) {
	text := "First paragraph.\n\nSecond paragraph."
	metadata := map[string]string{"format": "txt", "extraction": "direct"}

	first := buildDocuments(core.ID(42), text, metadata)
	second := buildDocuments(core.ID(42), text, metadata)

	// A retried submission must derive byte-identical chunks with the
	// same identity metadata, so the collection converges on rewrites.
	require.Len(t, first, 2)
	assert.Equal(t, first, second)

	for i, doc := range first {
		assert.Equal(t, "42", doc.Metadata[MetaDocumentID])
		assert.Equal(t, strconv.Itoa(i), doc.Metadata[MetaChunkIndex])
		assert.Equal(t, core.ContentDigest(text), doc.Metadata[MetaContentDigest])
		assert.Equal(t, "txt", doc.Metadata["format"])
	}
	assert.Equal(t, "First paragraph.", first[0].PageContent)
	assert.Equal(t, "Second paragraph.", first[1].PageContent)
}

func TestBuildDocumentsDistinguishesSubmissions(t *testing.T) {
	text := "Shared content."

	a := buildDocuments(core.ID(1), text, nil)
	b := buildDocuments(core.ID(2), text, nil)

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	// Same digest for identical content, distinct document identity.
	assert.Equal(t, a[0].Metadata[MetaContentDigest], b[0].Metadata[MetaContentDigest])
	assert.NotEqual(t, a[0].Metadata[MetaDocumentID], b[0].Metadata[MetaDocumentID])
}

func TestBuildDocumentsEmptyText(t *testing.T) {
	assert.Nil(t, buildDocuments(core.ID(7), "   \n\n ", nil))
	assert.Nil(t, buildDocuments(core.ID(7), "", nil))
}
