// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package chroma writes normalized documents into a ChromaDB collection
// as embedded paragraph chunks.
package chroma

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores/chroma"

	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/stores"
)

const backendName = "vector"

// Chunk metadata keys attached to every stored chunk.
const (
	MetaDocumentID    = "document_id"
	MetaChunkIndex    = "chunk_index"
	MetaContentDigest = "content_digest"
)

// Store ingests documents into a ChromaDB collection via langchaingo.
type Store struct {
	store chroma.Store
}

// New connects to ChromaDB at the configured URL and binds the embedder
// to the configured collection.
func New(config *stores.Config, embedder embeddings.Embedder) (*Store, error) {
	store, err := chroma.New(
		chroma.WithChromaURL(config.ChromaURL),
		chroma.WithEmbedder(embedder),
		chroma.WithNameSpace(config.ChromaCollection),
	)
	if err != nil {
		return nil, stores.NewStoreError(backendName, stores.ErrKindConnection, err)
	}
	return &Store{store: store}, nil
}

func (s *Store) Name() string {
	return backendName
}

// Ingest splits text into paragraph chunks, embeds each, and adds them to
// the collection. Chunk metadata carries the submission id, the chunk
// index, and the content digest so chunks can be traced back and
// duplicate content detected.
func (s *Store) Ingest(ctx context.Context, id core.ID, text string, metadata map[string]string) error {
	docs := buildDocuments(id, text, metadata)
	if len(docs) == 0 {
		return stores.NewStoreError(backendName, stores.ErrKindMalformedWrite,
			fmt.Errorf("no content to index for submission %d", id))
	}

	if _, err := s.store.AddDocuments(ctx, docs); err != nil {
		return stores.NewStoreError(backendName, stores.ErrKindConnection, err)
	}
	return nil
}

// buildDocuments derives the chunk documents for a submission. The
// derivation is a pure function of the inputs, so a retried submission
// writes chunks with identical identity metadata and the collection
// converges instead of accumulating variants.
func buildDocuments(id core.ID, text string, metadata map[string]string) []schema.Document {
	chunks := SplitParagraphs(text)
	if len(chunks) == 0 {
		return nil
	}

	digest := core.ContentDigest(text)
	docs := make([]schema.Document, 0, len(chunks))
	for i, chunk := range chunks {
		meta := make(map[string]any, len(metadata)+3)
		for k, v := range metadata {
			meta[k] = v
		}
		meta[MetaDocumentID] = strconv.FormatUint(uint64(id), 10)
		meta[MetaChunkIndex] = strconv.Itoa(i)
		meta[MetaContentDigest] = digest
		docs = append(docs, schema.Document{
			PageContent: chunk,
			Metadata:    meta,
		})
	}
	return docs
}
