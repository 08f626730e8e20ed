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

// Package falkor writes normalized documents into FalkorDB over its
// Redis-protocol GRAPH.QUERY command.
package falkor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/stores"
)

const backendName = "falkordb"

// maxTextChars caps the text stored on a node. FalkorDB holds node
// properties in memory; full text belongs in the vector store.
const maxTextChars = 1000

// Store ingests documents into FalkorDB as Document nodes.
type Store struct {
	client *redis.Client
	graph  string
}

// New creates a FalkorDB store from the configured address and graph
// name. The connection is established lazily.
func New(config *stores.Config) *Store {
	client := redis.NewClient(&redis.Options{Addr: config.FalkorAddr})
	return &Store{client: client, graph: config.FalkorGraph}
}

func (s *Store) Name() string {
	return backendName
}

// Ingest merges a Document node keyed on the submission id. Text is
// truncated to maxTextChars.
func (s *Store) Ingest(ctx context.Context, id core.ID, text string, metadata map[string]string) error {
	metaJSON, err := sonic.MarshalString(metadata)
	if err != nil {
		return stores.NewStoreError(backendName, stores.ErrKindMalformedWrite, err)
	}

	query := fmt.Sprintf(
		"MERGE (d:Document {id: '%s'}) SET d.text = '%s', d.metadata = '%s', d.updated_at = timestamp()",
		strconv.FormatUint(uint64(id), 10),
		escapeQuotes(truncate(text, maxTextChars)),
		escapeQuotes(metaJSON),
	)

	if err := s.client.Do(ctx, "GRAPH.QUERY", s.graph, query).Err(); err != nil {
		return stores.NewStoreError(backendName, classify(err), err)
	}
	return nil
}

// Close releases the underlying Redis connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

// truncate limits s to n runes without splitting a multi-byte character.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func classify(err error) stores.ErrorKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "noauth") || strings.Contains(msg, "wrongpass"):
		return stores.ErrKindAuth
	case strings.Contains(msg, "errmsg") || strings.Contains(msg, "syntax"):
		return stores.ErrKindMalformedWrite
	default:
		return stores.ErrKindConnection
	}
}
