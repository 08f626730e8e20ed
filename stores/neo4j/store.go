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

// Package neo4j writes normalized documents into Neo4j as Document nodes.
package neo4j

import (
	"context"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/stores"
)

const backendName = "neo4j"

// Store ingests documents into Neo4j via the bolt driver.
type Store struct {
	driver neo4j.DriverWithContext
}

// New creates a Neo4j store from the configured URI and credentials.
// The connection is established lazily by the driver; auth failures
// surface on the first write.
func New(config *stores.Config) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(
		config.Neo4jURI,
		neo4j.BasicAuth(config.Neo4jUser, config.Neo4jPassword, ""),
	)
	if err != nil {
		return nil, stores.NewStoreError(backendName, stores.ErrKindConnection, err)
	}
	return &Store{driver: driver}, nil
}

func (s *Store) Name() string {
	return backendName
}

// Ingest merges a Document node keyed on the submission id, so retrying
// the same submission overwrites rather than duplicates.
func (s *Store) Ingest(ctx context.Context, id core.ID, text string, metadata map[string]string) error {
	metaJSON, err := sonic.MarshalString(metadata)
	if err != nil {
		return stores.NewStoreError(backendName, stores.ErrKindMalformedWrite, err)
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx,
			`MERGE (d:Document {id: $id})
			 ON CREATE SET d.created_at = datetime()
			 SET d.text = $text, d.metadata = $metadata, d.updated_at = datetime()`,
			map[string]any{
				"id":       strconv.FormatUint(uint64(id), 10),
				"text":     text,
				"metadata": metaJSON,
			})
	})
	if err != nil {
		return stores.NewStoreError(backendName, classify(err), err)
	}
	return nil
}

// Close releases the driver's connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func classify(err error) stores.ErrorKind {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unauthorized") || strings.Contains(msg, "authentication"):
		return stores.ErrKindAuth
	case strings.Contains(msg, "syntax") || strings.Contains(msg, "constraint"):
		return stores.ErrKindMalformedWrite
	default:
		return stores.ErrKindConnection
	}
}
