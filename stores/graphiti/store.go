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

// Package graphiti writes normalized documents into a Graphiti service
// over its HTTP ingestion endpoint. Graphiti performs its own entity
// extraction, so the adapter ships the full text and metadata as-is.
package graphiti

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/poiesic/akashic/core"
	"github.com/poiesic/akashic/stores"
)

const backendName = "graphiti"

// ingestRequest is the payload for POST /ingest.
type ingestRequest struct {
	SubmissionID string            `json:"submission_id"`
	Text         string            `json:"text"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Store ingests documents via a Graphiti service.
type Store struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Graphiti store for the configured base URL.
func New(config *stores.Config) *Store {
	return &Store{
		baseURL:    strings.TrimRight(config.GraphitiURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (s *Store) Name() string {
	return backendName
}

// Ingest posts the document to the service's /ingest endpoint. Any
// non-2xx response is a failure; the response body is included in the
// error for diagnosis.
func (s *Store) Ingest(ctx context.Context, id core.ID, text string, metadata map[string]string) error {
	payload, err := sonic.Marshal(ingestRequest{
		SubmissionID: strconv.FormatUint(uint64(id), 10),
		Text:         text,
		Metadata:     metadata,
	})
	if err != nil {
		return stores.NewStoreError(backendName, stores.ErrKindMalformedWrite, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/ingest", bytes.NewReader(payload))
	if err != nil {
		return stores.NewStoreError(backendName, stores.ErrKindMalformedWrite, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return stores.NewStoreError(backendName, stores.ErrKindConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		kind := stores.ErrKindMalformedWrite
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			kind = stores.ErrKindAuth
		} else if resp.StatusCode >= 500 {
			kind = stores.ErrKindConnection
		}
		return stores.NewStoreError(backendName, kind,
			fmt.Errorf("ingest returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	return nil
}
