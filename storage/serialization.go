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


package storage

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/poiesic/akashic/core"
)

// submissionRecord is the durable form of a core.Submission.
type submissionRecord struct {
	Id           uint64            `json:"id"`
	SourceName   string            `json:"source_name"`
	Format       int               `json:"format"`
	Status       int               `json:"status"`
	Target       int               `json:"target"`
	GraphBackend int               `json:"graph_backend,omitempty"`
	Progress     int               `json:"progress"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	ErrorDetail  string            `json:"error_detail,omitempty"`
	CreatedAt    int64             `json:"created_at"` // unix micro
	UpdatedAt    int64             `json:"updated_at"` // unix micro
}

// MarshalSubmission serializes a Submission to bytes.
func MarshalSubmission(sub *core.Submission) ([]byte, error) {
	rec := submissionRecord{
		Id:           uint64(sub.Id),
		SourceName:   sub.SourceName,
		Format:       int(sub.Format),
		Status:       int(sub.Status),
		Target:       int(sub.Target),
		GraphBackend: int(sub.GraphBackend),
		Progress:     sub.Progress,
		Metadata:     sub.Metadata,
		ErrorDetail:  sub.ErrorDetail,
		CreatedAt:    sub.CreatedAt.UnixMicro(),
		UpdatedAt:    sub.UpdatedAt.UnixMicro(),
	}

	data, err := sonic.Marshal(&rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalSubmission deserializes a Submission from bytes.
func UnmarshalSubmission(data []byte) (*core.Submission, error) {
	var rec submissionRecord
	if err := sonic.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}

	return &core.Submission{
		Id:           core.ID(rec.Id),
		SourceName:   rec.SourceName,
		Format:       core.Format(rec.Format),
		Status:       core.Status(rec.Status),
		Target:       core.Target(rec.Target),
		GraphBackend: core.GraphBackend(rec.GraphBackend),
		Progress:     rec.Progress,
		Metadata:     rec.Metadata,
		ErrorDetail:  rec.ErrorDetail,
		CreatedAt:    microTime(rec.CreatedAt),
		UpdatedAt:    microTime(rec.UpdatedAt),
	}, nil
}

func microTime(us int64) time.Time {
	return time.UnixMicro(us).UTC()
}
