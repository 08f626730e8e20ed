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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidSubmission indicates a Submission failed validation.
	ErrInvalidSubmission = errors.New("invalid submission")

	// ErrEmptySourceName indicates the SourceName field is empty.
	ErrEmptySourceName = errors.New("source name cannot be empty")

	// ErrInvalidTarget indicates an unrecognized ingestion target.
	ErrInvalidTarget = errors.New("invalid ingestion target")

	// ErrInvalidGraphBackend indicates an unrecognized graph backend.
	ErrInvalidGraphBackend = errors.New("invalid graph backend")

	// ErrGraphBackendRequired indicates the target includes graph writes
	// but no graph backend was selected.
	ErrGraphBackendRequired = errors.New("graph backend required for graph target")

	// ErrUnknownFormat indicates the filename extension is not recognized.
	ErrUnknownFormat = errors.New("unknown document format")

	// ErrInvalidProgress indicates a progress value outside 0-100.
	ErrInvalidProgress = errors.New("progress must be between 0 and 100")

	// ErrInvalidStatus indicates an invalid Status value.
	ErrInvalidStatus = errors.New("invalid status")
)
