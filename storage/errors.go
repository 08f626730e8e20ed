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

import "errors"

var (
	// ErrNotFound indicates that the requested submission was not found.
	ErrNotFound = errors.New("submission not found")

	// ErrInvalidTransition indicates a status transition that the
	// forward-only state machine does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrProgressRegression indicates an attempt to lower a submission's
	// progress value.
	ErrProgressRegression = errors.New("progress cannot decrease")

	// ErrDetailRequired indicates a transition to failed without an
	// error detail.
	ErrDetailRequired = errors.New("error detail required for failed status")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
