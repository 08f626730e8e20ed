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


package stores

import (
	"errors"
	"fmt"
)

var (
	// ErrVectorNotConfigured indicates a vector target with no vector
	// store configured.
	ErrVectorNotConfigured = errors.New("vector store not configured")

	// ErrGraphNotConfigured indicates a graph target whose selected
	// backend has no configured adapter.
	ErrGraphNotConfigured = errors.New("graph store not configured")
)

// ErrorKind classifies store failures.
type ErrorKind int

const (
	// ErrKindConnection is a network or availability failure.
	ErrKindConnection ErrorKind = iota + 1
	// ErrKindAuth is an authentication or authorization failure.
	ErrKindAuth
	// ErrKindMalformedWrite is a write the backend rejected (schema or
	// query mismatch).
	ErrKindMalformedWrite
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindConnection:
		return "connection failure"
	case ErrKindAuth:
		return "auth failure"
	case ErrKindMalformedWrite:
		return "malformed write"
	default:
		return "store failure"
	}
}

// StoreError is a store failure with the offending backend identified.
type StoreError struct {
	Backend string
	Kind    ErrorKind
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Backend, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err as a StoreError for the given backend.
func NewStoreError(backend string, kind ErrorKind, err error) *StoreError {
	return &StoreError{Backend: backend, Kind: kind, Err: err}
}
