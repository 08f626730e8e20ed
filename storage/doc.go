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


// Package storage provides the document registry abstraction for akashic.
//
// The registry is the single source of truth for submission state. Every
// status, progress, or error update goes through DocumentRegistry.Transition,
// which enforces the forward-only lifecycle (queued -> processing ->
// completed/failed) atomically, so concurrent readers never observe a torn
// update of status, progress, and error detail.
//
// Public constructors return the DocumentRegistry interface rather than a
// concrete type so that alternative backends can be substituted:
//
//	registry, err := badger.NewDocumentRegistry(backend)  // returns storage.DocumentRegistry
//
// # Thread Safety
//
// All registry implementations must be thread-safe. Transitions for a single
// submission id are serialized; unrelated ids proceed concurrently.
//
// # Context Support
//
// All registry methods accept context.Context for cancellation and timeout
// support.
package storage
