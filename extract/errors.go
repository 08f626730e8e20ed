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


package extract

import "errors"

var (
	// ErrCorrupt indicates the file could not be parsed as its declared format.
	ErrCorrupt = errors.New("corrupt or unreadable file")

	// ErrUnsupportedFormat indicates no extractor exists for the format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrInvalidEncoding indicates text content that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("invalid text encoding")

	// ErrOCRUnavailable indicates the OCR collaborator is required but not
	// configured or not reachable. Unlike the other extraction errors this
	// one is eligible for external retry.
	ErrOCRUnavailable = errors.New("ocr collaborator unavailable")

	// ErrEmptyDocument indicates a document with no content at all.
	ErrEmptyDocument = errors.New("empty document")
)
