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

import "fmt"

// ValidateSubmission validates a Submission according to domain rules.
//
// Validation rules:
//   - SourceName must not be empty
//   - Target must be a known value
//   - GraphBackend must be selected iff the target includes graph writes
//   - Status must be a known value
//   - Progress must be within 0-100
//
// NOT validated (populated by the registry):
//   - ID (0 is valid before creation)
//   - CreatedAt / UpdatedAt
func ValidateSubmission(sub *Submission) error {
	if sub == nil {
		return fmt.Errorf("%w: submission is nil", ErrInvalidSubmission)
	}

	if sub.SourceName == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, ErrEmptySourceName)
	}

	if err := ValidateTarget(sub.Target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	if sub.Target.IncludesGraph() && sub.GraphBackend == GraphNone {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, ErrGraphBackendRequired)
	}

	if err := ValidateStatus(sub.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	if sub.Progress < 0 || sub.Progress > 100 {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, ErrInvalidProgress)
	}

	return nil
}

// ValidateTarget validates that a Target has a valid value.
func ValidateTarget(target Target) error {
	if target != TargetVector && target != TargetGraph && target != TargetBoth {
		return fmt.Errorf("%w: value %d", ErrInvalidTarget, target)
	}
	return nil
}

// ValidateStatus validates that a Status has a valid value.
func ValidateStatus(status Status) error {
	switch status {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidStatus, status)
	}
}
