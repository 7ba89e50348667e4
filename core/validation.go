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

import (
	"fmt"
	"strings"
)

// ValidateRecord validates an AssessmentRecord according to domain rules.
//
// Validation rules:
//   - Name must not be blank
//   - DurationMinutes, when set, must not be negative
//
// NOT validated (populated at catalog load):
//   - Vector
func ValidateRecord(record *AssessmentRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if strings.TrimSpace(record.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyName)
	}

	if record.DurationMinutes != nil && *record.DurationMinutes < 0 {
		return fmt.Errorf("%w: %q: %w", ErrInvalidRecord, record.Name, ErrNegativeDuration)
	}

	return nil
}
