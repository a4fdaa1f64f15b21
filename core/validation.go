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

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - Form must not be blank
//   - Partition must be a valid partition name
//
// NOT validated (populated during ingestion):
//   - Vector
//   - ID (derived from content when 0)
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if strings.TrimSpace(entry.Form) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyForm)
	}

	if err := ValidatePartition(entry.Partition); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}

	return nil
}

// ValidatePartition checks that a partition name can be used as a key segment.
// Partitions must be non-empty and must not contain ':' or NUL.
func ValidatePartition(partition string) error {
	if partition == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidPartition)
	}
	if strings.ContainsAny(partition, ":\x00") {
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidPartition, partition)
	}
	return nil
}
