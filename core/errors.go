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

// Startup errors. Either one means the process must not serve traffic.
var (
	// ErrCatalogLoad indicates the catalog artifact is missing, malformed, or has no usable rows.
	ErrCatalogLoad = errors.New("catalog load failed")

	// ErrModelUnavailable indicates the embedding model could not be initialized.
	ErrModelUnavailable = errors.New("embedding model unavailable")
)

// Per-request errors
var (
	// ErrEnrichmentFetch indicates a URL found in a query could not be fetched.
	// It is never fatal to a recommendation request.
	ErrEnrichmentFetch = errors.New("enrichment fetch failed")

	// ErrUnexpectedPipeline wraps any other failure during a recommendation request.
	ErrUnexpectedPipeline = errors.New("unexpected pipeline failure")

	// ErrEmptyQuery indicates the query text is blank.
	ErrEmptyQuery = errors.New("query cannot be empty")
)

// Domain validation errors
var (
	// ErrIndexOutOfRange indicates a catalog index outside [0, size).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrInvalidRecord indicates an AssessmentRecord failed validation.
	ErrInvalidRecord = errors.New("invalid assessment record")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("assessment name cannot be empty")

	// ErrNegativeDuration indicates a negative duration.
	ErrNegativeDuration = errors.New("duration cannot be negative")

	// ErrDimensionMismatch indicates vectors of different lengths.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
