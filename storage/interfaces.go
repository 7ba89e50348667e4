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
	"context"
	"time"

	"github.com/poiesic/assessor/core"
)

// VectorCache persists catalog embeddings keyed by content ID so that a
// restart does not have to re-embed an unchanged catalog.
// Implementations must be thread-safe and support concurrent access.
type VectorCache interface {
	// GetVectors returns the cached vectors for the given IDs.
	// Missing IDs are simply absent from the returned map.
	GetVectors(ctx context.Context, ids []core.ID) (map[core.ID][]float32, error)

	// PutVectors stores vectors, replacing any existing entries.
	PutVectors(ctx context.Context, vectors map[core.ID][]float32) error

	// Close closes the cache and releases resources.
	Close() error
}

// ResultCache stores serialized recommendation responses.
type ResultCache interface {
	// Get returns the cached value and true, or false when the key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close closes the cache and releases resources.
	Close() error
}
