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

// Package storage provides the cache abstractions used by the recommender.
//
// Two caches are defined:
//
//   - VectorCache: catalog embeddings keyed by core.IDFromContent of the
//     embedding model and composite record text. The BadgerDB implementation
//     lives in storage/badger.
//   - ResultCache: serialized recommendation responses keyed by normalized
//     query text. The Valkey implementation lives in storage/valkey and an
//     in-memory implementation is provided here for tests and single-process
//     deployments.
//
// # Usage
//
// Open a persistent vector cache:
//
//	cache, err := badger.NewVectorCache("/path/to/cache")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
// # Encoding
//
// Vectors are encoded with mus-go: a varint length followed by raw
// little-endian float32 components (see MarshalVector).
//
// # Thread Safety
//
// All implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
