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


package catalog

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"strconv"

	"github.com/poiesic/assessor/core"
)

// Store is the immutable, loaded catalog: records in artifact order, each
// with a unit-normalized embedding of constant dimension.
// A Store is safe for concurrent reads; nothing mutates it after construction.
type Store struct {
	records   []core.AssessmentRecord
	vectors   [][]float32
	dimension int
	digest    string
}

// FromVectors constructs a store from records and pre-computed vectors.
// Vectors are normalized; the records' own Vector fields are ignored.
func FromVectors(records []core.AssessmentRecord, vectors [][]float32) (*Store, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", core.ErrCatalogLoad)
	}
	if len(records) != len(vectors) {
		return nil, fmt.Errorf("%w: %d records but %d vectors", core.ErrCatalogLoad, len(records), len(vectors))
	}
	b := newStoreBuilder(len(records))
	for i := range records {
		if err := b.add(records[i], vectors[i]); err != nil {
			return nil, err
		}
	}
	return b.store(), nil
}

// storeBuilder accumulates validated records until the store is sealed.
type storeBuilder struct {
	records   []core.AssessmentRecord
	vectors   [][]float32
	names     map[string]struct{}
	dimension int
}

func newStoreBuilder(capacity int) *storeBuilder {
	return &storeBuilder{
		records: make([]core.AssessmentRecord, 0, capacity),
		vectors: make([][]float32, 0, capacity),
		names:   make(map[string]struct{}, capacity),
	}
}

func (b *storeBuilder) add(record core.AssessmentRecord, vector []float32) error {
	index := len(b.records)
	if err := core.ValidateRecord(&record); err != nil {
		return fmt.Errorf("%w: record %d: %w", core.ErrCatalogLoad, index, err)
	}
	if _, dup := b.names[record.Name]; dup {
		return fmt.Errorf("%w: duplicate assessment name %q", core.ErrCatalogLoad, record.Name)
	}
	if len(vector) == 0 {
		return fmt.Errorf("%w: record %q has an empty embedding", core.ErrCatalogLoad, record.Name)
	}
	if b.dimension == 0 {
		b.dimension = len(vector)
	} else if len(vector) != b.dimension {
		return fmt.Errorf("%w: %w: record %q has dimension %d, want %d",
			core.ErrCatalogLoad, core.ErrDimensionMismatch, record.Name, len(vector), b.dimension)
	}

	normalized := core.NormalizeVector(vector)
	record.Vector = normalized
	record.TestTypes = slices.Clone(record.TestTypes)
	b.names[record.Name] = struct{}{}
	b.records = append(b.records, record)
	b.vectors = append(b.vectors, normalized)
	return nil
}

func (b *storeBuilder) store() *Store {
	return &Store{
		records:   b.records,
		vectors:   b.vectors,
		dimension: b.dimension,
		digest:    digest(b.records),
	}
}

// digest hashes every served field of the records, in order.
func digest(records []core.AssessmentRecord) string {
	data, err := json.Marshal(records)
	if err != nil {
		return ""
	}
	return strconv.FormatUint(uint64(core.IDFromContent(string(data))), 16)
}

// Size returns the number of records.
func (s *Store) Size() int {
	return len(s.records)
}

// Dimension returns the embedding dimension shared by all records.
func (s *Store) Dimension() int {
	return s.dimension
}

// RecordAt returns the record at catalog position i.
func (s *Store) RecordAt(i int) (core.AssessmentRecord, error) {
	if i < 0 || i >= len(s.records) {
		return core.AssessmentRecord{}, fmt.Errorf("%w: %d not in [0, %d)", core.ErrIndexOutOfRange, i, len(s.records))
	}
	return s.records[i], nil
}

// EmbeddingAt returns the unit-normalized embedding at catalog position i.
// The returned slice is shared and must not be modified.
func (s *Store) EmbeddingAt(i int) ([]float32, error) {
	if i < 0 || i >= len(s.vectors) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", core.ErrIndexOutOfRange, i, len(s.vectors))
	}
	return s.vectors[i], nil
}

// Batches yields consecutive read-only views of at most size embeddings,
// keyed by the catalog index of the first embedding in each view.
// A non-positive size yields the whole catalog as one batch.
func (s *Store) Batches(size int) iter.Seq2[int, [][]float32] {
	if size <= 0 {
		size = len(s.vectors)
	}
	return func(yield func(int, [][]float32) bool) {
		for start := 0; start < len(s.vectors); start += size {
			end := min(start+size, len(s.vectors))
			if !yield(start, s.vectors[start:end:end]) {
				return
			}
		}
	}
}

// Digest identifies the catalog contents. Two stores built from the same
// records in the same order share a digest.
func (s *Store) Digest() string {
	return s.digest
}

// Records returns a copy of all records in catalog order.
func (s *Store) Records() []core.AssessmentRecord {
	return slices.Clone(s.records)
}
