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


package search

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/core"
)

// DefaultBatchSize matches the catalog build batch size.
const DefaultBatchSize = 32

// Corpus is the read-only view of the catalog the retriever scores.
// *catalog.Store satisfies it.
type Corpus interface {
	Size() int
	Dimension() int
	RecordAt(i int) (core.AssessmentRecord, error)
	Batches(size int) iter.Seq2[int, [][]float32]
}

// Retriever finds the catalog records most similar to a search string.
// A Retriever is safe for concurrent use; call Release when done.
type Retriever struct {
	corpus    Corpus
	embedder  ai.Embedder
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithBatchSize sets how many catalog embeddings are scored per fold.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(r *Retriever) error {
		if size < 1 {
			size = DefaultBatchSize
		}
		r.batchSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for batch folds.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(r *Retriever) error {
		if size < 1 {
			size = 1
		}
		if r.pool != nil {
			r.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		r.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a retriever over corpus. The embedder must be the one
// (with the same input truncation) that produced the corpus embeddings.
func NewRetriever(corpus Corpus, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		corpus:    corpus,
		embedder:  embedder,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			r.Release()
			return nil, err
		}
	}

	if r.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
		if err != nil {
			return nil, err
		}
		r.pool = pool
	}
	r.logger = r.logger.With("component", "retriever")

	return r, nil
}

// Release frees the worker pool.
func (r *Retriever) Release() {
	if r.pool != nil {
		r.pool.Release()
	}
}

// Retrieve returns the min(k, N) catalog records most similar to
// searchText, best first. Ties keep catalog order.
func (r *Retriever) Retrieve(ctx context.Context, searchText string, k int) ([]core.RankedResult, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	embedding, err := r.embedder.EmbedText(ctx, searchText)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, fmt.Errorf("embedding search text: %w", err)
	}
	if len(embedding) != r.corpus.Dimension() {
		return nil, fmt.Errorf("%w: query has dimension %d, catalog has %d",
			core.ErrDimensionMismatch, len(embedding), r.corpus.Dimension())
	}
	query := core.NormalizeVector(embedding)

	best, err := r.fold(ctx, query, k)
	if err != nil {
		return nil, err
	}

	ranked := best.ranked()
	results := make([]core.RankedResult, 0, len(ranked))
	for _, c := range ranked {
		record, err := r.corpus.RecordAt(c.index)
		if err != nil {
			return nil, err
		}
		results = append(results, core.RankedResult{
			Record: record,
			Index:  c.index,
			Score:  c.score,
		})
	}
	r.logger.Debug("retrieved candidates", "k", k, "returned", len(results))
	return results, nil
}

// fold scores every batch on the pool and merges the per-batch heaps in
// batch order.
func (r *Retriever) fold(ctx context.Context, query []float32, k int) (*topK, error) {
	var (
		wg       sync.WaitGroup
		partials []*topK
	)
	for start, batch := range r.corpus.Batches(r.batchSize) {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		partial := newTopK(min(k, len(batch)))
		partials = append(partials, partial)

		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			for i, vector := range batch {
				partial.offer(candidate{index: start + i, score: similarity(query, vector)})
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("scheduling batch at %d: %w", start, err)
		}
	}
	wg.Wait()

	best := newTopK(k)
	for _, partial := range partials {
		best.merge(partial)
	}
	return best, nil
}

// similarity is the cosine of two unit vectors, clamped to [-1, 1].
func similarity(a, b []float32) float32 {
	return max(-1, min(1, core.Dot(a, b)))
}
