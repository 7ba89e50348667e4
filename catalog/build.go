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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/storage"
)

const (
	// DefaultBatchSize is the number of records embedded per model call.
	DefaultBatchSize = 32

	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

type builder struct {
	batchSize      int
	cache          storage.VectorCache
	cacheNamespace string
	maxAttempts    int
	retryDelay     time.Duration
	progress       io.Writer
	logger         *slog.Logger
}

// Option configures catalog building.
type Option func(*builder) error

// WithBatchSize sets how many records are embedded per model call.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(b *builder) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		b.batchSize = size
		return nil
	}
}

// WithVectorCache consults cache before calling the model and stores newly
// computed vectors in it. namespace must change whenever the embedding
// model or its input truncation changes.
func WithVectorCache(cache storage.VectorCache, namespace string) Option {
	return func(b *builder) error {
		b.cache = cache
		b.cacheNamespace = namespace
		return nil
	}
}

// WithRetry sets the attempts and base delay for embedding calls.
// Default is 3 attempts starting at 500ms.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(b *builder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		b.maxAttempts = maxAttempts
		b.retryDelay = baseDelay
		return nil
	}
}

// WithProgress writes embedding progress to w.
func WithProgress(w io.Writer) Option {
	return func(b *builder) error {
		b.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// Load reads the catalog artifact at path and embeds it.
func Load(ctx context.Context, path string, embedder ai.Embedder, opts ...Option) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCatalogLoad, err)
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, err
	}
	return Build(ctx, records, embedder, opts...)
}

// Build embeds the composite text of every record in fixed-size batches
// and returns the sealed store. Embedding calls are retried with
// exponential backoff; when retries are exhausted the error wraps
// core.ErrModelUnavailable.
func Build(ctx context.Context, records []core.AssessmentRecord, embedder ai.Embedder, opts ...Option) (*Store, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	b := &builder{
		batchSize:   DefaultBatchSize,
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "catalog")

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", core.ErrCatalogLoad)
	}

	var tracker *ProgressTracker
	if b.progress != nil {
		tracker = NewProgressTracker(b.progress, len(records), b.batchSize)
		tracker.Start()
	}

	out := newStoreBuilder(len(records))
	var (
		texts   = make([]string, 0, b.batchSize)
		ids     = make([]core.ID, 0, b.batchSize)
		vectors = make([][]float32, 0, b.batchSize)
		hits    int
	)
	for start := 0; start < len(records); start += b.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		batch := records[start:min(start+b.batchSize, len(records))]

		// Buffers are reused so only one batch of texts is alive at a time.
		texts, ids, vectors = texts[:0], ids[:0], vectors[:0]
		for i := range batch {
			texts = append(texts, batch[i].CompositeText())
		}

		cached := b.lookup(ctx, texts, &ids)
		vectors = vectors[:len(batch)]
		var missing []int
		for i := range batch {
			if v, ok := cached[i]; ok {
				vectors[i] = v
				continue
			}
			vectors[i] = nil
			missing = append(missing, i)
		}
		hits += len(batch) - len(missing)

		if len(missing) > 0 {
			if err := b.embedMissing(ctx, embedder, texts, missing, vectors); err != nil {
				return nil, err
			}
			b.store(ctx, ids, missing, vectors)
		}

		for i := range batch {
			if err := out.add(batch[i], vectors[i]); err != nil {
				return nil, err
			}
		}
		if tracker != nil {
			tracker.Increment(len(batch), len(batch)-len(missing))
		}
	}
	if tracker != nil {
		tracker.Finish()
	}

	store := out.store()
	b.logger.Info("catalog loaded", "records", store.Size(), "dimension", store.Dimension(), "cache_hits", hits)
	return store, nil
}

// lookup returns cached vectors by batch position. Cache errors are logged
// and treated as misses.
func (b *builder) lookup(ctx context.Context, texts []string, ids *[]core.ID) map[int][]float32 {
	if b.cache == nil {
		return nil
	}
	for _, text := range texts {
		*ids = append(*ids, core.IDFromContent(b.cacheNamespace+"\x00"+text))
	}
	found, err := b.cache.GetVectors(ctx, *ids)
	if err != nil {
		b.logger.Warn("vector cache lookup failed", "err", err)
		return nil
	}
	byPosition := make(map[int][]float32, len(found))
	for i, id := range *ids {
		if v, ok := found[id]; ok {
			byPosition[i] = v
		}
	}
	return byPosition
}

func (b *builder) embedMissing(ctx context.Context, embedder ai.Embedder, texts []string, missing []int, vectors [][]float32) error {
	inputs := make([]string, len(missing))
	for j, i := range missing {
		inputs[j] = texts[i]
	}

	var embedded [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embedded, err = embedder.EmbedTexts(ctx, inputs)
		return err
	}, b.maxAttempts, b.retryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: failed to generate embeddings after %d attempts: %w", core.ErrModelUnavailable, b.maxAttempts, err)
	}
	if len(embedded) != len(inputs) {
		return fmt.Errorf("%w: embedding count mismatch: expected %d, got %d", core.ErrCatalogLoad, len(inputs), len(embedded))
	}
	for j, i := range missing {
		vectors[i] = embedded[j]
	}
	return nil
}

// store writes freshly embedded vectors to the cache. Failures are logged
// and ignored.
func (b *builder) store(ctx context.Context, ids []core.ID, missing []int, vectors [][]float32) {
	if b.cache == nil {
		return
	}
	fresh := make(map[core.ID][]float32, len(missing))
	for _, i := range missing {
		fresh[ids[i]] = vectors[i]
	}
	if err := b.cache.PutVectors(ctx, fresh); err != nil {
		b.logger.Warn("vector cache store failed", "err", err)
	}
}
