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

// Package assessor assembles the recommendation engine: embedding provider,
// optional caches, catalog store, retriever and pipeline. An Engine is
// built once at startup and read concurrently afterwards.
package assessor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/poiesic/assessor/ai"
	"github.com/poiesic/assessor/ai/openai"
	"github.com/poiesic/assessor/catalog"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/query"
	"github.com/poiesic/assessor/recommend"
	"github.com/poiesic/assessor/search"
	"github.com/poiesic/assessor/storage"
	"github.com/poiesic/assessor/storage/badger"
)

// probeText is embedded at startup to check the model is reachable.
const probeText = "assessment"

type Engine struct {
	provider    ai.AIProvider
	vectors     storage.VectorCache
	results     storage.ResultCache
	store       *catalog.Store
	retriever   *search.Retriever
	recommender *recommend.Recommender
	cacheScope  string
	logger      *slog.Logger
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	aiConfig        *ai.Config
	provider        ai.AIProvider
	vectorCachePath string
	resultCache     storage.ResultCache
	resultTTL       time.Duration
	batchSize       int
	candidatePool   int
	fetchTimeout    time.Duration
	progress        io.Writer
	logger          *slog.Logger
}

// WithAIConfig sets the embedding service configuration. It is ignored
// when WithProvider is given.
func WithAIConfig(config *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = config
	}
}

// WithProvider uses an existing embedding provider instead of creating
// one from the AI config. The engine takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithVectorCachePath persists catalog embeddings in a BadgerDB directory.
func WithVectorCachePath(path string) Option {
	return func(o *options) {
		o.vectorCachePath = path
	}
}

// WithResultCache caches recommendations. The engine takes ownership and
// closes the cache.
func WithResultCache(cache storage.ResultCache, ttl time.Duration) Option {
	return func(o *options) {
		o.resultCache = cache
		o.resultTTL = ttl
	}
}

// WithBatchSize sets the batch size for catalog embedding and scoring.
func WithBatchSize(size int) Option {
	return func(o *options) {
		o.batchSize = size
	}
}

// WithCandidatePool sets how many candidates are retrieved before filtering.
func WithCandidatePool(k int) Option {
	return func(o *options) {
		o.candidatePool = k
	}
}

// WithFetchTimeout bounds URL enrichment requests.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		o.fetchTimeout = d
	}
}

// WithProgress reports catalog embedding progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *options) {
		o.progress = w
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open loads the catalog at catalogPath and builds the engine. Embedding
// provider failures wrap core.ErrModelUnavailable; catalog failures wrap
// core.ErrCatalogLoad.
func Open(ctx context.Context, catalogPath string, opts ...Option) (*Engine, error) {
	o := &options{
		aiConfig:      ai.DefaultConfig(),
		batchSize:     catalog.DefaultBatchSize,
		candidatePool: recommend.DefaultCandidatePool,
		fetchTimeout:  query.DefaultFetchTimeout,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	e := &Engine{
		results: o.resultCache,
		logger:  o.logger.With("component", "engine"),
	}

	provider := o.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(o.aiConfig)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("%w: %w", core.ErrModelUnavailable, err)
		}
	}
	e.provider = provider
	embedder := provider.Embedder()
	namespace := cacheNamespace(provider)

	err := catalog.RetryWithBackoff(ctx, func() error {
		_, err := embedder.EmbedText(ctx, probeText)
		return err
	}, 3, 500*time.Millisecond)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("%w: probing %s: %w", core.ErrModelUnavailable, provider.Model(), err)
	}

	buildOpts := []catalog.Option{
		catalog.WithBatchSize(o.batchSize),
		catalog.WithLogger(o.logger),
	}
	if o.progress != nil {
		buildOpts = append(buildOpts, catalog.WithProgress(o.progress))
	}
	if o.vectorCachePath != "" {
		e.vectors, err = badger.NewVectorCache(o.vectorCachePath)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("opening vector cache: %w", err)
		}
		buildOpts = append(buildOpts, catalog.WithVectorCache(e.vectors, namespace))
	}

	e.store, err = catalog.Load(ctx, catalogPath, embedder, buildOpts...)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.retriever, err = search.NewRetriever(e.store, embedder,
		search.WithBatchSize(o.batchSize),
		search.WithLogger(o.logger),
	)
	if err != nil {
		e.Close()
		return nil, err
	}

	fetcher := query.NewFetcher(
		query.WithTimeout(o.fetchTimeout),
		query.WithFetchLogger(o.logger),
	)
	e.cacheScope = namespace + "/" + e.store.Digest()
	recOpts := []recommend.Option{
		recommend.WithCandidatePool(o.candidatePool),
		recommend.WithLogger(o.logger),
	}
	if o.resultCache != nil {
		recOpts = append(recOpts,
			recommend.WithResultCache(o.resultCache, o.resultTTL),
			recommend.WithCacheScope(e.cacheScope),
		)
	}
	e.recommender, err = recommend.NewRecommender(e.retriever, query.NewExtractor(), fetcher, recOpts...)
	if err != nil {
		e.Close()
		return nil, err
	}

	e.logger.Info("engine ready", "records", e.store.Size(), "dimension", e.store.Dimension(), "model", provider.Model())
	return e, nil
}

// cacheNamespace identifies the embedding space cached vectors belong to.
func cacheNamespace(provider ai.AIProvider) string {
	return provider.Model() + "/" + strconv.Itoa(provider.MaxInputWords())
}

// Catalog returns the loaded catalog.
func (e *Engine) Catalog() *catalog.Store {
	return e.store
}

// Recommender returns the shared pipeline.
func (e *Engine) Recommender() *recommend.Recommender {
	return e.recommender
}

// Model returns the embedding model name.
func (e *Engine) Model() string {
	return e.provider.Model()
}

// Close releases the worker pool, caches and provider.
func (e *Engine) Close() error {
	var errs []error
	if e.retriever != nil {
		e.retriever.Release()
	}
	if e.results != nil {
		if err := e.results.Close(); err != nil {
			e.logger.Error("error closing result cache", "err", err)
			errs = append(errs, err)
		}
	}
	if e.vectors != nil {
		if err := e.vectors.Close(); err != nil {
			e.logger.Error("error closing vector cache", "err", err)
			errs = append(errs, err)
		}
	}
	if e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
