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


package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/filter"
	"github.com/poiesic/assessor/query"
	"github.com/poiesic/assessor/storage"
)

const (
	// DefaultLimit is the result cap used when a caller passes limit <= 0.
	DefaultLimit = 10
	// DefaultCandidatePool is how many candidates are retrieved before filtering.
	DefaultCandidatePool = 10
	// DefaultCacheTTL is how long cached recommendations live.
	DefaultCacheTTL = 15 * time.Minute
)

// Retriever returns the k catalog records most similar to a search string.
// *search.Retriever satisfies it.
type Retriever interface {
	Retrieve(ctx context.Context, searchText string, k int) ([]core.RankedResult, error)
}

// PageFetcher returns the visible text of a web page.
// *query.Fetcher satisfies it.
type PageFetcher interface {
	FetchPageText(ctx context.Context, url string) (string, error)
}

// Recommendation is the outcome of one pipeline run.
type Recommendation struct {
	Query       string                `json:"query"`
	SearchText  string                `json:"search_text"`
	Constraints core.QueryConstraints `json:"constraints"`
	Results     []core.RankedResult   `json:"results"`
	FellBack    bool                  `json:"fell_back"`
	Enriched    bool                  `json:"enriched"`
}

// Recommender is the shared recommendation pipeline.
type Recommender struct {
	retriever     Retriever
	extractor     *query.Extractor
	fetcher       PageFetcher
	filter        *filter.Filter
	cache         storage.ResultCache
	cacheTTL      time.Duration
	cacheScope    string
	candidatePool int
	logger        *slog.Logger
}

// Option configures a Recommender.
type Option func(*Recommender) error

// WithCandidatePool sets how many candidates are retrieved before filtering.
// Default is 10.
func WithCandidatePool(k int) Option {
	return func(r *Recommender) error {
		if k < 1 {
			return ErrInvalidPool
		}
		r.candidatePool = k
		return nil
	}
}

// WithResultCache caches recommendations for queries without URLs.
// A non-positive ttl uses DefaultCacheTTL.
func WithResultCache(cache storage.ResultCache, ttl time.Duration) Option {
	return func(r *Recommender) error {
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		r.cache = cache
		r.cacheTTL = ttl
		return nil
	}
}

// WithCacheScope prefixes result cache keys with scope. Recommenders over
// different catalogs or embedding models sharing one cache must use
// different scopes.
func WithCacheScope(scope string) Option {
	return func(r *Recommender) error {
		r.cacheScope = scope
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recommender) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRecommender assembles the pipeline. A nil extractor uses the default
// vocabulary; a nil fetcher disables URL enrichment.
func NewRecommender(retriever Retriever, extractor *query.Extractor, fetcher PageFetcher, opts ...Option) (*Recommender, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if extractor == nil {
		extractor = query.NewExtractor()
	}

	r := &Recommender{
		retriever:     retriever,
		extractor:     extractor,
		fetcher:       fetcher,
		candidatePool: DefaultCandidatePool,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.filter = filter.New(filter.WithLogger(r.logger))
	r.logger = r.logger.With("component", "recommender")
	return r, nil
}

// CandidatePool returns the number of candidates retrieved per request.
func (r *Recommender) CandidatePool() int {
	return r.candidatePool
}

// Recommend returns up to limit catalog records for q, best first.
// See RecommendWithMonitor.
func (r *Recommender) Recommend(ctx context.Context, q string, limit int) (*Recommendation, error) {
	return r.RecommendWithMonitor(ctx, q, limit, nil)
}

// RecommendWithMonitor runs the pipeline and reports each stage to monitor.
//
// An empty query fails with core.ErrEmptyQuery; limit <= 0 uses
// DefaultLimit. Enrichment failures are logged and ignored. An empty
// result means nothing matched and is not an error. Panics and unexpected
// failures are returned as core.ErrUnexpectedPipeline.
func (r *Recommender) RecommendWithMonitor(ctx context.Context, q string, limit int, monitor Monitor) (rec *Recommendation, err error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, core.ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("recommendation pipeline panicked", "panic", p)
			rec, err = nil, core.ErrUnexpectedPipeline
		}
	}()

	monitor.Start(q)

	url := query.ExtractURL(q)
	cacheable := r.cache != nil && url == ""
	key := r.cacheKey(q, limit)
	if cacheable {
		if cached, ok := r.cached(ctx, key); ok {
			monitor.Finish(cached)
			return cached, nil
		}
	}

	text, enriched := r.enrich(ctx, q, url)
	features := r.extractor.Extract(text)
	searchText := features.SearchString
	if searchText == "" {
		searchText = text
	}
	monitor.AfterFeatures(features, enriched)

	candidates, err := r.retriever.Retrieve(ctx, searchText, r.candidatePool)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Error("retrieval failed", "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrUnexpectedPipeline, err)
	}
	monitor.AfterRetrieval(candidates)

	outcome := r.filter.Apply(candidates, features.Constraints)
	monitor.AfterFilter(outcome)

	rec = &Recommendation{
		Query:       q,
		SearchText:  searchText,
		Constraints: features.Constraints,
		Results:     filter.Truncate(outcome.Results, limit),
		FellBack:    outcome.FellBack,
		Enriched:    enriched,
	}
	r.logger.Debug("recommendation complete",
		"candidates", len(candidates),
		"results", len(rec.Results),
		"fell_back", rec.FellBack,
	)

	if cacheable {
		r.store(ctx, key, rec)
	}
	monitor.Finish(rec)
	return rec, nil
}

// enrich appends the text of the page linked from q, if any.
func (r *Recommender) enrich(ctx context.Context, q, url string) (string, bool) {
	if url == "" || r.fetcher == nil {
		return q, false
	}
	page, err := r.fetcher.FetchPageText(ctx, url)
	if err != nil {
		r.logger.Warn("url enrichment failed, continuing with query text", "url", url, "err", err)
		return q, false
	}
	if page == "" {
		return q, false
	}
	return q + " " + page, true
}

func (r *Recommender) cacheKey(q string, limit int) string {
	return r.cacheScope + ":" + strconv.Itoa(limit) + ":" + strconv.Itoa(r.candidatePool) + ":" + q
}

func (r *Recommender) cached(ctx context.Context, key string) (*Recommendation, bool) {
	data, ok, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("result cache read failed", "err", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var rec Recommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		r.logger.Warn("discarding unreadable cached recommendation", "err", err)
		return nil, false
	}
	return &rec, true
}

func (r *Recommender) store(ctx context.Context, key string, rec *Recommendation) {
	data, err := json.Marshal(rec)
	if err != nil {
		r.logger.Warn("encoding recommendation for cache", "err", err)
		return
	}
	if err := r.cache.Set(ctx, key, data, r.cacheTTL); err != nil && !errors.Is(err, context.Canceled) {
		r.logger.Warn("result cache write failed", "err", err)
	}
}
