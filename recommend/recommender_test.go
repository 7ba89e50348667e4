package recommend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/assessor/ai/mock"
	"github.com/poiesic/assessor/catalog"
	"github.com/poiesic/assessor/core"
	"github.com/poiesic/assessor/search"
	"github.com/poiesic/assessor/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetriever struct {
	mu      sync.Mutex
	fn      func(text string, k int) ([]core.RankedResult, error)
	queries []string
	ks      []int
}

func (f *fakeRetriever) Retrieve(_ context.Context, text string, k int) ([]core.RankedResult, error) {
	f.mu.Lock()
	f.queries = append(f.queries, text)
	f.ks = append(f.ks, k)
	f.mu.Unlock()
	return f.fn(text, k)
}

func (f *fakeRetriever) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeFetcher struct {
	text string
	err  error
	urls []string
}

func (f *fakeFetcher) FetchPageText(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.text, f.err
}

func ranked(results ...core.RankedResult) func(string, int) ([]core.RankedResult, error) {
	return func(string, int) ([]core.RankedResult, error) { return results, nil }
}

func rec(name string, duration int, remote bool, score float32) core.RankedResult {
	return core.RankedResult{
		Record: core.AssessmentRecord{Name: name, DurationMinutes: core.IntPtr(duration), RemoteSupported: remote},
		Score:  score,
	}
}

// scenario returns [B, A, C] in similarity order.
func scenario() []core.RankedResult {
	return []core.RankedResult{
		rec("B", 45, false, 0.9),
		rec("A", 20, true, 0.8),
		rec("C", 15, true, 0.7),
	}
}

func resultNames(r *Recommendation) []string {
	out := make([]string, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Record.Name
	}
	return out
}

func newTestRecommender(t *testing.T, retriever Retriever, fetcher PageFetcher, opts ...Option) *Recommender {
	t.Helper()
	r, err := NewRecommender(retriever, nil, fetcher, opts...)
	require.NoError(t, err)
	return r
}

func TestNewRecommender(t *testing.T) {
	_, err := NewRecommender(nil, nil, nil)
	assert.ErrorIs(t, err, ErrRetrieverRequired)

	_, err = NewRecommender(&fakeRetriever{}, nil, nil, WithCandidatePool(0))
	assert.ErrorIs(t, err, ErrInvalidPool)

	r, err := NewRecommender(&fakeRetriever{}, nil, nil, WithCandidatePool(25), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, 25, r.CandidatePool())
}

func TestRecommend_EmptyQuery(t *testing.T) {
	retriever := &fakeRetriever{fn: ranked(scenario()...)}
	r := newTestRecommender(t, retriever, nil)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := r.Recommend(context.Background(), q, 5)
		assert.ErrorIs(t, err, core.ErrEmptyQuery)
	}
	assert.Zero(t, retriever.calls())
}

func TestRecommend_RemoteUnderThirty(t *testing.T) {
	retriever := &fakeRetriever{fn: ranked(scenario()...)}
	r := newTestRecommender(t, retriever, nil)

	got, err := r.Recommend(context.Background(), "remote test under 30 minutes", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "C"}, resultNames(got))
	assert.False(t, got.FellBack)
	require.NotNil(t, got.Constraints.MaxDurationMinutes)
	assert.Equal(t, 30, *got.Constraints.MaxDurationMinutes)
	assert.True(t, got.Constraints.RequireRemote)
	assert.Equal(t, "30 minutes remote testing", got.SearchText)
	assert.Equal(t, []int{DefaultCandidatePool}, retriever.ks)
}

func TestRecommend_FallsBackToBest(t *testing.T) {
	r := newTestRecommender(t, &fakeRetriever{fn: ranked(scenario()...)}, nil)

	got, err := r.Recommend(context.Background(), "remote test under 10 minutes", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, resultNames(got))
	assert.True(t, got.FellBack)
}

func TestRecommend_NoConstraintsMatchesRetrieval(t *testing.T) {
	candidates := make([]core.RankedResult, 12)
	for i := range candidates {
		candidates[i] = rec(fmt.Sprintf("R%02d", i), 60, false, 1-float32(i)/100)
	}
	r := newTestRecommender(t, &fakeRetriever{fn: ranked(candidates...)}, nil)

	got, err := r.Recommend(context.Background(), "java developer", 4)
	require.NoError(t, err)
	assert.Equal(t, candidates[:4], got.Results)

	got, err = r.Recommend(context.Background(), "java developer", 0)
	require.NoError(t, err)
	assert.Len(t, got.Results, DefaultLimit)
}

func TestRecommend_SearchTextFallsBackToQuery(t *testing.T) {
	retriever := &fakeRetriever{fn: ranked()}
	r := newTestRecommender(t, retriever, nil)

	got, err := r.Recommend(context.Background(), "  Someone to lead our sales floor  ", 5)
	require.NoError(t, err)

	assert.Empty(t, got.Results)
	assert.Equal(t, "Someone to lead our sales floor", got.SearchText)
	assert.Equal(t, []string{"Someone to lead our sales floor"}, retriever.queries)
}

func TestRecommend_URLEnrichment(t *testing.T) {
	t.Run("page text feeds features", func(t *testing.T) {
		retriever := &fakeRetriever{fn: ranked(scenario()...)}
		fetcher := &fakeFetcher{text: "We need Java and SQL. Remote only."}
		r := newTestRecommender(t, retriever, fetcher)

		got, err := r.Recommend(context.Background(), "see https://jobs.example.com/123, thanks", 10)
		require.NoError(t, err)

		assert.Equal(t, []string{"https://jobs.example.com/123"}, fetcher.urls)
		assert.True(t, got.Enriched)
		assert.Equal(t, "java sql remote testing", got.SearchText)
		assert.True(t, got.Constraints.RequireRemote)
	})

	t.Run("fetch failure is not fatal", func(t *testing.T) {
		retriever := &fakeRetriever{fn: ranked(scenario()...)}
		fetcher := &fakeFetcher{err: fmt.Errorf("%w: timeout", core.ErrEnrichmentFetch)}
		r := newTestRecommender(t, retriever, fetcher)

		got, err := r.Recommend(context.Background(), "python role https://jobs.example.com/9", 10)
		require.NoError(t, err)

		assert.False(t, got.Enriched)
		assert.Equal(t, "python", got.SearchText)
		assert.Len(t, got.Results, 3)
	})

	t.Run("nil fetcher skips enrichment", func(t *testing.T) {
		r := newTestRecommender(t, &fakeRetriever{fn: ranked()}, nil)

		got, err := r.Recommend(context.Background(), "https://jobs.example.com/1", 10)
		require.NoError(t, err)
		assert.False(t, got.Enriched)
	})
}

func TestRecommend_RetrievalError(t *testing.T) {
	boom := errors.New("embedding endpoint down")
	r := newTestRecommender(t, &fakeRetriever{fn: func(string, int) ([]core.RankedResult, error) {
		return nil, boom
	}}, nil)

	_, err := r.Recommend(context.Background(), "python", 5)
	assert.ErrorIs(t, err, core.ErrUnexpectedPipeline)
	assert.ErrorIs(t, err, boom)
}

func TestRecommend_ContextCanceled(t *testing.T) {
	r := newTestRecommender(t, &fakeRetriever{fn: func(string, int) ([]core.RankedResult, error) {
		return nil, context.Canceled
	}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Recommend(ctx, "python", 5)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, core.ErrUnexpectedPipeline)
}

func TestRecommend_PanicIsContained(t *testing.T) {
	r := newTestRecommender(t, &fakeRetriever{fn: func(string, int) ([]core.RankedResult, error) {
		panic("index out of range")
	}}, nil)

	got, err := r.Recommend(context.Background(), "python", 5)
	assert.Nil(t, got)
	assert.Equal(t, core.ErrUnexpectedPipeline, err)
}

func TestRecommend_ResultCache(t *testing.T) {
	retriever := &fakeRetriever{fn: ranked(scenario()...)}
	cache := storage.NewMemoryResultCache()
	r := newTestRecommender(t, retriever, &fakeFetcher{text: "java"}, WithResultCache(cache, 0))
	ctx := context.Background()

	first, err := r.Recommend(ctx, "remote test under 30 minutes", 10)
	require.NoError(t, err)
	second, err := r.Recommend(ctx, "remote test under 30 minutes", 10)
	require.NoError(t, err)

	assert.Equal(t, 1, retriever.calls())
	assert.Equal(t, resultNames(first), resultNames(second))
	assert.Equal(t, first.Constraints, second.Constraints)
	assert.Equal(t, first.SearchText, second.SearchText)

	// A different limit is a different answer.
	_, err = r.Recommend(ctx, "remote test under 30 minutes", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, retriever.calls())

	// Queries with URLs depend on the page and are never cached.
	for range 2 {
		_, err = r.Recommend(ctx, "https://jobs.example.com/1", 10)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, retriever.calls())
}

func TestRecommend_ResultCacheScoped(t *testing.T) {
	cache := storage.NewMemoryResultCache()
	ctx := context.Background()

	before := &fakeRetriever{fn: ranked(scenario()...)}
	r := newTestRecommender(t, before, nil, WithResultCache(cache, 0), WithCacheScope("model/256/aaaa"))
	_, err := r.Recommend(ctx, "python", 10)
	require.NoError(t, err)

	// Same cache after a catalog change: nothing is served from the old scope.
	after := &fakeRetriever{fn: ranked(scenario()[:1]...)}
	r = newTestRecommender(t, after, nil, WithResultCache(cache, 0), WithCacheScope("model/256/bbbb"))
	got, err := r.Recommend(ctx, "python", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, after.calls())
	assert.Len(t, got.Results, 1)
}

type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (failingCache) Close() error { return nil }

func TestRecommend_CacheFailuresIgnored(t *testing.T) {
	r := newTestRecommender(t, &fakeRetriever{fn: ranked(scenario()...)}, nil, WithResultCache(failingCache{}, time.Minute))

	got, err := r.Recommend(context.Background(), "python", 10)
	require.NoError(t, err)
	assert.Len(t, got.Results, 3)
}

func TestRecommend_TextMonitor(t *testing.T) {
	var buf bytes.Buffer
	r := newTestRecommender(t, &fakeRetriever{fn: ranked(scenario()...)}, nil)

	_, err := r.RecommendWithMonitor(context.Background(), "remote test under 10 minutes", 10, NewTextMonitor(&buf))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `query: "remote test under 10 minutes"`)
	assert.Contains(t, out, "constraints: max duration 10 min, remote true, adaptive false")
	assert.Contains(t, out, "retrieved 3 candidates")
	assert.Contains(t, out, "filter max_duration: 3 -> 0 (dropped 3)")
	assert.Contains(t, out, "kept the best match")
	assert.Contains(t, out, "returning 1 results")
}

func TestRecommend_DeterministicEndToEnd(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 32
	names := []string{"Java Coding Test", "Python Programming", "SQL Server", "Verbal Reasoning", "OPQ Personality"}
	records := make([]core.AssessmentRecord, len(names))
	vectors := make([][]float32, len(names))
	for i, name := range names {
		records[i] = core.AssessmentRecord{Name: name, DurationMinutes: core.IntPtr(10 * (i + 1)), RemoteSupported: i%2 == 0}
		vectors[i] = mock.DeterministicVector(records[i].CompositeText(), embedder.Dimension)
	}
	store, err := catalog.FromVectors(records, vectors)
	require.NoError(t, err)
	retriever, err := search.NewRetriever(store, embedder, search.WithBatchSize(2))
	require.NoError(t, err)
	defer retriever.Release()

	r := newTestRecommender(t, retriever, nil)
	ctx := context.Background()

	first, err := r.Recommend(ctx, "java coding test under 40 minutes", 3)
	require.NoError(t, err)
	second, err := r.Recommend(ctx, "java coding test under 40 minutes", 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.LessOrEqual(t, len(first.Results), 3)
	for i := 1; i < len(first.Results); i++ {
		assert.GreaterOrEqual(t, first.Results[i-1].Score, first.Results[i].Score)
	}
	for _, res := range first.Results {
		assert.LessOrEqual(t, *res.Record.DurationMinutes, 40)
		assert.True(t, strings.TrimSpace(res.Record.Name) != "")
	}
}
