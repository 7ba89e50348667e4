package mock

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()

	a, err := m.EmbedText(ctx, "java developer")
	require.NoError(t, err)
	b, err := m.EmbedText(ctx, "java developer")
	require.NoError(t, err)
	c, err := m.EmbedText(ctx, "personality test")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, DefaultDimension)
	assert.Equal(t, 3, m.CallCount())
}

func TestMockEmbedder_UnitLength(t *testing.T) {
	v := DeterministicVector("anything", 16)
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestMockEmbedder_BatchMatchesSingle(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()
	m.Dimension = 8

	batch, err := m.EmbedTexts(ctx, []string{"x", "y"})
	require.NoError(t, err)
	single, err := m.EmbedText(ctx, "y")
	require.NoError(t, err)

	assert.Equal(t, single, batch[1])
	assert.Equal(t, 3, m.TextCount())
}

func TestMockEmbedder_InjectedFuncs(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()
	boom := errors.New("boom")
	m.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) { return nil, boom }

	_, err := m.EmbedTexts(ctx, []string{"x"})
	assert.ErrorIs(t, err, boom)

	m.Reset()
	assert.Equal(t, 0, m.CallCount())
	_, err = m.EmbedTexts(ctx, []string{"x"})
	assert.NoError(t, err)
}

func TestMockEmbedder_ConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	m := NewMockEmbedder()
	m.Dimension = 4

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.EmbedText(ctx, "q")
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, m.CallCount())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProviderWithEmbedder(NewMockEmbedder())
	assert.Equal(t, "mock-embedding", p.Model())
	assert.Same(t, p.GetMockEmbedder(), p.Embedder())
	assert.Zero(t, p.MaxInputWords())
	assert.False(t, p.Closed())
	require.NoError(t, p.Close())
	assert.True(t, p.Closed())
}

func TestMockProvider_MaxInputWords(t *testing.T) {
	var seen []string
	m := NewMockEmbedder()
	m.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		seen = append(seen, text)
		return []float32{1}, nil
	}
	p := NewMockProviderWithEmbedder(m).WithMaxInputWords(2)
	assert.Equal(t, 2, p.MaxInputWords())

	_, err := p.Embedder().EmbedText(context.Background(), "one two three")
	require.NoError(t, err)
	assert.Equal(t, []string{"one two"}, seen)
}
