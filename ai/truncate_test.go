package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"shorter than max", "java developer", 5, "java developer"},
		{"exact max", "a b c", 3, "a b c"},
		{"longer than max", "a b  c\td e", 3, "a b c"},
		{"zero disables", "a b c", 0, "a b c"},
		{"empty", "", 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateWords(tt.text, tt.max))
		})
	}
}

type recordingEmbedder struct {
	seen []string
}

func (r *recordingEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	r.seen = append(r.seen, text)
	return []float32{1}, nil
}

func (r *recordingEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	r.seen = append(r.seen, texts...)
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1}
	}
	return out, nil
}

func TestTruncating_SameCutForQueriesAndBatches(t *testing.T) {
	ctx := context.Background()
	inner := &recordingEmbedder{}
	e := Truncating(inner, 2)

	long := strings.Repeat("word ", 10)
	_, err := e.EmbedText(ctx, long)
	require.NoError(t, err)
	_, err = e.EmbedTexts(ctx, []string{long, "one"})
	require.NoError(t, err)

	assert.Equal(t, []string{"word word", "word word", "one"}, inner.seen)
}

func TestTruncating_DisabledReturnsInner(t *testing.T) {
	inner := &recordingEmbedder{}
	assert.Same(t, inner, Truncating(inner, 0))
}
