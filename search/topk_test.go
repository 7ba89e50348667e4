package search

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopK_KeepsBest(t *testing.T) {
	top := newTopK(3)
	for i, s := range []float32{0.1, 0.9, 0.5, 0.7, 0.3} {
		top.offer(candidate{index: i, score: s})
	}

	got := top.ranked()
	assert.Equal(t, []candidate{{1, 0.9}, {3, 0.7}, {2, 0.5}}, got)
}

func TestTopK_TiesPreferLowerIndex(t *testing.T) {
	top := newTopK(2)
	for _, i := range []int{4, 2, 7, 0, 5} {
		top.offer(candidate{index: i, score: 0.5})
	}

	assert.Equal(t, []candidate{{0, 0.5}, {2, 0.5}}, top.ranked())
}

func TestTopK_Zero(t *testing.T) {
	top := newTopK(0)
	top.offer(candidate{index: 0, score: 1})
	assert.Empty(t, top.ranked())
}

func TestTopK_MergeMatchesSingleFold(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	all := make([]candidate, 200)
	for i := range all {
		// Coarse scores force many ties.
		all[i] = candidate{index: i, score: float32(rng.Intn(20)) / 20}
	}

	single := newTopK(15)
	for _, c := range all {
		single.offer(c)
	}

	merged := newTopK(15)
	for start := 0; start < len(all); start += 32 {
		part := newTopK(15)
		for _, c := range all[start:min(start+32, len(all))] {
			part.offer(c)
		}
		merged.merge(part)
	}

	assert.Equal(t, single.ranked(), merged.ranked())

	sorted := slices.Clone(all)
	slices.SortStableFunc(sorted, func(a, b candidate) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})
	assert.Equal(t, sorted[:15], single.ranked())
}
