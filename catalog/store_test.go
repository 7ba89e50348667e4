package catalog

import (
	"testing"

	"github.com/poiesic/assessor/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords(names ...string) []core.AssessmentRecord {
	records := make([]core.AssessmentRecord, len(names))
	for i, name := range names {
		records[i] = core.AssessmentRecord{Name: name}
	}
	return records
}

func TestFromVectors(t *testing.T) {
	store, err := FromVectors(sampleRecords("a", "b"), [][]float32{{3, 4}, {0, 2}})
	require.NoError(t, err)

	assert.Equal(t, 2, store.Size())
	assert.Equal(t, 2, store.Dimension())

	v, err := store.EmbeddingAt(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, v[0], 1e-6)
	assert.InDelta(t, 0.8, v[1], 1e-6)

	r, err := store.RecordAt(1)
	require.NoError(t, err)
	assert.Equal(t, "b", r.Name)
	assert.Equal(t, []float32{0, 1}, r.Vector)
}

func TestFromVectors_Errors(t *testing.T) {
	tests := []struct {
		name    string
		records []core.AssessmentRecord
		vectors [][]float32
		extra   error
	}{
		{"empty catalog", nil, nil, nil},
		{"count mismatch", sampleRecords("a"), [][]float32{{1}, {1}}, nil},
		{"empty vector", sampleRecords("a"), [][]float32{{}}, nil},
		{"dimension mismatch", sampleRecords("a", "b"), [][]float32{{1, 0}, {1, 0, 0}}, core.ErrDimensionMismatch},
		{"duplicate name", sampleRecords("a", "a"), [][]float32{{1}, {1}}, nil},
		{"invalid record", sampleRecords(""), [][]float32{{1}}, core.ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromVectors(tt.records, tt.vectors)
			assert.ErrorIs(t, err, core.ErrCatalogLoad)
			if tt.extra != nil {
				assert.ErrorIs(t, err, tt.extra)
			}
		})
	}
}

func TestStore_OutOfRange(t *testing.T) {
	store, err := FromVectors(sampleRecords("a"), [][]float32{{1}})
	require.NoError(t, err)

	for _, i := range []int{-1, 1, 100} {
		_, err := store.RecordAt(i)
		assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
		_, err = store.EmbeddingAt(i)
		assert.ErrorIs(t, err, core.ErrIndexOutOfRange)
	}
}

func TestStore_Batches(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	vectors := make([][]float32, len(names))
	for i := range vectors {
		vectors[i] = []float32{float32(i + 1)}
	}
	store, err := FromVectors(sampleRecords(names...), vectors)
	require.NoError(t, err)

	var starts, sizes []int
	for start, batch := range store.Batches(2) {
		starts = append(starts, start)
		sizes = append(sizes, len(batch))
	}
	assert.Equal(t, []int{0, 2, 4}, starts)
	assert.Equal(t, []int{2, 2, 1}, sizes)

	var whole int
	for _, batch := range store.Batches(0) {
		whole += len(batch)
	}
	assert.Equal(t, 5, whole)

	var first int
	for start := range store.Batches(1) {
		first = start
		break
	}
	assert.Equal(t, 0, first)
}

func TestStore_RecordsIsCopy(t *testing.T) {
	store, err := FromVectors(sampleRecords("a", "b"), [][]float32{{1}, {1}})
	require.NoError(t, err)

	records := store.Records()
	records[0].Name = "changed"

	r, _ := store.RecordAt(0)
	assert.Equal(t, "a", r.Name)
}

func TestFromVectors_DoesNotAliasInput(t *testing.T) {
	records := sampleRecords("a")
	records[0].TestTypes = []string{"Cognitive"}
	store, err := FromVectors(records, [][]float32{{1}})
	require.NoError(t, err)

	records[0].TestTypes[0] = "changed"
	r, _ := store.RecordAt(0)
	assert.Equal(t, []string{"Cognitive"}, r.TestTypes)
}

func TestStore_Digest(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}}
	build := func(records []core.AssessmentRecord) string {
		store, err := FromVectors(records, vectors)
		require.NoError(t, err)
		return store.Digest()
	}

	base := build(sampleRecords("a", "b"))
	assert.NotEmpty(t, base)
	assert.Equal(t, base, build(sampleRecords("a", "b")))

	changedURL := sampleRecords("a", "b")
	changedURL[1].URL = "/view/b/"
	assert.NotEqual(t, base, build(changedURL))
	assert.NotEqual(t, base, build(sampleRecords("b", "a")))

	// Embeddings do not contribute.
	store, err := FromVectors(sampleRecords("a", "b"), [][]float32{{0, 1}, {1, 0}})
	require.NoError(t, err)
	assert.Equal(t, base, store.Digest())
}
