package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecallAtK(t *testing.T) {
	tests := []struct {
		name        string
		relevant    []string
		recommended []string
		k           int
		want        float64
	}{
		{"no relevant items", nil, []string{"A"}, 3, 0},
		{"all found", []string{"A", "B"}, []string{"B", "A", "C"}, 3, 1},
		{"half found", []string{"A", "B"}, []string{"A", "C", "D"}, 3, 0.5},
		{"hit beyond k ignored", []string{"A"}, []string{"B", "C", "D", "A"}, 3, 0},
		{"short list", []string{"A", "B", "C", "D"}, []string{"A"}, 3, 0.25},
		{"zero k", []string{"A"}, []string{"A"}, 0, 0},
		{"nothing recommended", []string{"A"}, nil, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RecallAtK(tt.relevant, tt.recommended, tt.k), 1e-9)
		})
	}
}

func TestMAPAtK(t *testing.T) {
	tests := []struct {
		name        string
		relevant    []string
		recommended []string
		k           int
		want        float64
	}{
		{"no relevant items", nil, []string{"A"}, 3, 0},
		{"no hits", []string{"A"}, []string{"B", "C"}, 3, 0},
		{"first position", []string{"A"}, []string{"A", "B", "C"}, 3, 1},
		{"second position", []string{"A"}, []string{"B", "A", "C"}, 3, 0.5},
		// hits at 1 and 3: (1/1 + 2/3) / 2
		{"two of two", []string{"A", "C"}, []string{"A", "B", "C"}, 3, (1.0 + 2.0/3.0) / 2},
		// one hit at 2 out of three relevant: (1/2) / 3
		{"divides by relevant count", []string{"X", "Y", "Z"}, []string{"A", "Y", "B"}, 3, 0.5 / 3},
		{"hit beyond k ignored", []string{"D"}, []string{"A", "B", "C", "D"}, 3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MAPAtK(tt.relevant, tt.recommended, tt.k), 1e-9)
		})
	}
}
