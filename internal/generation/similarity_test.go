package generation

import (
	"testing"

	"github.com/jonathan/cover-letter-studio/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 2}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestRank_OrdersAndLimits(t *testing.T) {
	docs := []store.Document{
		{ID: "far", Embedding: []float32{0, 1}},
		{ID: "near", Embedding: []float32{1, 0.1}},
		{ID: "mid", Embedding: []float32{1, 1}},
	}

	got := rank([]float32{1, 0}, docs, 2)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "near", got[0].Document.ID)
		assert.Equal(t, "mid", got[1].Document.ID)
	}
}

func TestAverageScore(t *testing.T) {
	assert.Equal(t, 0.0, averageScore(nil))
	assert.InDelta(t, 0.5, averageScore([]Match{{Score: 0.25}, {Score: 0.75}}), 1e-9)
}
