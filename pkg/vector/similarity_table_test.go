package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarityTable(t *testing.T) {
	tests := []struct {
		name string
		a    []float32
		b    []float32
		want float64
	}{
		{
			name: "identical unit vectors",
			a:    []float32{1, 0, 0},
			b:    []float32{1, 0, 0},
			want: 1.0,
		},
		{
			name: "scaled copies still score 1.0",
			a:    []float32{1, 2, 3},
			b:    []float32{2, 4, 6},
			want: 1.0,
		},
		{
			name: "orthogonal",
			a:    []float32{1, 0},
			b:    []float32{0, 1},
			want: 0.0,
		},
		{
			name: "opposite",
			a:    []float32{2, -1},
			b:    []float32{-2, 1},
			want: -1.0,
		},
		{
			name: "zero vector sentinel",
			a:    []float32{0, 0},
			b:    []float32{3, 4},
			want: 0.0,
		},
		{
			name: "dimension mismatch sentinel",
			a:    []float32{1, 2, 3},
			b:    []float32{1, 2},
			want: 0.0,
		},
		{
			name: "both empty",
			a:    []float32{},
			b:    []float32{},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
