package kquant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSamples(t *testing.T) {
	g := NewGrid(2, 1)
	g.Set(0, 0, [3]uint8{255, 0, 51})
	g.Set(1, 0, [3]uint8{0, 255, 102})

	s := ExtractSamples(g)
	r, c := s.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, []float64{1, 0, 0.2}, s.RawRowView(0))
	assert.Equal(t, []float64{0, 1, 0.4}, s.RawRowView(1))
}

func TestExtractSamples_RowMajor(t *testing.T) {
	g := GridFromImage(noise(3, 2, 7))
	s := ExtractSamples(g)
	for y := range g.H {
		for x := range g.W {
			c := g.At(x, y)
			row := s.RawRowView(y*g.W + x)
			assert.InDelta(t, float64(c[0])/255, row[0], 1e-12)
			assert.InDelta(t, float64(c[1])/255, row[1], 1e-12)
			assert.InDelta(t, float64(c[2])/255, row[2], 1e-12)
		}
	}
}

func TestExtractSamples_Empty(t *testing.T) {
	requireInvariantPanic(t, func() { ExtractSamples(NewGrid(0, 0)) })
}
