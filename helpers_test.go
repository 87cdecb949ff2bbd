package kquant

import (
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// checker is the 2×2 black/white image used by the k=1 and k=2 scenarios.
func checker() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{0, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{255, 255, 255, 255})
	img.SetRGBA(0, 1, color.RGBA{0, 0, 0, 255})
	img.SetRGBA(1, 1, color.RGBA{255, 255, 255, 255})
	return img
}

func noise(w, h int, seed uint64) *image.RGBA {
	rng := rand.New(rand.NewPCG(seed, seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(rng.IntN(256))
		img.Pix[i+1] = uint8(rng.IntN(256))
		img.Pix[i+2] = uint8(rng.IntN(256))
		img.Pix[i+3] = 255
	}
	return img
}

// tight returns options that only stop once centroids stop moving.
func tight(k int) Options {
	opt := DefaultOptions(k)
	opt.Epsilon = 1e-12
	opt.Seed = 42
	return opt
}

func requireInvariantPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.True(t, errors.Is(err, ErrInvariant), "got %v", err)
	}()
	fn()
}

func squaredError(a, b Grid) float64 {
	var sum float64
	for i := range a.Pix {
		d := float64(a.Pix[i]) - float64(b.Pix[i])
		sum += d * d
	}
	return sum
}

// assertGroupMeans checks that every non-empty group's centroid is the mean
// of the samples labelled with it.
func assertGroupMeans(t *testing.T, samples *mat.Dense, res Result) {
	t.Helper()
	k := res.K()
	sums := make([][3]float64, k)
	counts := make([]int, k)
	for i, l := range res.Labels {
		row := samples.RawRowView(i)
		for c := range 3 {
			sums[l][c] += row[c]
		}
		counts[l]++
	}
	for j := range k {
		if counts[j] == 0 {
			continue
		}
		got := res.Centroids.RawRowView(j)
		for c := range 3 {
			assert.InDelta(t, sums[j][c]/float64(counts[j]), got[c], 1e-9, "group %d channel %d", j, c)
		}
	}
}
