package kquant

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"
)

// Palette converts centroids to 8-bit colors. Channels are clamped to [0,1]
// and rounded half up.
func Palette(centroids *mat.Dense) []color.RGBA {
	k, _ := centroids.Dims()
	out := make([]color.RGBA, k)
	for j := range k {
		row := centroids.RawRowView(j)
		r, g, b := colorful.Color{R: row[0], G: row[1], B: row[2]}.Clamped().RGB255()
		out[j] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return out
}

// ClusterImages builds one grid per centroid. A pixel carries its centroid's
// color in the grid of its own group and stays black in every other grid.
func ClusterImages(g Grid, labels []int, centroids *mat.Dense) []Grid {
	palette := Palette(centroids)
	checkLabels(g, labels, len(palette))
	layers := make([]Grid, len(palette))
	for i := range layers {
		layers[i] = NewGrid(g.W, g.H)
	}
	for y := range g.H {
		for x := range g.W {
			l := labels[labelOffset(g.W, x, y)]
			c := palette[l]
			layers[l].Set(x, y, [3]uint8{c.R, c.G, c.B})
		}
	}
	return layers
}

// Render writes every pixel's centroid color straight into a single grid.
// It equals Composite(ClusterImages(g, labels, centroids)).
func Render(g Grid, labels []int, centroids *mat.Dense) Grid {
	palette := Palette(centroids)
	checkLabels(g, labels, len(palette))
	out := NewGrid(g.W, g.H)
	for i, l := range labels {
		c := palette[l]
		out.Pix[i*3] = c.R
		out.Pix[i*3+1] = c.G
		out.Pix[i*3+2] = c.B
	}
	return out
}

// Counts returns the number of pixels per group.
func Counts(labels []int, k int) []int {
	counts := make([]int, k)
	for i, l := range labels {
		if l < 0 || l >= k {
			invariant("label %d at %d outside [0,%d)", l, i, k)
		}
		counts[l]++
	}
	return counts
}

func checkLabels(g Grid, labels []int, k int) {
	if len(labels) != g.Len() {
		invariant("%d labels for %dx%d grid", len(labels), g.W, g.H)
	}
	for i, l := range labels {
		if l < 0 || l >= k {
			invariant("label %d at %d outside [0,%d)", l, i, k)
		}
	}
}
