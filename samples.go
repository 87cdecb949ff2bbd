package kquant

import "gonum.org/v1/gonum/mat"

// ExtractSamples flattens g into a (W*H)×3 matrix in row-major pixel order,
// with channels scaled from [0,255] to [0,1].
func ExtractSamples(g Grid) *mat.Dense {
	n := g.Len()
	if n == 0 || len(g.Pix) != n*3 {
		invariant("grid %dx%d with %d channel values", g.W, g.H, len(g.Pix))
	}
	data := make([]float64, n*3)
	for i, v := range g.Pix {
		data[i] = float64(v) / 255.0
	}
	return mat.NewDense(n, 3, data)
}
