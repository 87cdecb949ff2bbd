package kquant

// Composite sums the layers channel by channel. The layers must be disjoint:
// every pixel is non-black in at most one of them, so the sum never exceeds
// 255. A sum that does is treated as a logic defect and panics.
func Composite(layers []Grid) Grid {
	if len(layers) == 0 {
		invariant("no layers to composite")
	}
	w, h := layers[0].W, layers[0].H
	acc := make([]int, w*h*3)
	for i, l := range layers {
		if l.W != w || l.H != h || len(l.Pix) != len(acc) {
			invariant("layer %d is %dx%d, want %dx%d", i, l.W, l.H, w, h)
		}
		for j, v := range l.Pix {
			acc[j] += int(v)
		}
	}
	out := NewGrid(w, h)
	for j, v := range acc {
		if v > 255 {
			invariant("channel sum %d at pixel %d: layers overlap", v, j/3)
		}
		out.Pix[j] = uint8(v)
	}
	return out
}
