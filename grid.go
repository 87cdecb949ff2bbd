package kquant

import (
	"image"
	"image/color"
)

// Grid is an 8-bit RGB pixel buffer.
type Grid struct {
	W, H int
	Pix  []uint8 // Interleaved RGB, len = W*H*3
}

// NewGrid allocates a zeroed (black) grid.
func NewGrid(w, h int) Grid {
	return Grid{W: w, H: h, Pix: make([]uint8, w*h*3)}
}

// GridFromImage copies img into a new grid. Colors are taken
// non-premultiplied and alpha is dropped, so translucent pixels keep their
// hue and brightness.
func GridFromImage(img image.Image) Grid {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	g := NewGrid(w, h)
	for y := range h {
		for x := range w {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			off := pixOffset(w, x, y)
			g.Pix[off] = c.R
			g.Pix[off+1] = c.G
			g.Pix[off+2] = c.B
		}
	}
	return g
}

// At returns the color at (x, y).
func (g Grid) At(x, y int) [3]uint8 {
	off := pixOffset(g.W, x, y)
	return [3]uint8{g.Pix[off], g.Pix[off+1], g.Pix[off+2]}
}

// Set writes c at (x, y).
func (g Grid) Set(x, y int, c [3]uint8) {
	off := pixOffset(g.W, x, y)
	g.Pix[off] = c[0]
	g.Pix[off+1] = c[1]
	g.Pix[off+2] = c[2]
}

// Len is the number of pixels.
func (g Grid) Len() int {
	return g.W * g.H
}

// Image returns an opaque RGBA copy of g.
func (g Grid) Image() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, g.W, g.H))
	for y := range g.H {
		for x := range g.W {
			c := g.At(x, y)
			out.SetRGBA(x, y, color.RGBA{R: c[0], G: c[1], B: c[2], A: 255})
		}
	}
	return out
}

func pixOffset(w, x, y int) int {
	return (y*w + x) * 3
}

func labelOffset(w, x, y int) int {
	return y*w + x
}
