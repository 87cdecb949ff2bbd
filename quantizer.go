package kquant

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type Engine int

const (
	// EngineLloyd is the built-in seeded Lloyd clusterer.
	EngineLloyd Engine = iota
	// EngineMuesli starts each attempt from a github.com/muesli/kmeans
	// partition and refines it with the Lloyd loop.
	EngineMuesli
)

func (e Engine) String() string {
	switch e {
	case EngineMuesli:
		return "muesli"
	default:
		return "lloyd"
	}
}

// ParseEngine maps a name from String back to an Engine.
func ParseEngine(s string) (Engine, error) {
	switch strings.ToLower(s) {
	case "", "lloyd":
		return EngineLloyd, nil
	case "muesli":
		return EngineMuesli, nil
	}
	return EngineLloyd, fmt.Errorf("%w: unknown engine %q", ErrInvalidOptions, s)
}

type Options struct {
	// Number of output colors.
	K int
	// Lloyd iteration cap per attempt.
	MaxIterations int
	// Convergence threshold on the summed squared centroid shift.
	// 1.0 is loose: most attempts stop after two or three iterations.
	Epsilon float64
	// Random restarts. Higher values trade time for more compact palettes.
	Attempts int
	// 0 means nondeterministic.
	Seed uint64
	// Assignment-step goroutines.
	Workers int
	Engine  Engine
	// Optional starting colors for the first attempt (see utils.ExtractDominantSeeds).
	// Not supported by EngineMuesli.
	Seeds  [][3]float64
	Logger *Logger
}

func DefaultOptions(k int) Options {
	return Options{
		K:             k,
		MaxIterations: 10,
		Epsilon:       1.0,
		Attempts:      10,
		Workers:       1,
		Engine:        EngineLloyd,
	}
}

func (o Options) clusterOptions() ClusterOptions {
	return ClusterOptions{
		K:              o.K,
		MaxIterations:  o.MaxIterations,
		Epsilon:        o.Epsilon,
		Attempts:       o.Attempts,
		Seed:           o.Seed,
		Workers:        o.Workers,
		InitialCenters: o.Seeds,
		Logger:         o.Logger,
	}
}

// Quantizer runs grid extraction, clustering, per-group reconstruction and
// compositing for one image. Intermediate stages stay available after Build.
type Quantizer struct {
	InputImage image.Image
	Grid       Grid
	Samples    *mat.Dense
	Result     Result
	Layers     []Grid
	Output     Grid
}

func NewQuantizer(input image.Image) *Quantizer {
	return &Quantizer{InputImage: input}
}

func (q *Quantizer) Build(ctx context.Context, opt Options) error {
	q.Grid = GridFromImage(q.InputImage)
	if opt.K < 1 || opt.K > q.Grid.Len() {
		return invalidK(opt.K, q.Grid.Len())
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	q.Samples = ExtractSamples(q.Grid)

	var err error
	switch opt.Engine {
	case EngineMuesli:
		q.Result, err = ClusterMuesli(ctx, q.Samples, opt.clusterOptions())
	default:
		q.Result, err = Cluster(ctx, q.Samples, opt.clusterOptions())
	}
	if err != nil {
		return err
	}
	if len(q.Result.Labels) != q.Grid.Len() || q.Result.K() != opt.K {
		invariant("clusterer returned %d labels and %d centroids for %d pixels, k=%d",
			len(q.Result.Labels), q.Result.K(), q.Grid.Len(), opt.K)
	}

	q.Layers = ClusterImages(q.Grid, q.Result.Labels, q.Result.Centroids)
	q.Output = Composite(q.Layers)
	return nil
}

// Image returns the quantized image.
func (q *Quantizer) Image() *image.RGBA {
	return q.Output.Image()
}

func (q *Quantizer) Palette() []color.RGBA {
	if q.Result.Centroids == nil {
		return nil
	}
	return Palette(q.Result.Centroids)
}

// Counts returns the number of pixels owned by each group.
func (q *Quantizer) Counts() []int {
	return Counts(q.Result.Labels, q.Result.K())
}

// RGBALayers returns one image per group: the group color where the group
// owns the pixel, fully transparent elsewhere.
func (q *Quantizer) RGBALayers() []*image.NRGBA {
	k := q.Result.K()
	if k == 0 || len(q.Result.Labels) != q.Grid.Len() {
		return nil
	}
	palette := q.Palette()
	w, h := q.Grid.W, q.Grid.H
	out := make([]*image.NRGBA, k)
	for ch := range k {
		out[ch] = image.NewNRGBA(image.Rect(0, 0, w, h))
	}
	for y := range h {
		for x := range w {
			l := q.Result.Labels[labelOffset(w, x, y)]
			c := palette[l]
			out[l].SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return out
}

// GrayLayers returns one mask per group, white where the group owns the pixel.
func (q *Quantizer) GrayLayers() []*image.Gray {
	k := q.Result.K()
	if k == 0 || len(q.Result.Labels) != q.Grid.Len() {
		return nil
	}
	w, h := q.Grid.W, q.Grid.H
	out := make([]*image.Gray, k)
	for ch := range k {
		out[ch] = image.NewGray(image.Rect(0, 0, w, h))
	}
	for y := range h {
		for x := range w {
			l := q.Result.Labels[labelOffset(w, x, y)]
			out[l].SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return out
}

// Quantize reduces img to opt.K colors.
func Quantize(ctx context.Context, img image.Image, opt Options) (*image.RGBA, error) {
	q := NewQuantizer(img)
	if err := q.Build(ctx, opt); err != nil {
		return nil, err
	}
	return q.Image(), nil
}
