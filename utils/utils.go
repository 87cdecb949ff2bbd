package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when an input file cannot be turned into an image.
var ErrDecode = errors.New("decode failure")

type weightedColor struct {
	Col    colorful.Color
	Weight float64
}

// SortPaletteByBrightness orders colors from darkest to brightest.
func SortPaletteByBrightness(palette []color.RGBA) {
	slices.SortStableFunc(palette, func(a, b color.RGBA) int {
		yi := luminance(a)
		yj := luminance(b)
		if yi < yj {
			return -1
		}
		if yi > yj {
			return 1
		}
		return 0
	})
}

func luminance(c color.RGBA) float64 {
	c.A = 255
	col, _ := colorful.MakeColor(c)
	r, g, b := col.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ExtractDominantSeeds returns up to k starting centroids (channels in [0,1])
// picked from the dominant colors of img, spread out in Lab space.
func ExtractDominantSeeds(img image.Image, k int) [][3]float64 {
	if k <= 0 {
		return nil
	}
	candidates := dominantcolor.FindWeight(img, max(24, k*8))
	weighted := make([]weightedColor, 0, len(candidates))
	for _, c := range candidates {
		col, _ := colorful.MakeColor(c.RGBA)
		weighted = append(weighted, weightedColor{Col: col.Clamped(), Weight: c.Weight})
	}
	picked := SelectDiverseWeightedColors(weighted, k)
	seeds := make([][3]float64, len(picked))
	for i, c := range picked {
		seeds[i] = [3]float64{c.R, c.G, c.B}
	}
	return seeds
}

// SelectDiverseWeightedColors greedily picks k colors, starting from the
// heaviest and then maximizing Lab distance to the picked set scaled by weight.
func SelectDiverseWeightedColors(cands []weightedColor, k int) []colorful.Color {
	if k <= 0 || len(cands) == 0 {
		return nil
	}
	type item struct {
		col colorful.Color
		lab [3]float64
		w   float64
	}
	items := make([]item, 0, len(cands))
	maxW := 0.0
	for _, c := range cands {
		l, a, b := c.Col.Lab()
		w := c.Weight
		if w <= 0 {
			w = 1e-6
		}
		maxW = max(maxW, w)
		items = append(items, item{col: c.Col, lab: [3]float64{l, a, b}, w: w})
	}
	k = min(k, len(items))

	selected := make([]bool, len(items))
	picked := make([]int, 0, k)
	seed := 0
	for i := 1; i < len(items); i++ {
		if items[i].w > items[seed].w {
			seed = i
		}
	}
	selected[seed] = true
	picked = append(picked, seed)

	for len(picked) < k {
		bestIdx, bestScore := -1, -1.0
		for i := range items {
			if selected[i] {
				continue
			}
			minD2 := math.MaxFloat64
			for _, s := range picked {
				d0 := items[i].lab[0] - items[s].lab[0]
				d1 := items[i].lab[1] - items[s].lab[1]
				d2 := items[i].lab[2] - items[s].lab[2]
				minD2 = min(minD2, d0*d0+d1*d1+d2*d2)
			}
			score := math.Sqrt(minD2) * (0.55 + 0.45*math.Sqrt(items[i].w/maxW))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected[bestIdx] = true
		picked = append(picked, bestIdx)
	}

	out := make([]colorful.Color, len(picked))
	for i, idx := range picked {
		out[i] = items[idx].col
	}
	return out
}

// Denoise applies a Gaussian blur. sigma <= 0 returns img unchanged.
func Denoise(img image.Image, sigma float64) image.Image {
	if sigma <= 0 {
		return img
	}
	g := gift.New(gift.GaussianBlur(float32(sigma)))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

// ReadImage decodes the file at path, applying EXIF orientation.
func ReadImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: %s: empty image", ErrDecode, path)
	}
	return img, nil
}

// SaveImage encodes img with the format implied by the file extension.
func SaveImage(img image.Image, filename string) error {
	return imaging.Save(img, filename, imaging.JPEGQuality(95))
}

// ResultPath derives the output name for a quantized file:
// "a/b.jpg" becomes "a/b_k-8_result.jpg". Other extensions are replaced the
// same way, so the result is always a JPEG.
func ResultPath(file string, k int) string {
	suffix := "_k-" + strconv.Itoa(k) + "_result.jpg"
	return strings.TrimSuffix(file, filepath.Ext(file)) + suffix
}

// LayerPath names the i-th group mask written next to result.
func LayerPath(result string, i int) string {
	return strings.TrimSuffix(result, filepath.Ext(result)) + "_layer_0" + strconv.Itoa(i) + ".png"
}

// SaveRgbaImages writes one PNG per group next to result.
func SaveRgbaImages(images []*image.NRGBA, result string) error {
	for i := range images {
		if err := SaveImage(images[i], LayerPath(result, i)); err != nil {
			return err
		}
	}
	return nil
}

// SaveGrayImages writes one mask PNG per group next to result.
func SaveGrayImages(images []*image.Gray, result string) error {
	for i := range images {
		if err := SaveImage(images[i], LayerPath(result, i)); err != nil {
			return err
		}
	}
	return nil
}

// PalettePath names the swatch strip written next to result.
func PalettePath(result string) string {
	return strings.TrimSuffix(result, filepath.Ext(result)) + "_palette.png"
}

// SavePalette writes the palette as a strip of square tiles, darkest first.
func SavePalette(palette []color.RGBA, tileSize int, filename string) error {
	if len(palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}
	sorted := slices.Clone(palette)
	SortPaletteByBrightness(sorted)

	img := image.NewRGBA(image.Rect(0, 0, tileSize*len(sorted), tileSize))
	for i, c := range sorted {
		c.A = 255
		x0 := i * tileSize
		for y := range tileSize {
			for x := x0; x < x0+tileSize; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return SaveImage(img, filename)
}
