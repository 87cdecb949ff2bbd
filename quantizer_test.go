package kquant

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantize_K1(t *testing.T) {
	q := NewQuantizer(checker())
	require.NoError(t, q.Build(context.Background(), tight(1)))

	for y := range 2 {
		for x := range 2 {
			assert.Equal(t, [3]uint8{128, 128, 128}, q.Output.At(x, y))
		}
	}
	assert.Equal(t, []color.RGBA{{R: 128, G: 128, B: 128, A: 255}}, q.Palette())
}

func TestQuantize_K2RestoresOriginal(t *testing.T) {
	q := NewQuantizer(checker())
	require.NoError(t, q.Build(context.Background(), tight(2)))

	assert.Equal(t, q.Grid, q.Output)
	assert.ElementsMatch(t, []color.RGBA{
		{R: 0, G: 0, B: 0, A: 255},
		{R: 255, G: 255, B: 255, A: 255},
	}, q.Palette())
	assert.Equal(t, []int{2, 2}, q.Counts())
}

func TestQuantize_KEqualsPixelCount(t *testing.T) {
	img := noise(3, 2, 12)
	q := NewQuantizer(img)
	require.NoError(t, q.Build(context.Background(), tight(6)))
	assert.Equal(t, q.Grid, q.Output)
	assert.Equal(t, 0.0, squaredError(q.Grid, q.Output))
}

func TestQuantize_InvalidK(t *testing.T) {
	for _, k := range []int{0, 5} {
		q := NewQuantizer(checker())
		err := q.Build(context.Background(), tight(k))
		assert.ErrorIs(t, err, ErrInvalidK, "k=%d", k)
		assert.Nil(t, q.Samples, "clustering must not start")
		assert.Nil(t, q.Layers)
	}
}

func TestQuantize_LayersSumToOutput(t *testing.T) {
	q := NewQuantizer(noise(15, 11, 31))
	require.NoError(t, q.Build(context.Background(), tight(5)))

	require.Len(t, q.Layers, 5)
	for i := range q.Output.Pix {
		sum := 0
		for _, l := range q.Layers {
			sum += int(l.Pix[i])
		}
		assert.Equal(t, int(q.Output.Pix[i]), sum)
	}
	assert.Equal(t, Render(q.Grid, q.Result.Labels, q.Result.Centroids), q.Output)
}

// The default epsilon of 1.0 can stop an attempt before its partition is
// stable, so idempotence is checked with tight options.
func TestQuantize_Idempotent(t *testing.T) {
	first, err := Quantize(context.Background(), noise(20, 20, 77), tight(4))
	require.NoError(t, err)

	second, err := Quantize(context.Background(), first, tight(4))
	require.NoError(t, err)
	assert.Equal(t, first.Pix, second.Pix)
}

func TestQuantize_MoreColorsLessError(t *testing.T) {
	img := noise(24, 24, 5)
	src := GridFromImage(img)

	errAt := func(k int) float64 {
		q := NewQuantizer(img)
		require.NoError(t, q.Build(context.Background(), tight(k)))
		return squaredError(src, q.Output)
	}
	e2, e16 := errAt(2), errAt(16)
	assert.Less(t, e16, e2)
	assert.Equal(t, 0.0, errAt(src.Len()))
}

func TestQuantize_Muesli(t *testing.T) {
	opt := tight(2)
	opt.Engine = EngineMuesli
	opt.MaxIterations = 100
	q := NewQuantizer(noise(6, 6, 2))
	require.NoError(t, q.Build(context.Background(), opt))
	assert.Equal(t, image.Rect(0, 0, 6, 6), q.Image().Bounds())
	for _, l := range q.Result.Labels {
		assert.True(t, l >= 0 && l < 2, "label %d", l)
	}
	assertGroupMeans(t, q.Samples, q.Result)
}

func TestQuantize_MuesliKEqualsPixelCount(t *testing.T) {
	opt := tight(4)
	opt.Engine = EngineMuesli
	opt.MaxIterations = 100
	q := NewQuantizer(noise(2, 2, 9))
	require.NoError(t, q.Build(context.Background(), opt))
	assert.Equal(t, q.Grid, q.Output)
	assert.Equal(t, 0.0, squaredError(q.Grid, q.Output))
}

func TestQuantize_MuesliRejectsSeeds(t *testing.T) {
	opt := tight(2)
	opt.Engine = EngineMuesli
	opt.Seeds = [][3]float64{{0, 0, 0}, {1, 1, 1}}
	_, err := Quantize(context.Background(), checker(), opt)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestQuantizer_Layers(t *testing.T) {
	q := NewQuantizer(noise(7, 5, 8))
	require.NoError(t, q.Build(context.Background(), tight(3)))

	rgba := q.RGBALayers()
	gray := q.GrayLayers()
	require.Len(t, rgba, 3)
	require.Len(t, gray, 3)
	for y := range 5 {
		for x := range 7 {
			owners := 0
			for i := range 3 {
				if gray[i].GrayAt(x, y).Y == 255 {
					owners++
					c := q.Output.At(x, y)
					assert.Equal(t, color.NRGBA{R: c[0], G: c[1], B: c[2], A: 255}, rgba[i].NRGBAAt(x, y))
				} else {
					assert.Equal(t, uint8(0), rgba[i].NRGBAAt(x, y).A)
				}
			}
			assert.Equal(t, 1, owners)
		}
	}
}

func TestQuantizer_SubImageBounds(t *testing.T) {
	img := noise(10, 10, 3).SubImage(image.Rect(2, 3, 6, 8))
	out, err := Quantize(context.Background(), img, tight(2))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 5), out.Bounds())
}

func TestParseEngine(t *testing.T) {
	e, err := ParseEngine("MUESLI")
	require.NoError(t, err)
	assert.Equal(t, EngineMuesli, e)

	e, err = ParseEngine("")
	require.NoError(t, err)
	assert.Equal(t, EngineLloyd, e)

	_, err = ParseEngine("opencv")
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
