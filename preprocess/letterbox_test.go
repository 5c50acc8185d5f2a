package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func uniform(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

var red = color.RGBA{R: 255, A: 255}

func TestLetterboxWideImage(t *testing.T) {
	lb, err := Letterbox(uniform(400, 200, red), 224, 224)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 224, 224), lb.Image.Bounds())
	assert.InDelta(t, 0.56, lb.Scale, 1e-6)
	assert.Equal(t, 0, lb.PadLeft)
	assert.Equal(t, 56, lb.PadTop)
	assert.Equal(t, 400, lb.SrcWidth)

	assert.Equal(t, color.RGBA{A: 255}, lb.Image.RGBAAt(112, 10), "top padding is black")
	assert.Equal(t, color.RGBA{A: 255}, lb.Image.RGBAAt(112, 200), "bottom padding is black")
	assert.Equal(t, red, lb.Image.RGBAAt(112, 112))
	assert.Equal(t, red, lb.Image.RGBAAt(0, 56))
	assert.Equal(t, red, lb.Image.RGBAAt(223, 167))
}

func TestLetterboxTallImageOddPadding(t *testing.T) {
	lb, err := Letterbox(uniform(101, 200, red), 100, 100)
	require.NoError(t, err)

	assert.Equal(t, 100, lb.Image.Bounds().Dy())
	// 101 * 0.5 = 50.5 floors to 50, leaving 50 columns: 25 left, 25 right.
	assert.Equal(t, 25, lb.PadLeft)
	assert.Equal(t, 0, lb.PadTop)
	assert.Equal(t, color.RGBA{A: 255}, lb.Image.RGBAAt(24, 50))
	assert.Equal(t, red, lb.Image.RGBAAt(25, 50))
	assert.Equal(t, red, lb.Image.RGBAAt(74, 50))
	assert.Equal(t, color.RGBA{A: 255}, lb.Image.RGBAAt(75, 50))
}

func TestLetterboxInvalid(t *testing.T) {
	_, err := Letterbox(image.NewRGBA(image.Rect(0, 0, 0, 10)), 224, 224)
	assert.True(t, errors.Is(err, ErrInvalidSize))

	_, err = Letterbox(uniform(4, 4, red), 0, 224)
	assert.True(t, errors.Is(err, ErrInvalidSize))
}

func TestLetterboxTensor(t *testing.T) {
	lb, err := Letterbox(uniform(8, 4, red), 8, 8)
	require.NoError(t, err)
	require.Equal(t, 2, lb.PadTop)

	chw := lb.Tensor(ChannelOrderCHW)
	assert.Equal(t, tensor.Shape{1, 3, 8, 8}, chw.Shape())
	data := chw.Data().([]float32)
	assert.Equal(t, float32(1), data[0*64+3*8+1], "red channel inside the image")
	assert.Equal(t, float32(0), data[1*64+3*8+1], "green channel inside the image")
	assert.Equal(t, float32(0), data[0*64+0*8+1], "red channel in the padding")

	hwc := lb.Tensor(ChannelOrderHWC)
	assert.Equal(t, tensor.Shape{1, 8, 8, 3}, hwc.Shape())
	data = hwc.Data().([]float32)
	assert.Equal(t, float32(1), data[(3*8+1)*3+0])
	assert.Equal(t, float32(0), data[(3*8+1)*3+2])
}

func TestLetterboxMapRoundTrip(t *testing.T) {
	lb, err := Letterbox(uniform(640, 480, red), 224, 224)
	require.NoError(t, err)

	for _, p := range [][2]float64{{0, 0}, {639, 479}, {320.5, 17.25}} {
		x, y := lb.Map(p[0], p[1])
		assert.GreaterOrEqual(t, y, float64(lb.PadTop))
		ux, uy := lb.Unmap(x, y)
		assert.InDelta(t, p[0], ux, 1e-9)
		assert.InDelta(t, p[1], uy, 1e-9)
	}
}
