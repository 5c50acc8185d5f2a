// Package preprocess - aspect preserving resize and padding of input images,
// conversion to network input tensors, and the inverse coordinate mapping.
package preprocess

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// ErrInvalidSize is returned for empty images or non-positive targets.
var ErrInvalidSize = errors.New("invalid image size")

// ChannelOrder defines the ordering of image channels in a tensor.
type ChannelOrder int

const (
	// ChannelOrderCHW is Channel-Height-Width ordering.
	ChannelOrderCHW ChannelOrder = iota
	// ChannelOrderHWC is Height-Width-Channel ordering.
	ChannelOrderHWC
)

// Letterboxed is an image scaled to fit a target size with its aspect ratio
// kept, centred on a black canvas.
type Letterboxed struct {
	// Image is the padded result, exactly the target size.
	Image *image.RGBA
	// Scale is the factor applied to the source image.
	Scale float32
	// PadLeft is the padding added on the left.
	PadLeft int
	// PadTop is the padding added on top.
	PadTop int
	// SrcWidth is the width of the source image.
	SrcWidth int
	// SrcHeight is the height of the source image.
	SrcHeight int
}

// Letterbox resizes img with bilinear interpolation by the largest factor
// that fits dstW x dstH and pads the remainder with black. Padding is split
// with the smaller half on the left and top.
//
// Arguments:
//   - img: The source image.
//   - dstW: Target width.
//   - dstH: Target height.
//
// Returns:
//   - *Letterboxed: The padded image and the transform parameters.
//   - error: ErrInvalidSize for empty inputs.
//
// @example
//
//	lb, err := preprocess.Letterbox(img, 224, 224)
//	input := lb.Tensor(preprocess.ChannelOrderHWC)
func Letterbox(img image.Image, dstW, dstH int) (*Letterboxed, error) {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "source %dx%d", srcW, srcH)
	}
	if dstW <= 0 || dstH <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "target %dx%d", dstW, dstH)
	}

	scaleW := float32(dstW) / float32(srcW)
	scaleH := float32(dstH) / float32(srcH)
	scale := math32.Min(scaleW, scaleH)

	// The limiting side fills the target exactly.
	newW, newH := dstW, dstH
	if scaleW < scaleH {
		newH = int(math32.Floor(float32(srcH) * scale))
	} else {
		newW = int(math32.Floor(float32(srcW) * scale))
	}
	newW, newH = max(newW, 1), max(newH, 1)

	padLeft := (dstW - newW) / 2
	padTop := (dstH - newH) / 2

	resized := resize.Resize(uint(newW), uint(newH), img, resize.Bilinear)

	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(padLeft, padTop, padLeft+newW, padTop+newH), resized, resized.Bounds().Min, draw.Src)

	return &Letterboxed{
		Image:     out,
		Scale:     scale,
		PadLeft:   padLeft,
		PadTop:    padTop,
		SrcWidth:  srcW,
		SrcHeight: srcH,
	}, nil
}

// Tensor converts the padded image to a float32 RGB tensor with values in
// [0, 1], shaped [1, 3, H, W] for CHW or [1, H, W, 3] for HWC.
func (l *Letterboxed) Tensor(order ChannelOrder) *tensor.Dense {
	b := l.Image.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	data := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := l.Image.PixOffset(b.Min.X+x, b.Min.Y+y)
			px := l.Image.Pix[off : off+3 : off+3]
			for c := 0; c < 3; c++ {
				v := float32(px[c]) / 255
				if order == ChannelOrderHWC {
					data[(y*w+x)*3+c] = v
				} else {
					data[c*plane+y*w+x] = v
				}
			}
		}
	}

	if order == ChannelOrderHWC {
		return tensor.New(tensor.WithShape(1, h, w, 3), tensor.WithBacking(data))
	}
	return tensor.New(tensor.WithShape(1, 3, h, w), tensor.WithBacking(data))
}

// Map moves a point of the source image into letterboxed coordinates.
func (l *Letterboxed) Map(x, y float64) (float64, float64) {
	s := float64(l.Scale)
	return x*s + float64(l.PadLeft), y*s + float64(l.PadTop)
}

// Unmap moves a point of the letterboxed image back to source coordinates.
func (l *Letterboxed) Unmap(x, y float64) (float64, float64) {
	s := float64(l.Scale)
	return (x - float64(l.PadLeft)) / s, (y - float64(l.PadTop)) / s
}
