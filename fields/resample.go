package fields

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// cubicA is the cubic convolution coefficient used by PyTorch's bicubic
// upsampling. Catmull-Rom would be -0.5.
const cubicA = float32(-0.75)

// tap holds the four source indices and weights contributing to one output
// coordinate along a single axis.
type tap struct {
	index  [4]int
	weight [4]float32
}

// cubicConvolution1 evaluates the kernel for |x| <= 1.
func cubicConvolution1(x, a float32) float32 {
	return ((a+2)*x-(a+3))*x*x + 1
}

// cubicConvolution2 evaluates the kernel for 1 < |x| < 2.
func cubicConvolution2(x, a float32) float32 {
	return ((a*x-5*a)*x+8*a)*x - 4*a
}

// cubicWeights returns the weights of the four taps around a fractional
// offset t in [0, 1).
func cubicWeights(t float32) [4]float32 {
	x1 := t
	x2 := 1 - t
	return [4]float32{
		cubicConvolution2(x1+1, cubicA),
		cubicConvolution1(x1, cubicA),
		cubicConvolution1(x2, cubicA),
		cubicConvolution2(x2+1, cubicA),
	}
}

// clampIndex restricts i to [0, n-1].
func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// computeTaps precomputes the source taps for every output coordinate along
// one axis using half-pixel centres (align_corners=False). The source
// coordinate is not clamped before flooring; only the tap indices are.
func computeTaps(in, out int) []tap {
	scale := float32(in) / float32(out)
	taps := make([]tap, out)
	for o := 0; o < out; o++ {
		real := scale*(float32(o)+0.5) - 0.5
		base := math32.Floor(real)
		t := real - base
		i0 := int(base)

		var tp tap
		tp.weight = cubicWeights(t)
		for k := 0; k < 4; k++ {
			tp.index[k] = clampIndex(i0-1+k, in)
		}
		taps[o] = tp
	}
	return taps
}

// Resample resizes a field to width x height with bicubic interpolation that
// matches torch.nn.functional.interpolate(mode="bicubic", align_corners=False).
// Rows are interpolated first, then the four row results are interpolated
// vertically. Equal sizes return a copy.
//
// Arguments:
//   - src: The field to resample.
//   - width: Target width, must be positive.
//   - height: Target height, must be positive.
//
// Returns:
//   - Field: The resampled field.
//   - error: ErrInvalidSize if a dimension is not positive.
func Resample(src Field, width, height int) (Field, error) {
	if width <= 0 || height <= 0 {
		return Field{}, errors.Wrapf(ErrInvalidSize, "target %dx%d", width, height)
	}
	if src.Width <= 0 || src.Height <= 0 || len(src.Data) != src.Width*src.Height {
		return Field{}, errors.Wrapf(ErrInvalidSize, "source %dx%d with %d samples", src.Width, src.Height, len(src.Data))
	}

	dst := New(width, height)
	if width == src.Width && height == src.Height {
		copy(dst.Data, src.Data)
		return dst, nil
	}

	xs := computeTaps(src.Width, width)
	ys := computeTaps(src.Height, height)
	resampleInto(src, dst, xs, ys)
	return dst, nil
}

func resampleInto(src, dst Field, xs, ys []tap) {
	var rows [4]float32
	for oy, ty := range ys {
		for ox, tx := range xs {
			for r := 0; r < 4; r++ {
				line := src.Data[ty.index[r]*src.Width:]
				rows[r] = line[tx.index[0]]*tx.weight[0] +
					line[tx.index[1]]*tx.weight[1] +
					line[tx.index[2]]*tx.weight[2] +
					line[tx.index[3]]*tx.weight[3]
			}
			dst.Data[oy*dst.Width+ox] = rows[0]*ty.weight[0] +
				rows[1]*ty.weight[1] +
				rows[2]*ty.weight[2] +
				rows[3]*ty.weight[3]
		}
	}
}

// ResampleStack resamples every channel of s to width x height. Channels are
// independent and are processed on up to workers goroutines.
//
// Arguments:
//   - s: The channels to resample.
//   - width: Target width, must be positive.
//   - height: Target height, must be positive.
//   - workers: Maximum goroutines, <= 0 for runtime.NumCPU().
//
// Returns:
//   - Stack: The resampled channels in the same order.
//   - error: ErrInvalidSize for bad source or target sizes.
func ResampleStack(s Stack, width, height, workers int) (Stack, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidSize, "target %dx%d", width, height)
	}
	w, h := s.Size()
	for i, f := range s {
		if f.Width != w || f.Height != h || len(f.Data) != w*h || w <= 0 || h <= 0 {
			return nil, errors.Wrapf(ErrInvalidSize, "channel %d is %dx%d with %d samples", i, f.Width, f.Height, len(f.Data))
		}
	}

	out := make(Stack, len(s))
	if w == width && h == height {
		for i, f := range s {
			out[i] = New(width, height)
			copy(out[i].Data, f.Data)
		}
		return out, nil
	}

	xs := computeTaps(w, width)
	ys := computeTaps(h, height)
	Parallel(len(s), workers, func(start, end int) {
		for c := start; c < end; c++ {
			out[c] = New(width, height)
			resampleInto(s[c], out[c], xs, ys)
		}
	})
	return out, nil
}
