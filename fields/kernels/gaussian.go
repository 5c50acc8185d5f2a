// Package kernels - separable convolution kernels over float32 fields.
package kernels

import (
	"github.com/nvr-ai/go-pose/fields"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// EdgeMode defines how sampling behaves outside the field bounds.
// - Clamp: repeats edge samples.
// - Mirror: reflects coordinates including the edge sample (d c b a | a b c d).
// - Wrap: tiles the field.
type EdgeMode int

const (
	EdgeClamp EdgeMode = iota
	EdgeMirror
	EdgeWrap
)

// DefaultTruncate is the number of standard deviations covered by the kernel.
const DefaultTruncate = 4.0

// Options configures a Gaussian pass.
type Options struct {
	Sigma    float64  // Standard deviation in samples. Must be > 0.
	Truncate float64  // Kernel extent in standard deviations; 0 means DefaultTruncate.
	Edge     EdgeMode // Edge sampling mode.
}

// Radius returns the kernel radius for sigma truncated at truncate standard
// deviations, int(truncate*sigma + 0.5).
func Radius(sigma, truncate float64) int {
	if truncate <= 0 {
		truncate = DefaultTruncate
	}
	return int(truncate*sigma + 0.5)
}

// GaussianWeights returns a normalized 1D Gaussian kernel of size 2*radius+1.
//
// Arguments:
//   - radius: The kernel radius.
//   - sigma: Standard deviation of the Gaussian.
//
// Returns:
//   - []float64: Weights summing to 1, symmetric around index radius.
//
// @example
//
//	w := GaussianWeights(Radius(3, 4), 3)
func GaussianWeights(radius int, sigma float64) []float64 {
	if radius < 0 {
		radius = 0
	}
	dist := distuv.Normal{Mu: 0, Sigma: sigma}
	w := make([]float64, 2*radius+1)
	for i := range w {
		w[i] = dist.Prob(float64(i - radius))
	}
	floats.Scale(1/floats.Sum(w), w)
	return w
}

// Gaussian smooths src with a separable Gaussian. The vertical pass runs
// first, then the horizontal pass; each accumulates in float64 and stores
// float32. A non-positive sigma returns a copy.
//
// Arguments:
//   - src: The field to smooth.
//   - opt: Sigma, truncation and edge handling.
//
// Returns:
//   - fields.Field: A new smoothed field of the same size.
func Gaussian(src fields.Field, opt Options) fields.Field {
	dst := fields.New(src.Width, src.Height)
	if opt.Sigma <= 0 || src.Width == 0 || src.Height == 0 {
		copy(dst.Data, src.Data)
		return dst
	}

	r := Radius(opt.Sigma, opt.Truncate)
	weights := GaussianWeights(r, opt.Sigma)

	tmp := fields.New(src.Width, src.Height)
	vertical(src, tmp, weights, r, opt.Edge)
	horizontal(tmp, dst, weights, r, opt.Edge)
	return dst
}

// vertical convolves every column of src into dst.
func vertical(src, dst fields.Field, weights []float64, r int, edge EdgeMode) {
	w, h := src.Width, src.Height
	rows := make([]int, len(weights))
	for y := 0; y < h; y++ {
		for k := range weights {
			rows[k] = mapCoord(y+k-r, h, edge) * w
		}
		out := dst.Data[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var sum float64
			for k, wk := range weights {
				sum += wk * float64(src.Data[rows[k]+x])
			}
			out[x] = float32(sum)
		}
	}
}

// horizontal convolves every row of src into dst.
func horizontal(src, dst fields.Field, weights []float64, r int, edge EdgeMode) {
	w, h := src.Width, src.Height
	cols := make([]int, len(weights))
	for x := 0; x < w; x++ {
		for k := range weights {
			cols[k] = mapCoord(x+k-r, w, edge)
		}
		for y := 0; y < h; y++ {
			line := src.Data[y*w : (y+1)*w]
			var sum float64
			for k, wk := range weights {
				sum += wk * float64(line[cols[k]])
			}
			dst.Data[y*w+x] = float32(sum)
		}
	}
}

// mapCoord maps an index i to [0, n) according to edge mode.
// For Clamp: clamp to [0, n-1].
// For Mirror: reflect indices ... -2,-1,0,1,2, ... -> 1,0,0,1,2, ...
// For Wrap: modulo wrap to [0, n).
func mapCoord(i, n int, mode EdgeMode) int {
	switch mode {
	case EdgeMirror:
		if n == 1 {
			return 0
		}
		// Kernels wider than the field reflect more than once.
		for i < 0 || i >= n {
			if i < 0 {
				i = -i - 1
			} else {
				i = 2*n - i - 1
			}
		}
		return i
	case EdgeWrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i
	default:
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
}
