package kernels

import (
	"testing"

	"github.com/nvr-ai/go-pose/fields"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussianWeights(t *testing.T) {
	r := Radius(3, DefaultTruncate)
	assert.Equal(t, 12, r)
	assert.Equal(t, 12, Radius(3, 0))
	assert.Equal(t, 2, Radius(0.5, DefaultTruncate))

	w := GaussianWeights(r, 3)
	require.Len(t, w, 25)

	sum := 0.0
	for i, v := range w {
		sum += v
		assert.InDelta(t, v, w[len(w)-1-i], 1e-15, "weights are not symmetric at %d", i)
		if i > 0 && i <= r {
			assert.Greater(t, v, w[i-1])
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestGaussianPreservesConstantField(t *testing.T) {
	for _, edge := range []EdgeMode{EdgeClamp, EdgeMirror, EdgeWrap} {
		src := fields.New(9, 7)
		for i := range src.Data {
			src.Data[i] = 0.5
		}
		out := Gaussian(src, Options{Sigma: 3, Edge: edge})
		for i, v := range out.Data {
			assert.InDelta(t, 0.5, v, 1e-6, "edge %d sample %d", edge, i)
		}
	}
}

func TestGaussianImpulseResponse(t *testing.T) {
	const size, c = 41, 20
	src := fields.New(size, size)
	src.Set(c, c, 1)

	out := Gaussian(src, Options{Sigma: 3, Edge: EdgeMirror})
	w := GaussianWeights(12, 3)

	assert.InDelta(t, w[12]*w[12], out.At(c, c), 1e-6)
	assert.InDelta(t, w[12]*w[15], out.At(c+3, c), 1e-6)
	assert.InDelta(t, w[10]*w[12], out.At(c, c-2), 1e-6)
	assert.Equal(t, out.At(c+4, c), out.At(c-4, c))
	assert.Equal(t, float32(0), out.At(0, 0))
}

func TestGaussianZeroSigmaCopies(t *testing.T) {
	src := fields.New(3, 2)
	src.Set(1, 1, 4)

	out := Gaussian(src, Options{})
	assert.Equal(t, src.Data, out.Data)

	out.Set(1, 1, 0)
	assert.Equal(t, float32(4), src.At(1, 1), "result must not alias the input")
}

func TestMapCoord(t *testing.T) {
	tests := []struct {
		name string
		i, n int
		mode EdgeMode
		want int
	}{
		{"clamp low", -3, 5, EdgeClamp, 0},
		{"clamp high", 7, 5, EdgeClamp, 4},
		{"mirror -1", -1, 5, EdgeMirror, 0},
		{"mirror -2", -2, 5, EdgeMirror, 1},
		{"mirror n", 5, 5, EdgeMirror, 4},
		{"mirror n+1", 6, 5, EdgeMirror, 3},
		{"mirror twice", -7, 3, EdgeMirror, 0},
		{"mirror single", 4, 1, EdgeMirror, 0},
		{"wrap low", -1, 5, EdgeWrap, 4},
		{"wrap high", 6, 5, EdgeWrap, 1},
		{"inside", 2, 5, EdgeMirror, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, mapCoord(tc.i, tc.n, tc.mode))
		})
	}
}
