package kernels

import (
	"math/rand"
	"testing"

	"github.com/nvr-ai/go-pose/fields"
)

func genField(w, h int) fields.Field {
	f := fields.New(w, h)
	rng := rand.New(rand.NewSource(1))
	for i := range f.Data {
		f.Data[i] = rng.Float32()
	}
	return f
}

func BenchmarkGaussian_224_s3(b *testing.B) {
	f := genField(224, 224)
	opt := Options{Sigma: 3, Edge: EdgeMirror}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Gaussian(f, opt)
	}
}

func BenchmarkGaussian_368_s3(b *testing.B) {
	f := genField(368, 368)
	opt := Options{Sigma: 3, Edge: EdgeMirror}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = Gaussian(f, opt)
	}
}
