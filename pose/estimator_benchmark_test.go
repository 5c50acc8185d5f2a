package pose

import (
	"fmt"
	"testing"

	"github.com/nvr-ai/go-pose/fields"
	"github.com/nvr-ai/go-pose/skeleton"
	"github.com/nvr-ai/go-pose/test"
	"gorgonia.org/tensor"
)

// networkOutputs renders people side by side and downsamples the result to
// the 28x28 grid a 224x224 OpenPose network emits.
func networkOutputs(b *testing.B, people int) (*tensor.Dense, *tensor.Dense) {
	b.Helper()
	scene := test.NewScene(100*people, 160)
	for i := 0; i < people; i++ {
		scene.AddPerson(100*i, 0, 0.9)
	}
	hm, err := fields.ResampleStack(scene.Heatmaps(), 28, 28, 0)
	if err != nil {
		b.Fatal(err)
	}
	paf, err := fields.ResampleStack(scene.VectorFields(), 28, 28, 0)
	if err != nil {
		b.Fatal(err)
	}
	return hm.ToTensor(), paf.ToTensor()
}

func BenchmarkEstimate(b *testing.B) {
	for _, people := range []int{1, 4} {
		for _, workers := range []int{1, 0} {
			b.Run(fmt.Sprintf("people=%d/workers=%d", people, workers), func(b *testing.B) {
				hm, paf := networkOutputs(b, people)
				est, err := NewEstimator(WithWorkers(workers))
				if err != nil {
					b.Fatal(err)
				}
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					if _, err := est.Estimate(hm, paf, 224, 224); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}

func BenchmarkResampleHeatmaps(b *testing.B) {
	hm := fields.NewStack(skeleton.HeatmapChannels, 28, 28)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := fields.ResampleStack(hm, 224, 224, 0); err != nil {
			b.Fatal(err)
		}
	}
}
