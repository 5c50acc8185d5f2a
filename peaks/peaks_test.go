package peaks

import (
	"testing"

	"github.com/nvr-ai/go-pose/fields"
	"github.com/nvr-ai/go-pose/fields/kernels"
	"github.com/nvr-ai/go-pose/skeleton"
	"github.com/nvr-ai/go-pose/test"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAllZero(t *testing.T) {
	byPart, all, err := Detect(fields.NewStack(skeleton.HeatmapChannels, 32, 24), DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, byPart, skeleton.PartCount)
	assert.Empty(t, all)
	for p, list := range byPart {
		assert.Empty(t, list, "part %d", p)
	}
}

func TestDetectTooFewChannels(t *testing.T) {
	_, _, err := Detect(fields.NewStack(5, 8, 8), DefaultOptions())
	assert.True(t, errors.Is(err, fields.ErrShapeMismatch))
}

func TestDetectEqualAdjacentMaxima(t *testing.T) {
	heatmaps := fields.NewStack(skeleton.HeatmapChannels, 100, 100)
	heatmaps[skeleton.Neck].Set(50, 50, 10)
	heatmaps[skeleton.Neck].Set(51, 50, 10)

	byPart, all, err := Detect(heatmaps, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, Peak{X: 50, Y: 50, Score: 10, ID: 0, Part: skeleton.Neck}, all[0])
	assert.Equal(t, Peak{X: 51, Y: 50, Score: 10, ID: 1, Part: skeleton.Neck}, all[1])
	assert.Equal(t, all, byPart[skeleton.Neck])
}

func TestDetectScoresAreUnsmoothed(t *testing.T) {
	scene := test.NewScene(120, 140).AddPerson(0, 0, 0.9, skeleton.RightKnee)
	heatmaps := scene.Heatmaps()
	byPart, all, err := Detect(heatmaps, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, all, 1)

	smoothed := kernels.Gaussian(heatmaps[skeleton.RightKnee], kernels.Options{Sigma: 3, Edge: kernels.EdgeMirror})
	knee := test.Layout[skeleton.RightKnee]
	assert.Less(t, smoothed.At(knee.X, knee.Y), float32(0.5))

	p := byPart[skeleton.RightKnee][0]
	assert.Equal(t, test.Layout[skeleton.RightKnee].X, p.X)
	assert.Equal(t, test.Layout[skeleton.RightKnee].Y, p.Y)
	assert.Equal(t, float32(0.9), p.Score)
}

func TestDetectThreshold(t *testing.T) {
	scene := test.NewScene(120, 100).AddPerson(0, 0, 0.3, skeleton.Nose)
	_, all, err := Detect(scene.Heatmaps(), DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, all, "smoothed amplitude of a 0.3 bump is below 0.1")

	opt := DefaultOptions()
	opt.Threshold = 0.05
	_, all, err = Detect(scene.Heatmaps(), opt)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDetectIgnoresBackground(t *testing.T) {
	heatmaps := fields.NewStack(skeleton.HeatmapChannels, 40, 40)
	heatmaps[skeleton.HeatmapChannels-1].Set(20, 20, 50)

	_, all, err := Detect(heatmaps, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestDetectIDsFollowPartOrder(t *testing.T) {
	scene := test.NewScene(200, 160).
		AddPerson(80, 0, 0.9).
		AddPerson(0, 0, 0.9)

	for _, workers := range []int{1, 4} {
		opt := DefaultOptions()
		opt.Workers = workers
		byPart, all, err := Detect(scene.Heatmaps(), opt)
		require.NoError(t, err)
		require.Len(t, all, 2*skeleton.PartCount)

		for i, p := range all {
			assert.Equal(t, i, p.ID)
			assert.Equal(t, skeleton.PartType(i/2), p.Part)
		}
		for part, list := range byPart {
			require.Len(t, list, 2, "part %d", part)
			// Row-major order puts the left person first when rows tie.
			assert.Less(t, list[0].X, list[1].X)
			assert.Equal(t, list[0].ID+1, list[1].ID)
		}
	}
}
