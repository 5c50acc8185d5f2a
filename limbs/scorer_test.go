package limbs

import (
	"image"
	"math"
	"testing"

	"github.com/nvr-ai/go-pose/fields"
	"github.com/nvr-ai/go-pose/peaks"
	"github.com/nvr-ai/go-pose/skeleton"
	"github.com/nvr-ai/go-pose/test"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// horizontalField returns a 60x40 vector field pointing +x with magnitude v
// along row 20 for the given columns.
func horizontalField(v float32, cols ...int) (fields.Field, fields.Field) {
	fx, fy := fields.New(60, 40), fields.New(60, 40)
	for _, x := range cols {
		fx.Set(x, 20, v)
	}
	return fx, fy
}

func span(from, to int, skip ...int) []int {
	skipped := map[int]bool{}
	for _, s := range skip {
		skipped[s] = true
	}
	var out []int
	for x := from; x <= to; x++ {
		if !skipped[x] {
			out = append(out, x)
		}
	}
	return out
}

var (
	left  = peaks.Peak{X: 10, Y: 20, Score: 0.9, ID: 0, Part: skeleton.Neck}
	right = peaks.Peak{X: 40, Y: 20, Score: 0.8, ID: 1, Part: skeleton.RightShoulder}
)

func TestEvaluateAligned(t *testing.T) {
	fx, fy := horizontalField(1, span(10, 40)...)

	score, ok := Evaluate(fx, fy, left, right, 100, DefaultOptions())
	assert.True(t, ok)
	assert.InDelta(t, 1.0, score, 1e-9)

	score, ok = Evaluate(fx, fy, right, left, 100, DefaultOptions())
	assert.False(t, ok, "opposite direction")
	assert.InDelta(t, -1.0, score, 1e-9)
}

func TestEvaluateDistancePrior(t *testing.T) {
	fx, fy := horizontalField(1, span(10, 40)...)

	// 0.5*40/30 - 1 = -1/3.
	score, ok := Evaluate(fx, fy, left, right, 40, DefaultOptions())
	assert.True(t, ok)
	assert.InDelta(t, 2.0/3.0, score, 1e-9)

	fx, fy = horizontalField(0.5, span(10, 40)...)
	score, ok = Evaluate(fx, fy, left, right, 20, DefaultOptions())
	assert.False(t, ok)
	assert.Less(t, score, 0.0)
}

func TestEvaluateAlignedCountIsStrict(t *testing.T) {
	// Samples land on columns 10 13 17 20 23 27 30 33 37 40.
	fx, fy := horizontalField(1, span(10, 40, 37, 40)...)
	score, ok := Evaluate(fx, fy, left, right, 100, DefaultOptions())
	assert.False(t, ok, "8 of 10 aligned samples is not more than 80%")
	assert.InDelta(t, 0.8, score, 1e-9)

	fx, fy = horizontalField(1, span(10, 40, 40)...)
	score, ok = Evaluate(fx, fy, left, right, 100, DefaultOptions())
	assert.True(t, ok)
	assert.InDelta(t, 0.9, score, 1e-9)
}

func TestEvaluateBelowLineThreshold(t *testing.T) {
	fx, fy := horizontalField(0.04, span(10, 40)...)
	score, ok := Evaluate(fx, fy, left, right, 100, DefaultOptions())
	assert.False(t, ok)
	assert.Greater(t, score, 0.0, "rejected by the alignment count alone")
}

func TestEvaluateZeroDistance(t *testing.T) {
	fx, fy := horizontalField(1, span(0, 59)...)
	same := left
	same.ID = 5

	score, ok := Evaluate(fx, fy, left, same, 100, DefaultOptions())
	assert.False(t, ok)
	assert.False(t, math.IsNaN(score))
	assert.False(t, math.IsInf(score, 0))
}

func TestScoreReportsPeakScores(t *testing.T) {
	vf := fields.NewStack(skeleton.VectorFieldChannels, 60, 40)
	limb := skeleton.Limbs[0]
	for _, x := range span(10, 40) {
		vf[limb.ChannelX].Set(x, 20, 1)
	}

	byPart := make([][]peaks.Peak, skeleton.PartCount)
	byPart[limb.A] = []peaks.Peak{left}
	byPart[limb.B] = []peaks.Peak{right}

	conns, err := Score(vf, byPart, 100, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, conns, skeleton.LimbCount)
	require.Len(t, conns[0], 1)

	c := conns[0][0]
	assert.Equal(t, 0, c.PeakA)
	assert.Equal(t, 1, c.PeakB)
	assert.Equal(t, 0, c.IndexA)
	assert.Equal(t, 0, c.IndexB)
	assert.InDelta(t, 1.0, c.Score, 1e-9)
	assert.InDelta(t, 1.0+0.9+0.8, c.Total, 1e-6)

	for k := 1; k < skeleton.LimbCount; k++ {
		assert.Empty(t, conns[k], "limb %d has an empty side", k)
	}
}

func TestScoreInputErrors(t *testing.T) {
	byPart := make([][]peaks.Peak, skeleton.PartCount)

	_, err := Score(fields.NewStack(4, 8, 8), byPart, 8, DefaultOptions())
	assert.True(t, errors.Is(err, fields.ErrShapeMismatch))

	_, err = Score(fields.NewStack(skeleton.VectorFieldChannels, 8, 8), byPart[:3], 8, DefaultOptions())
	assert.True(t, errors.Is(err, fields.ErrShapeMismatch))

	opt := DefaultOptions()
	opt.Samples = 0
	_, err = Score(fields.NewStack(skeleton.VectorFieldChannels, 8, 8), byPart, 8, opt)
	assert.Error(t, err)
}

func TestScoreScenePerson(t *testing.T) {
	scene := test.NewScene(200, 160).AddPerson(0, 0, 0.9).AddPerson(80, 0, 0.9)

	byPart := make([][]peaks.Peak, skeleton.PartCount)
	id := 0
	for part := range byPart {
		for _, p := range scene.People {
			pt := p.Parts[part]
			byPart[part] = append(byPart[part], peaks.Peak{X: pt.X, Y: pt.Y, Score: 0.9, ID: id, Part: skeleton.PartType(part)})
			id++
		}
	}

	opt := DefaultOptions()
	opt.Workers = 3
	conns, err := Score(scene.VectorFields(), byPart, scene.Height, opt)
	require.NoError(t, err)

	for k, limb := range skeleton.Limbs {
		require.Len(t, conns[k], 2, "limb %s", limb)
		for _, c := range conns[k] {
			assert.Equal(t, c.IndexA, c.IndexB, "limb %s joined two people", limb)
			assert.InDelta(t, 1.0, c.Score, 1e-6)
		}
	}
	assert.Equal(t, image.Pt(130, 55), scene.People[1].Parts[skeleton.Neck])
}
