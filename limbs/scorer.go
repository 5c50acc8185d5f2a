// Package limbs - scores candidate limb connections between part peaks by
// integrating the limb's vector field along the joining segment.
package limbs

import (
	"fmt"
	"math"

	"github.com/nvr-ai/go-pose/fields"
	"github.com/nvr-ai/go-pose/peaks"
	"github.com/nvr-ai/go-pose/skeleton"
	"github.com/pkg/errors"
)

// Connection is a scored pairing of one peak of a limb's start part with one
// peak of its end part.
type Connection struct {
	// PeakA is the global ID of the start peak.
	PeakA int `json:"peak_a"`
	// PeakB is the global ID of the end peak.
	PeakB int `json:"peak_b"`
	// IndexA is the position of the start peak in its part's list.
	IndexA int `json:"index_a"`
	// IndexB is the position of the end peak in its part's list.
	IndexB int `json:"index_b"`
	// Score is the line integral with the distance prior, used for ranking.
	Score float64 `json:"score"`
	// Total is Score plus both peak scores.
	Total float64 `json:"total"`
}

// String describes the connection.
func (c Connection) String() string {
	return fmt.Sprintf("%d->%d (%.3f)", c.PeakA, c.PeakB, c.Score)
}

// Options configures connection scoring.
type Options struct {
	// Samples is the number of points sampled along each segment.
	Samples int
	// LineThreshold is the exclusive lower bound for a sample to count as aligned.
	LineThreshold float64
	// AlignedRatio is the fraction of Samples that must be aligned, compared
	// strictly.
	AlignedRatio float64
	// DistanceRatio scales the image height into the distance beyond which
	// long connections are penalised.
	DistanceRatio float64
	// MinNorm is the lower clamp on segment length.
	MinNorm float64
	// Workers bounds the number of limbs scored concurrently.
	Workers int
}

// DefaultOptions returns 10 samples, threshold 0.05, ratio 0.8, distance
// ratio 0.5 and minimum norm 0.001.
func DefaultOptions() Options {
	return Options{
		Samples:       10,
		LineThreshold: 0.05,
		AlignedRatio:  0.8,
		DistanceRatio: 0.5,
		MinNorm:       0.001,
	}
}

// Score evaluates every (start, end) peak pair of every limb and keeps the
// pairs that pass both acceptance criteria.
//
// Arguments:
//   - vectorFields: skeleton.VectorFieldChannels channels at the peak resolution.
//   - byPart: Peaks per part as returned by peaks.Detect.
//   - height: Image height used by the distance prior.
//   - opt: Sampling and acceptance parameters.
//
// Returns:
//   - [][]Connection: skeleton.LimbCount lists of accepted candidates in
//     generation order (start index major, end index minor).
//   - error: fields.ErrShapeMismatch if the inputs are too short.
func Score(vectorFields fields.Stack, byPart [][]peaks.Peak, height int, opt Options) ([][]Connection, error) {
	if len(vectorFields) < skeleton.VectorFieldChannels {
		return nil, errors.Wrapf(fields.ErrShapeMismatch, "need %d vector field channels, got %d", skeleton.VectorFieldChannels, len(vectorFields))
	}
	if len(byPart) < skeleton.PartCount {
		return nil, errors.Wrapf(fields.ErrShapeMismatch, "need peaks for %d parts, got %d", skeleton.PartCount, len(byPart))
	}
	if opt.Samples <= 0 {
		return nil, errors.Errorf("samples must be positive, got %d", opt.Samples)
	}

	out := make([][]Connection, skeleton.LimbCount)
	fields.Parallel(skeleton.LimbCount, opt.Workers, func(start, end int) {
		for k := start; k < end; k++ {
			limb := skeleton.Limbs[k]
			out[k] = scoreLimb(
				vectorFields[limb.ChannelX], vectorFields[limb.ChannelY],
				byPart[limb.A], byPart[limb.B], height, opt,
			)
		}
	})
	return out, nil
}

func scoreLimb(fx, fy fields.Field, candA, candB []peaks.Peak, height int, opt Options) []Connection {
	if len(candA) == 0 || len(candB) == 0 {
		return nil
	}

	var out []Connection
	for i, a := range candA {
		for j, b := range candB {
			score, ok := Evaluate(fx, fy, a, b, height, opt)
			if !ok {
				continue
			}
			out = append(out, Connection{
				PeakA:  a.ID,
				PeakB:  b.ID,
				IndexA: i,
				IndexB: j,
				Score:  score,
				Total:  score + float64(a.Score) + float64(b.Score),
			})
		}
	}
	return out
}

// Evaluate scores a single segment from a to b against the vector field
// (fx, fy). It returns the mean projection plus the distance prior and
// whether the segment is accepted.
func Evaluate(fx, fy fields.Field, a, b peaks.Peak, height int, opt Options) (float64, bool) {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	norm := math.Max(opt.MinNorm, math.Sqrt(dx*dx+dy*dy))
	ux, uy := dx/norm, dy/norm

	n := opt.Samples
	aligned := 0
	sum := 0.0
	for s := 0; s < n; s++ {
		x, y := linspace(float64(a.X), float64(b.X), n, s), linspace(float64(a.Y), float64(b.Y), n, s)
		px, py := int(math.RoundToEven(x)), int(math.RoundToEven(y))

		var vx, vy float64
		if fx.In(px, py) {
			vx = float64(fx.At(px, py))
			vy = float64(fy.At(px, py))
		}
		proj := vx*ux + vy*uy
		sum += proj
		if proj > opt.LineThreshold {
			aligned++
		}
	}

	score := sum/float64(n) + math.Min(opt.DistanceRatio*float64(height)/norm-1, 0)
	accepted := float64(aligned) > opt.AlignedRatio*float64(n) && score > 0
	return score, accepted
}

// linspace returns sample i of n evenly spaced values from start to stop
// inclusive. The last sample is stop exactly.
func linspace(start, stop float64, n, i int) float64 {
	if n == 1 {
		return start
	}
	if i == n-1 {
		return stop
	}
	step := (stop - start) / float64(n-1)
	return float64(i)*step + start
}
