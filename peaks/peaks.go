// Package peaks - body-part candidate detection by non-maximum suppression
// over smoothed part heatmaps.
package peaks

import (
	"fmt"

	"github.com/nvr-ai/go-pose/fields"
	"github.com/nvr-ai/go-pose/fields/kernels"
	"github.com/nvr-ai/go-pose/skeleton"
	"github.com/pkg/errors"
)

// Peak is a candidate location of one body part.
type Peak struct {
	// X is the column of the peak.
	X int `json:"x"`
	// Y is the row of the peak.
	Y int `json:"y"`
	// Score is the unsmoothed heatmap value at (X, Y).
	Score float32 `json:"score"`
	// ID is unique across all parts and equals the peak's index in the
	// flattened candidate list.
	ID int `json:"id"`
	// Part is the body part the peak was detected for.
	Part skeleton.PartType `json:"part"`
}

// String describes the peak.
func (p Peak) String() string {
	return fmt.Sprintf("%s#%d(%d,%d %.3f)", p.Part, p.ID, p.X, p.Y, p.Score)
}

// Options configures peak detection.
type Options struct {
	// Sigma is the Gaussian smoothing standard deviation.
	Sigma float64
	// Threshold is the exclusive lower bound on the smoothed value.
	Threshold float32
	// Workers bounds the number of channels scanned concurrently.
	Workers int
}

// DefaultOptions returns sigma 3 and threshold 0.1.
func DefaultOptions() Options {
	return Options{Sigma: 3, Threshold: 0.1}
}

// Detect finds peaks in the first PartCount channels of heatmaps. The
// background channel, if present, is ignored.
//
// A sample is a peak when its smoothed value is >= each of its four
// neighbours (neighbours outside the field count as 0) and > Threshold.
// Equal adjacent maxima are all reported. Peaks of a part are ordered
// row-major; IDs are assigned part by part afterwards.
//
// Arguments:
//   - heatmaps: At least skeleton.PartCount equally sized channels.
//   - opt: Smoothing, threshold and concurrency.
//
// Returns:
//   - [][]Peak: skeleton.PartCount lists, indexed by part.
//   - []Peak: All peaks flattened in ID order.
//   - error: fields.ErrShapeMismatch if there are too few channels.
func Detect(heatmaps fields.Stack, opt Options) ([][]Peak, []Peak, error) {
	if len(heatmaps) < skeleton.PartCount {
		return nil, nil, errors.Wrapf(fields.ErrShapeMismatch, "need %d part channels, got %d", skeleton.PartCount, len(heatmaps))
	}

	byPart := make([][]Peak, skeleton.PartCount)
	fields.Parallel(skeleton.PartCount, opt.Workers, func(start, end int) {
		for p := start; p < end; p++ {
			byPart[p] = scan(heatmaps[p], skeleton.PartType(p), opt)
		}
	})

	total := 0
	for _, list := range byPart {
		total += len(list)
	}
	all := make([]Peak, 0, total)
	for p := range byPart {
		for i := range byPart[p] {
			byPart[p][i].ID = len(all)
			all = append(all, byPart[p][i])
		}
	}
	return byPart, all, nil
}

// scan returns the peaks of one channel in row-major order without IDs.
func scan(raw fields.Field, part skeleton.PartType, opt Options) []Peak {
	smooth := kernels.Gaussian(raw, kernels.Options{Sigma: opt.Sigma, Edge: kernels.EdgeMirror})
	w, h := smooth.Width, smooth.Height

	neighbour := func(x, y int) float32 {
		if !smooth.In(x, y) {
			return 0
		}
		return smooth.Data[y*w+x]
	}

	var out []Peak
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := smooth.Data[y*w+x]
			if v <= opt.Threshold {
				continue
			}
			if v >= neighbour(x-1, y) && v >= neighbour(x+1, y) &&
				v >= neighbour(x, y-1) && v >= neighbour(x, y+1) {
				out = append(out, Peak{X: x, Y: y, Score: raw.Data[y*w+x], Part: part})
			}
		}
	}
	return out
}
