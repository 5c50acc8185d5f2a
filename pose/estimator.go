// Package pose - multi-person pose estimation from OpenPose part heatmaps and
// part affinity fields.
//
// Estimate runs, in order: bicubic resampling to the target resolution,
// per-part peak detection, limb scoring, greedy matching and skeleton
// assembly. Malformed input fails before any stage runs; input without
// detectable people yields an empty Result.
package pose

import (
	"time"

	"github.com/nvr-ai/go-pose/assembly"
	"github.com/nvr-ai/go-pose/fields"
	"github.com/nvr-ai/go-pose/limbs"
	"github.com/nvr-ai/go-pose/matching"
	"github.com/nvr-ai/go-pose/peaks"
	"github.com/nvr-ai/go-pose/skeleton"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorgonia.org/tensor"
)

// Option configures an Estimator.
type Option func(*Estimator)

// WithLogger sets the logger used for per-stage debug records.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Estimator) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithParams replaces the default parameters.
func WithParams(p Params) Option {
	return func(e *Estimator) {
		e.params = p
	}
}

// WithWorkers bounds the fan-out of the parallel stages.
func WithWorkers(n int) Option {
	return func(e *Estimator) {
		e.params.Workers = n
	}
}

// Estimator turns network outputs into skeletons. It holds no per-call state
// and may be used from several goroutines.
type Estimator struct {
	params Params
	logger *zap.Logger
}

// NewEstimator creates an estimator with DefaultParams and the given options.
//
// Returns:
//   - *Estimator: The configured estimator.
//   - error: ErrInvalidParams if the resulting parameters are unusable.
//
// @example
//
//	est, err := pose.NewEstimator(pose.WithLogger(logger))
//	result, err := est.Estimate(heatmaps, pafs, 480, 640)
func NewEstimator(opts ...Option) (*Estimator, error) {
	e := &Estimator{params: DefaultParams(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.params.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Params returns the estimator's parameters.
func (e *Estimator) Params() Params {
	return e.params
}

// Estimate assembles skeletons from tensors.
//
// Arguments:
//   - heatmaps: float32 tensor of shape [19, H, W] or [1, 19, H, W].
//   - pafs: float32 tensor of shape [38, H, W] or [1, 38, H, W].
//   - height: Target height the fields are resampled to.
//   - width: Target width the fields are resampled to.
//
// Returns:
//   - *Result: Candidates and retained skeletons in target coordinates.
//   - error: ErrShapeMismatch, ErrInvalidResolution or ErrUnsupportedDtype.
func (e *Estimator) Estimate(heatmaps, pafs tensor.Tensor, height, width int) (*Result, error) {
	if height <= 0 || width <= 0 {
		return nil, errors.Wrapf(ErrInvalidResolution, "target %dx%d", width, height)
	}
	hm, err := fields.FromTensor(heatmaps, skeleton.HeatmapChannels)
	if err != nil {
		return nil, errors.Wrap(err, "heatmaps")
	}
	vf, err := fields.FromTensor(pafs, skeleton.VectorFieldChannels)
	if err != nil {
		return nil, errors.Wrap(err, "part affinity fields")
	}
	return e.EstimateFields(hm, vf, height, width)
}

// EstimateFields assembles skeletons from channel stacks. It has the same
// contract as Estimate.
func (e *Estimator) EstimateFields(heatmaps, pafs fields.Stack, height, width int) (*Result, error) {
	if err := validate(heatmaps, pafs, height, width); err != nil {
		return nil, err
	}

	start := time.Now()
	p := e.params

	hm, err := fields.ResampleStack(heatmaps, width, height, p.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "resample heatmaps")
	}
	vf, err := fields.ResampleStack(pafs, width, height, p.Workers)
	if err != nil {
		return nil, errors.Wrap(err, "resample part affinity fields")
	}
	resampled := time.Now()

	byPart, candidates, err := peaks.Detect(hm, p.peakOptions())
	if err != nil {
		return nil, errors.Wrap(err, "detect peaks")
	}
	detected := time.Now()

	scored, err := limbs.Score(vf, byPart, height, p.limbOptions())
	if err != nil {
		return nil, errors.Wrap(err, "score limbs")
	}
	selected := matching.All(scored, func(k int) (int, int) {
		limb := skeleton.Limbs[k]
		return len(byPart[limb.A]), len(byPart[limb.B])
	})
	matched := time.Now()

	a := assembly.Assemble(selected, candidates, p.assemblyOptions(), e.logger)
	skeletons := a.Result()

	e.logger.Debug("pose estimated",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("peaks", len(candidates)),
		zap.Int("candidate_connections", countConnections(scored)),
		zap.Int("selected_connections", countConnections(selected)),
		zap.Int("skeletons", len(a.Skeletons())),
		zap.Int("retained", len(skeletons)),
		zap.Duration("resample", resampled.Sub(start)),
		zap.Duration("peaks_elapsed", detected.Sub(resampled)),
		zap.Duration("limbs_elapsed", matched.Sub(detected)),
		zap.Duration("assembly_elapsed", time.Since(matched)),
	)

	return &Result{
		Width:      width,
		Height:     height,
		Candidates: candidates,
		Skeletons:  skeletons,
	}, nil
}

func validate(heatmaps, pafs fields.Stack, height, width int) error {
	if height <= 0 || width <= 0 {
		return errors.Wrapf(ErrInvalidResolution, "target %dx%d", width, height)
	}
	if err := heatmaps.Validate(skeleton.HeatmapChannels); err != nil {
		return errors.Wrap(err, "heatmaps")
	}
	if err := pafs.Validate(skeleton.VectorFieldChannels); err != nil {
		return errors.Wrap(err, "part affinity fields")
	}
	hw, hh := heatmaps.Size()
	pw, ph := pafs.Size()
	if hw != pw || hh != ph {
		return errors.Wrapf(ErrShapeMismatch, "heatmaps are %dx%d, part affinity fields are %dx%d", hw, hh, pw, ph)
	}
	return nil
}

func countConnections(lists [][]limbs.Connection) int {
	n := 0
	for _, l := range lists {
		n += len(l)
	}
	return n
}
