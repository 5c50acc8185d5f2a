package pose

import (
	"github.com/nvr-ai/go-pose/assembly"
	"github.com/nvr-ai/go-pose/limbs"
	"github.com/nvr-ai/go-pose/peaks"
	"github.com/nvr-ai/go-pose/skeleton"
	"github.com/pkg/errors"
)

// Params holds every tunable constant of the pipeline.
type Params struct {
	// Sigma is the heatmap smoothing standard deviation.
	Sigma float64 `json:"sigma"`
	// PeakThreshold is the exclusive lower bound of a smoothed peak.
	PeakThreshold float32 `json:"peak_threshold"`
	// MidSamples is the number of samples along a candidate limb.
	MidSamples int `json:"mid_samples"`
	// LineThreshold is the exclusive lower bound of an aligned sample.
	LineThreshold float64 `json:"line_threshold"`
	// AlignedRatio is the fraction of aligned samples a limb must exceed.
	AlignedRatio float64 `json:"aligned_ratio"`
	// DistanceRatio scales the image height into the limb length prior.
	DistanceRatio float64 `json:"distance_ratio"`
	// MinNorm clamps the length of degenerate limbs.
	MinNorm float64 `json:"min_norm"`
	// BodyLimbs is the number of limbs allowed to start a skeleton.
	BodyLimbs int `json:"body_limbs"`
	// MinParts is the smallest retained PartCount.
	MinParts int `json:"min_parts"`
	// MinMeanScore is the smallest retained TotalScore/PartCount.
	MinMeanScore float64 `json:"min_mean_score"`
	// Workers bounds the fan-out of the parallel stages; <= 0 uses all CPUs.
	Workers int `json:"workers"`
}

// DefaultParams returns the constants the OpenPose body model was tuned with.
func DefaultParams() Params {
	return Params{
		Sigma:         3,
		PeakThreshold: 0.1,
		MidSamples:    10,
		LineThreshold: 0.05,
		AlignedRatio:  0.8,
		DistanceRatio: 0.5,
		MinNorm:       0.001,
		BodyLimbs:     skeleton.BodyLimbCount,
		MinParts:      4,
		MinMeanScore:  0.4,
	}
}

// Validate rejects parameters the pipeline cannot run with.
func (p Params) Validate() error {
	switch {
	case p.Sigma < 0:
		return errors.Wrapf(ErrInvalidParams, "sigma %v is negative", p.Sigma)
	case p.MidSamples <= 0:
		return errors.Wrapf(ErrInvalidParams, "mid_samples %d must be positive", p.MidSamples)
	case p.MinNorm <= 0:
		return errors.Wrapf(ErrInvalidParams, "min_norm %v must be positive", p.MinNorm)
	case p.AlignedRatio < 0 || p.AlignedRatio > 1:
		return errors.Wrapf(ErrInvalidParams, "aligned_ratio %v is outside [0, 1]", p.AlignedRatio)
	case p.BodyLimbs < 0 || p.BodyLimbs > skeleton.LimbCount:
		return errors.Wrapf(ErrInvalidParams, "body_limbs %d is outside [0, %d]", p.BodyLimbs, skeleton.LimbCount)
	}
	return nil
}

func (p Params) peakOptions() peaks.Options {
	return peaks.Options{Sigma: p.Sigma, Threshold: p.PeakThreshold, Workers: p.Workers}
}

func (p Params) limbOptions() limbs.Options {
	return limbs.Options{
		Samples:       p.MidSamples,
		LineThreshold: p.LineThreshold,
		AlignedRatio:  p.AlignedRatio,
		DistanceRatio: p.DistanceRatio,
		MinNorm:       p.MinNorm,
		Workers:       p.Workers,
	}
}

func (p Params) assemblyOptions() assembly.Options {
	return assembly.Options{
		BodyLimbs:    p.BodyLimbs,
		MinParts:     p.MinParts,
		MinMeanScore: p.MinMeanScore,
	}
}
