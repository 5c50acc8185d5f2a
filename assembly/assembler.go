// Package assembly - groups matched limb connections into person skeletons.
package assembly

import (
	"github.com/nvr-ai/go-pose/limbs"
	"github.com/nvr-ai/go-pose/peaks"
	"github.com/nvr-ai/go-pose/skeleton"
	"go.uber.org/zap"
)

// Options configures assembly and the final filter.
type Options struct {
	// BodyLimbs is the number of leading limbs allowed to start a new skeleton.
	// The remaining limbs only extend or merge existing ones.
	BodyLimbs int
	// MinParts is the minimum PartCount of a retained skeleton.
	MinParts int
	// MinMeanScore is the minimum TotalScore/PartCount of a retained skeleton.
	MinMeanScore float64
}

// DefaultOptions returns 17 body limbs, 4 parts and mean score 0.4.
func DefaultOptions() Options {
	return Options{
		BodyLimbs:    skeleton.BodyLimbCount,
		MinParts:     4,
		MinMeanScore: 0.4,
	}
}

// Assembler accumulates skeletons connection by connection. It is not safe
// for concurrent use.
type Assembler struct {
	opt        Options
	candidates []peaks.Peak
	skeletons  []skeleton.Skeleton
	logger     *zap.Logger
}

// New creates an assembler over the flattened candidate list, where a peak's
// ID is its index. A nil logger disables logging.
func New(candidates []peaks.Peak, opt Options, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{opt: opt, candidates: candidates, logger: logger}
}

// Connect applies one accepted connection of limb k.
//
// Skeletons holding the connection's start peak in the start slot or its end
// peak in the end slot are matched, in skeleton order:
//   - one match: the end slot is filled if it holds a different peak.
//   - two matches with disjoint slots: the second is merged into the first.
//   - two overlapping matches: the first gets the end slot.
//   - no match: a new skeleton is started if k is a body limb.
func (a *Assembler) Connect(k int, c limbs.Connection) {
	limb := skeleton.Limbs[k]

	var found []int
	for i := range a.skeletons {
		s := &a.skeletons[i]
		if s.Has(limb.A, c.PeakA) || s.Has(limb.B, c.PeakB) {
			found = append(found, i)
		}
	}
	if len(found) > 2 {
		a.logger.Warn("connection matches more than two skeletons",
			zap.Stringer("limb", limb),
			zap.Stringer("connection", c),
			zap.Ints("skeletons", found),
		)
		found = found[:2]
	}

	switch len(found) {
	case 1:
		s := &a.skeletons[found[0]]
		if !s.Has(limb.B, c.PeakB) {
			a.extend(s, limb.B, c)
		}
	case 2:
		s1, s2 := &a.skeletons[found[0]], &a.skeletons[found[1]]
		if s1.Disjoint(s2) {
			s1.Absorb(s2)
			s1.TotalScore += c.Score
			a.skeletons = append(a.skeletons[:found[1]], a.skeletons[found[1]+1:]...)
		} else {
			a.extend(s1, limb.B, c)
		}
	default:
		if k < a.opt.BodyLimbs {
			score := a.peakScore(c.PeakA) + a.peakScore(c.PeakB) + c.Score
			a.skeletons = append(a.skeletons, skeleton.New(limb.A, c.PeakA, limb.B, c.PeakB, score))
		}
	}
}

func (a *Assembler) extend(s *skeleton.Skeleton, part skeleton.PartType, c limbs.Connection) {
	s.Set(part, c.PeakB)
	s.PartCount++
	s.TotalScore += a.peakScore(c.PeakB) + c.Score
}

func (a *Assembler) peakScore(id int) float64 {
	if id < 0 || id >= len(a.candidates) {
		return 0
	}
	return float64(a.candidates[id].Score)
}

// Skeletons returns the skeletons accumulated so far, before filtering.
func (a *Assembler) Skeletons() []skeleton.Skeleton {
	return a.skeletons
}

// Result returns the skeletons that pass the part count and mean score
// filter, in creation order.
func (a *Assembler) Result() []skeleton.Skeleton {
	out := make([]skeleton.Skeleton, 0, len(a.skeletons))
	for _, s := range a.skeletons {
		if s.PartCount < a.opt.MinParts || s.MeanScore() < a.opt.MinMeanScore {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Assemble applies every limb's selected connections in topology order.
//
// Arguments:
//   - connections: Selected connections per limb, indexed like skeleton.Limbs.
//   - candidates: Flattened peaks; a peak's ID is its index.
//   - opt: Assembly and filter parameters.
//   - logger: Optional logger for inconsistent matches.
//
// Returns:
//   - *Assembler: The accumulated skeletons. Call Result for the filtered list.
func Assemble(connections [][]limbs.Connection, candidates []peaks.Peak, opt Options, logger *zap.Logger) *Assembler {
	a := New(candidates, opt, logger)
	for k := 0; k < len(connections) && k < skeleton.LimbCount; k++ {
		for _, c := range connections[k] {
			a.Connect(k, c)
		}
	}
	return a
}
