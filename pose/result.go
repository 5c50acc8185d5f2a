package pose

import (
	"github.com/nvr-ai/go-pose/peaks"
	"github.com/nvr-ai/go-pose/skeleton"
)

// Result is the output of one Estimate call.
type Result struct {
	// Width is the resolution the coordinates refer to.
	Width int `json:"width"`
	// Height is the resolution the coordinates refer to.
	Height int `json:"height"`
	// Candidates holds every detected peak; a peak's ID is its index.
	Candidates []peaks.Peak `json:"candidates"`
	// Skeletons holds the retained skeletons in creation order.
	Skeletons []skeleton.Skeleton `json:"-"`
}

// Keypoint is a located body part of a person.
type Keypoint struct {
	Part   skeleton.PartType `json:"part"`
	Name   string            `json:"name"`
	X      float64           `json:"x"`
	Y      float64           `json:"y"`
	Score  float32           `json:"score"`
	PeakID int               `json:"peak_id"`
}

// Person is a skeleton resolved against the candidate list.
type Person struct {
	// Keypoints holds the filled parts in part order.
	Keypoints []Keypoint `json:"keypoints"`
	// Score is the skeleton's TotalScore.
	Score float64 `json:"score"`
	// PartCount is the skeleton's PartCount.
	PartCount int `json:"part_count"`
}

// Keypoint returns the keypoint of part p.
func (p Person) Keypoint(part skeleton.PartType) (Keypoint, bool) {
	for _, kp := range p.Keypoints {
		if kp.Part == part {
			return kp, true
		}
	}
	return Keypoint{}, false
}

// Map returns a copy of p with every keypoint moved by fn.
func (p Person) Map(fn func(x, y float64) (float64, float64)) Person {
	out := p
	out.Keypoints = make([]Keypoint, len(p.Keypoints))
	for i, kp := range p.Keypoints {
		kp.X, kp.Y = fn(kp.X, kp.Y)
		out.Keypoints[i] = kp
	}
	return out
}

// People resolves every skeleton's slots to located keypoints.
func (r *Result) People() []Person {
	out := make([]Person, 0, len(r.Skeletons))
	for i := range r.Skeletons {
		s := &r.Skeletons[i]
		person := Person{Score: s.TotalScore, PartCount: s.PartCount}
		for part, slot := range s.Parts {
			if !slot.Filled || slot.PeakID < 0 || slot.PeakID >= len(r.Candidates) {
				continue
			}
			c := r.Candidates[slot.PeakID]
			person.Keypoints = append(person.Keypoints, Keypoint{
				Part:   skeleton.PartType(part),
				Name:   skeleton.PartType(part).String(),
				X:      float64(c.X),
				Y:      float64(c.Y),
				Score:  c.Score,
				PeakID: c.ID,
			})
		}
		out = append(out, person)
	}
	return out
}

// Subset returns the skeletons as rows of 18 peak IDs (-1 when unfilled)
// followed by the total score and the part count.
func (r *Result) Subset() [][skeleton.PartCount + 2]float64 {
	out := make([][skeleton.PartCount + 2]float64, len(r.Skeletons))
	for i := range r.Skeletons {
		out[i] = r.Skeletons[i].Row()
	}
	return out
}

// CandidateRows returns the candidates as (x, y, score, id) rows.
func (r *Result) CandidateRows() [][4]float64 {
	out := make([][4]float64, len(r.Candidates))
	for i, c := range r.Candidates {
		out[i] = [4]float64{float64(c.X), float64(c.Y), float64(c.Score), float64(c.ID)}
	}
	return out
}
