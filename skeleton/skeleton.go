package skeleton

// Slot holds the peak assigned to one body part of a skeleton.
type Slot struct {
	// PeakID is the global identifier of the peak. Only meaningful when Filled.
	PeakID int
	// Filled reports whether a peak has been assigned.
	Filled bool
}

// Skeleton is one assembled person hypothesis: a slot per part type plus
// aggregate confidence.
type Skeleton struct {
	// Parts holds the peak for each part type, indexed by PartType.
	Parts [PartCount]Slot
	// TotalScore is the sum of contributing peak and connection scores.
	TotalScore float64
	// PartCount is the number of parts credited to this skeleton.
	PartCount int
}

// New returns a skeleton with parts a and b filled.
func New(a PartType, peakA int, b PartType, peakB int, score float64) Skeleton {
	var s Skeleton
	s.Set(a, peakA)
	s.Set(b, peakB)
	s.PartCount = 2
	s.TotalScore = score
	return s
}

// Get returns the peak ID filling part p.
func (s *Skeleton) Get(p PartType) (int, bool) {
	slot := s.Parts[p]
	return slot.PeakID, slot.Filled
}

// Has reports whether part p is filled with peakID.
func (s *Skeleton) Has(p PartType, peakID int) bool {
	slot := s.Parts[p]
	return slot.Filled && slot.PeakID == peakID
}

// Set assigns peakID to part p.
func (s *Skeleton) Set(p PartType, peakID int) {
	s.Parts[p] = Slot{PeakID: peakID, Filled: true}
}

// Filled returns the number of filled slots. It can differ from PartCount,
// which counts credited parts the way the assembler accumulates them.
func (s *Skeleton) Filled() int {
	n := 0
	for _, slot := range s.Parts {
		if slot.Filled {
			n++
		}
	}
	return n
}

// Disjoint reports whether s and o have no part type filled in both.
func (s *Skeleton) Disjoint(o *Skeleton) bool {
	for i := range s.Parts {
		if s.Parts[i].Filled && o.Parts[i].Filled {
			return false
		}
	}
	return true
}

// Absorb merges the slots and aggregates of o into s. Slots filled in
// either skeleton stay filled; callers check Disjoint first.
func (s *Skeleton) Absorb(o *Skeleton) {
	for i := range s.Parts {
		if !s.Parts[i].Filled && o.Parts[i].Filled {
			s.Parts[i] = o.Parts[i]
		}
	}
	s.TotalScore += o.TotalScore
	s.PartCount += o.PartCount
}

// MeanScore returns TotalScore divided by PartCount, or 0 when empty.
func (s *Skeleton) MeanScore() float64 {
	if s.PartCount == 0 {
		return 0
	}
	return s.TotalScore / float64(s.PartCount)
}

// Row returns the skeleton as a 20-column row: peak IDs for the 18 parts with
// -1 for unfilled slots, followed by TotalScore and PartCount.
func (s *Skeleton) Row() [PartCount + 2]float64 {
	var row [PartCount + 2]float64
	for i, slot := range s.Parts {
		if slot.Filled {
			row[i] = float64(slot.PeakID)
		} else {
			row[i] = -1
		}
	}
	row[PartCount] = s.TotalScore
	row[PartCount+1] = float64(s.PartCount)
	return row
}
