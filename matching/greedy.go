// Package matching - greedy one-to-one selection of limb connections.
package matching

import (
	"sort"

	"github.com/nvr-ai/go-pose/limbs"
)

// Greedy selects a conflict-free subset of one limb's candidates. Candidates
// are ranked by Score, highest first, with ties keeping their input order.
// A candidate is accepted when neither its start nor its end peak was used by
// an earlier acceptance. Selection stops after min(countA, countB)
// acceptances.
//
// Arguments:
//   - candidates: Accepted candidates of one limb in generation order.
//   - countA: Number of peaks of the limb's start part.
//   - countB: Number of peaks of the limb's end part.
//
// Returns:
//   - []limbs.Connection: The selected connections in acceptance order. The
//     input slice is not modified.
func Greedy(candidates []limbs.Connection, countA, countB int) []limbs.Connection {
	limit := min(countA, countB)
	if len(candidates) == 0 || limit <= 0 {
		return nil
	}

	ranked := make([]limbs.Connection, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	usedA := make(map[int]bool, limit)
	usedB := make(map[int]bool, limit)
	selected := make([]limbs.Connection, 0, limit)
	for _, c := range ranked {
		if usedA[c.IndexA] || usedB[c.IndexB] {
			continue
		}
		usedA[c.IndexA] = true
		usedB[c.IndexB] = true
		selected = append(selected, c)
		if len(selected) >= limit {
			break
		}
	}
	return selected
}

// All runs Greedy for every limb. counts returns the number of start and end
// peaks of limb k.
func All(candidates [][]limbs.Connection, counts func(k int) (int, int)) [][]limbs.Connection {
	out := make([][]limbs.Connection, len(candidates))
	for k, list := range candidates {
		a, b := counts(k)
		out[k] = Greedy(list, a, b)
	}
	return out
}
