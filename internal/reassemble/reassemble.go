// Package reassemble walks a loaded PBM back into a Token ID sequence
// (spec §4.10): a greedy bond walk that decrements remaining counts as
// it traverses, ported from the reference reassemble_sequence.
package reassemble

import (
	"sort"

	"github.com/humancognome/textpbm/internal/disassemble"
	"github.com/humancognome/textpbm/internal/vocab"
)

type neighbor struct {
	b         string
	remaining int
}

// Sequence walks pbm's bonds from stream-start to stream-end. Each
// token's neighbors are sorted once by their initial count (highest
// first, ties broken lexicographically by B); at each step the walk
// takes the first neighbor in that order whose remaining count is above
// zero and decrements it. The order is not re-sorted after decrements.
// The walk stops when stream-end is reached or no neighbor with
// remaining_count > 0 exists. The returned sequence excludes both
// anchors.
func Sequence(pbm disassemble.PBM) []string {
	adjacency := make(map[string][]*neighbor)
	totalCount := 0
	for _, bond := range pbm.Bonds {
		adjacency[bond.A] = append(adjacency[bond.A], &neighbor{b: bond.B, remaining: bond.Count})
		totalCount += bond.Count
	}
	for _, neighbors := range adjacency {
		sort.Slice(neighbors, func(i, j int) bool {
			if neighbors[i].remaining != neighbors[j].remaining {
				return neighbors[i].remaining > neighbors[j].remaining
			}
			return neighbors[i].b < neighbors[j].b
		})
	}

	maxSteps := totalCount + 1
	var sequence []string
	current := vocab.StreamStart

	for step := 0; step < maxSteps; step++ {
		if current == vocab.StreamEnd {
			break
		}
		if current != vocab.StreamStart {
			sequence = append(sequence, current)
		}

		neighbors := adjacency[current]
		var next *neighbor
		for _, n := range neighbors {
			if n.remaining > 0 {
				next = n
				break
			}
		}
		if next == nil {
			break
		}
		next.remaining--
		current = next.b
	}

	return sequence
}
