// Package disassemble implements the token-stream-to-PBM transform
// (spec §4.8): a single pass over adjacent Token ID pairs, ported from
// the reference disassemble.py. The algorithm is deliberately
// token-agnostic — anchors, markers, and words are all just Token IDs.
package disassemble

// Bond is one adjacent-pair observation: A precedes B, seen count times.
type Bond struct {
	A, B  string
	Count int
}

// PBM is the Pair-Bond Map produced by disassembling a token stream
// (spec §3.6): the bond multiset, the first pair observed (first-FPB),
// the set of distinct tokens, and the total pair count.
type PBM struct {
	Bonds        []Bond
	FirstFPB     [2]string
	UniqueTokens map[string]struct{}
	TotalPairs   int
}

// Disassemble walks tokenIDs (already bracketed by stream-start and
// stream-end) and builds the PBM. tokenIDs must have at least two
// elements; a single-token stream has no pairs to count.
func Disassemble(tokenIDs []string) PBM {
	pbm := PBM{UniqueTokens: make(map[string]struct{})}
	if len(tokenIDs) < 2 {
		for _, t := range tokenIDs {
			pbm.UniqueTokens[t] = struct{}{}
		}
		return pbm
	}

	counts := make(map[[2]string]int)
	order := make([][2]string, 0)

	for i := 0; i < len(tokenIDs)-1; i++ {
		a, b := tokenIDs[i], tokenIDs[i+1]
		pbm.UniqueTokens[a] = struct{}{}
		pbm.UniqueTokens[b] = struct{}{}

		pair := [2]string{a, b}
		if i == 0 {
			pbm.FirstFPB = pair
		}
		if _, seen := counts[pair]; !seen {
			order = append(order, pair)
		}
		counts[pair]++
	}

	pbm.Bonds = make([]Bond, 0, len(order))
	for _, pair := range order {
		pbm.Bonds = append(pbm.Bonds, Bond{A: pair[0], B: pair[1], Count: counts[pair]})
	}
	pbm.TotalPairs = len(tokenIDs) - 1
	return pbm
}
