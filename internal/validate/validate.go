// Package validate implements the two mandatory correctness checks
// (spec §4.12): an independent re-count of the disassembler's bond
// output, and a round-trip comparison of a persisted PBM against the
// in-memory one. Ported from the reference validate.py's
// validate_disassembly and validate_db_roundtrip.
package validate

import (
	"fmt"
	"strings"

	"github.com/humancognome/textpbm/internal/disassemble"
)

// Mismatch describes one discrepancy found by a validation check.
type Mismatch struct {
	Kind   string // "missing", "count_mismatch", "extra"
	Detail string
}

// Disassembly independently recounts adjacent pairs in tokenIDs and
// compares the result against got, bond by bond.
func Disassembly(tokenIDs []string, got disassemble.PBM) []Mismatch {
	want := disassemble.Disassemble(tokenIDs)

	wantCounts := make(map[[2]string]int, len(want.Bonds))
	for _, b := range want.Bonds {
		wantCounts[[2]string{b.A, b.B}] = b.Count
	}
	gotCounts := make(map[[2]string]int, len(got.Bonds))
	for _, b := range got.Bonds {
		gotCounts[[2]string{b.A, b.B}] = b.Count
	}

	var mismatches []Mismatch
	for pair, wantCount := range wantCounts {
		gotCount, ok := gotCounts[pair]
		if !ok {
			mismatches = append(mismatches, Mismatch{"missing", fmt.Sprintf("(%s, %s) count %d", pair[0], pair[1], wantCount)})
			continue
		}
		if gotCount != wantCount {
			mismatches = append(mismatches, Mismatch{"count_mismatch", fmt.Sprintf("(%s, %s) want %d got %d", pair[0], pair[1], wantCount, gotCount)})
		}
	}
	for pair, gotCount := range gotCounts {
		if _, ok := wantCounts[pair]; !ok {
			mismatches = append(mismatches, Mismatch{"extra", fmt.Sprintf("(%s, %s) count %d", pair[0], pair[1], gotCount)})
		}
	}
	return mismatches
}

// Triple is a bond observation independent of its storage partition,
// used to compare an in-memory PBM against one reloaded from storage.
type Triple struct {
	A, B  string
	Count int
}

// DBRoundtrip compares the bond set of an in-memory PBM against one
// just loaded back from storage, as a set of (A, B, count) triples.
func DBRoundtrip(original, loaded disassemble.PBM) []Mismatch {
	originalSet := tripleSet(original.Bonds)
	loadedSet := tripleSet(loaded.Bonds)

	var mismatches []Mismatch
	for t := range originalSet {
		if !loadedSet[t] {
			mismatches = append(mismatches, Mismatch{"missing", tripleString(t)})
		}
	}
	for t := range loadedSet {
		if !originalSet[t] {
			mismatches = append(mismatches, Mismatch{"extra", tripleString(t)})
		}
	}
	return mismatches
}

func tripleSet(bonds []disassemble.Bond) map[Triple]bool {
	out := make(map[Triple]bool, len(bonds))
	for _, b := range bonds {
		out[Triple{b.A, b.B, b.Count}] = true
	}
	return out
}

func tripleString(t Triple) string {
	return fmt.Sprintf("(%s, %s, %d)", t.A, t.B, t.Count)
}

// Coverage summarizes how a tokenized stream breaks down by kind, for
// the librarian-facing ingest report (spec §4.12's higher-level check
// is the word-sequence comparison; Coverage is supplementary telemetry
// the reference validate.py's validate_token_coverage also produces).
type Coverage struct {
	Total           int
	Words           int
	Punctuation     int
	StructuralWS    int
	SingleChars     int
	CharPercent     float64
}

// TokenCoverage classifies each token id by its root prefix and reports
// aggregate counts.
func TokenCoverage(tokenIDs []string, isPunctuation, isStructuralWS func(string) bool) Coverage {
	var c Coverage
	c.Total = len(tokenIDs)
	for _, id := range tokenIDs {
		switch {
		case isStructuralWS(id):
			c.StructuralWS++
		case isPunctuation(id):
			c.Punctuation++
		case strings.HasPrefix(id, "AB.AB."):
			c.Words++
		case strings.HasPrefix(id, "AA."):
			c.SingleChars++
		}
	}
	if c.Total > 0 {
		c.CharPercent = float64(c.SingleChars) / float64(c.Total) * 100
	}
	return c
}

// WordSequenceMatches compares the reconstructed text against the
// original after stripping whitespace and lower-casing, the
// user-visible correctness criterion spec §4.12 names explicitly.
func WordSequenceMatches(original, reconstructed string) bool {
	return normalizeForComparison(original) == normalizeForComparison(reconstructed)
}

func normalizeForComparison(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
