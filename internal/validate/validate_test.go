package validate

import (
	"testing"

	"github.com/humancognome/textpbm/internal/disassemble"
)

func TestDisassemblyNoMismatches(t *testing.T) {
	tokens := []string{"S", "the", "whale", "E"}
	pbm := disassemble.Disassemble(tokens)

	if mismatches := Disassembly(tokens, pbm); len(mismatches) != 0 {
		t.Errorf("Disassembly = %v, want no mismatches", mismatches)
	}
}

func TestDisassemblyDetectsCountMismatch(t *testing.T) {
	tokens := []string{"S", "a", "b", "a", "b", "E"}
	pbm := disassemble.Disassemble(tokens)
	for i, b := range pbm.Bonds {
		if b.A == "a" && b.B == "b" {
			pbm.Bonds[i].Count = 1
		}
	}

	mismatches := Disassembly(tokens, pbm)
	if len(mismatches) == 0 {
		t.Fatal("expected a count mismatch to be detected")
	}
}

func TestDBRoundtripNoMismatches(t *testing.T) {
	tokens := []string{"S", "the", "whale", "E"}
	pbm := disassemble.Disassemble(tokens)

	if mismatches := DBRoundtrip(pbm, pbm); len(mismatches) != 0 {
		t.Errorf("DBRoundtrip = %v, want no mismatches", mismatches)
	}
}

func TestDBRoundtripDetectsMissingBond(t *testing.T) {
	tokens := []string{"S", "the", "whale", "E"}
	pbm := disassemble.Disassemble(tokens)
	loaded := disassemble.PBM{Bonds: pbm.Bonds[:len(pbm.Bonds)-1]}

	mismatches := DBRoundtrip(pbm, loaded)
	if len(mismatches) == 0 {
		t.Fatal("expected a missing bond to be detected")
	}
}

func TestWordSequenceMatchesIgnoresWhitespaceAndCase(t *testing.T) {
	if !WordSequenceMatches("The Whale\nSwims", "the whale swims") {
		t.Error("expected normalized texts to match")
	}
}

func TestWordSequenceMatchesDetectsRealDifference(t *testing.T) {
	if WordSequenceMatches("the whale swims", "the shark swims") {
		t.Error("expected differing texts to not match")
	}
}

func TestTokenCoverage(t *testing.T) {
	tokens := []string{"AB.AB.AA.AA.AA", "AA.AA.AA.AA.Aw", "AA.AA.AA.AA.AK", "AB.AB.AA.AA.AB"}
	isPunct := func(id string) bool { return id == "AA.AA.AA.AA.Aw" }
	isWS := func(id string) bool { return id == "AA.AA.AA.AA.AK" }

	cov := TokenCoverage(tokens, isPunct, isWS)
	if cov.Total != 4 || cov.Words != 2 || cov.Punctuation != 1 || cov.StructuralWS != 1 {
		t.Errorf("TokenCoverage = %+v", cov)
	}
}
