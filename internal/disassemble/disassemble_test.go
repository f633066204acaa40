package disassemble

import "testing"

func bondCount(pbm PBM, a, b string) (int, bool) {
	for _, bond := range pbm.Bonds {
		if bond.A == a && bond.B == b {
			return bond.Count, true
		}
	}
	return 0, false
}

func TestDisassembleCountsAdjacentPairs(t *testing.T) {
	tokens := []string{"S", "the", "whale", "swims", "E"}
	pbm := Disassemble(tokens)

	if pbm.TotalPairs != 4 {
		t.Errorf("TotalPairs = %d, want 4", pbm.TotalPairs)
	}
	if pbm.FirstFPB != [2]string{"S", "the"} {
		t.Errorf("FirstFPB = %v, want [S the]", pbm.FirstFPB)
	}
	if len(pbm.UniqueTokens) != 5 {
		t.Errorf("len(UniqueTokens) = %d, want 5", len(pbm.UniqueTokens))
	}
	if c, ok := bondCount(pbm, "the", "whale"); !ok || c != 1 {
		t.Errorf("bond(the,whale) = %d, %v", c, ok)
	}
}

func TestDisassembleRepeatedPair(t *testing.T) {
	tokens := []string{"S", "a", "b", "a", "b", "E"}
	pbm := Disassemble(tokens)

	if c, ok := bondCount(pbm, "a", "b"); !ok || c != 2 {
		t.Errorf("bond(a,b) = %d, %v, want 2", c, ok)
	}
	if pbm.TotalPairs != 5 {
		t.Errorf("TotalPairs = %d, want 5", pbm.TotalPairs)
	}
}

func TestDisassembleEmptyStream(t *testing.T) {
	tokens := []string{"S", "E"}
	pbm := Disassemble(tokens)
	if pbm.TotalPairs != 1 {
		t.Errorf("TotalPairs = %d, want 1", pbm.TotalPairs)
	}
	if len(pbm.Bonds) != 1 || pbm.Bonds[0].A != "S" || pbm.Bonds[0].B != "E" {
		t.Errorf("Bonds = %v, want single S->E bond", pbm.Bonds)
	}
}
