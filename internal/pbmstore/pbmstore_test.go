package pbmstore

import (
	"context"
	"path/filepath"
	"sort"
	"testing"

	"github.com/humancognome/textpbm/internal/disassemble"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pbm.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePBM() disassemble.PBM {
	tokens := []string{
		"AA.AE.AF.AA.AA",
		"AB.AB.AA.AA.AA",
		"AA.AA.AA.AA.Aw",
		"AA.AE.AA.AI",
		"AA.AE.AF.AA.AB",
	}
	return disassemble.Disassemble(tokens)
}

func TestStoreAndLoadPBMRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pbm := samplePBM()
	meta := DocumentMeta{Name: "Moby Dick", CenturyCode: "AS", Category: "book", Subcategory: "novel"}

	doc, err := s.StorePBM(ctx, meta, pbm)
	if err != nil {
		t.Fatalf("StorePBM: %v", err)
	}
	if doc.TokenID == "" {
		t.Fatal("StorePBM returned empty token id")
	}

	loaded, loadedDoc, err := s.LoadPBM(ctx, doc.DocID)
	if err != nil {
		t.Fatalf("LoadPBM: %v", err)
	}
	if loadedDoc.Meta.Name != "Moby Dick" {
		t.Errorf("loaded name = %q", loadedDoc.Meta.Name)
	}
	if loadedDoc.FirstFPB != pbm.FirstFPB {
		t.Errorf("loaded FirstFPB = %v, want %v", loadedDoc.FirstFPB, pbm.FirstFPB)
	}

	wantTriples := tripleSet(pbm.Bonds)
	gotTriples := tripleSet(loaded.Bonds)
	if !equalTripleSets(wantTriples, gotTriples) {
		t.Errorf("round trip bond mismatch:\nwant %v\ngot  %v", wantTriples, gotTriples)
	}
}

func TestStoreAllocatesDistinctAddresses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	meta := DocumentMeta{Name: "Doc A", CenturyCode: "AS"}
	doc1, err := s.StorePBM(ctx, meta, samplePBM())
	if err != nil {
		t.Fatalf("StorePBM: %v", err)
	}
	meta.Name = "Doc B"
	doc2, err := s.StorePBM(ctx, meta, samplePBM())
	if err != nil {
		t.Fatalf("StorePBM: %v", err)
	}
	if doc1.TokenID == doc2.TokenID {
		t.Errorf("expected distinct document addresses, got %q twice", doc1.TokenID)
	}
}

func TestLoadUnknownDocument(t *testing.T) {
	s := openTestStore(t)
	if _, _, err := s.LoadPBM(context.Background(), 9999); err == nil {
		t.Error("LoadPBM of unknown doc id should error")
	}
}

func TestListDocumentsReportsStartersAndBonds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pbm := samplePBM()
	doc1, err := s.StorePBM(ctx, DocumentMeta{Name: "Doc A", CenturyCode: "AS"}, pbm)
	if err != nil {
		t.Fatalf("StorePBM: %v", err)
	}
	doc2, err := s.StorePBM(ctx, DocumentMeta{Name: "Doc B", CenturyCode: "AS"}, pbm)
	if err != nil {
		t.Fatalf("StorePBM: %v", err)
	}

	rows, err := s.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("ListDocuments returned %d rows, want 2", len(rows))
	}
	byID := map[int64]DocumentRow{rows[0].DocID: rows[0], rows[1].DocID: rows[1]}
	for _, id := range []int64{doc1.DocID, doc2.DocID} {
		row, ok := byID[id]
		if !ok {
			t.Fatalf("ListDocuments missing doc id %d", id)
		}
		if row.Bonds != len(pbm.Bonds) {
			t.Errorf("doc %d Bonds = %d, want %d", id, row.Bonds, len(pbm.Bonds))
		}
		if row.Starters == 0 {
			t.Errorf("doc %d Starters = 0, want > 0", id)
		}
	}
}

func TestUpdateMetadataMergesAndRemoves(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc, err := s.StorePBM(ctx, DocumentMeta{
		Name: "Doc A", CenturyCode: "AS",
		Metadata: map[string]any{"author": "Melville", "year": float64(1851)},
	}, samplePBM())
	if err != nil {
		t.Fatalf("StorePBM: %v", err)
	}

	removed, err := s.UpdateMetadata(ctx, doc.DocID, map[string]any{"genre": "novel"}, []string{"year"})
	if err != nil {
		t.Fatalf("UpdateMetadata: %v", err)
	}
	if removed != 1 {
		t.Errorf("UpdateMetadata removed = %d, want 1", removed)
	}

	_, loadedDoc, err := s.LoadPBM(ctx, doc.DocID)
	if err != nil {
		t.Fatalf("LoadPBM: %v", err)
	}
	if loadedDoc.Meta.Metadata["genre"] != "novel" {
		t.Errorf("metadata genre = %v, want novel", loadedDoc.Meta.Metadata["genre"])
	}
	if loadedDoc.Meta.Metadata["author"] != "Melville" {
		t.Errorf("metadata author = %v, want Melville (untouched)", loadedDoc.Meta.Metadata["author"])
	}
	if _, ok := loadedDoc.Meta.Metadata["year"]; ok {
		t.Error("metadata year should have been removed")
	}
}

func TestUpdateMetadataUnknownDocument(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.UpdateMetadata(context.Background(), 9999, map[string]any{"k": "v"}, nil); err == nil {
		t.Error("UpdateMetadata of unknown doc id should error")
	}
}

type triple struct{ a, b string; count int }

func tripleSet(bonds []disassemble.Bond) []triple {
	out := make([]triple, len(bonds))
	for i, b := range bonds {
		out[i] = triple{b.A, b.B, b.Count}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].a != out[j].a {
			return out[i].a < out[j].a
		}
		return out[i].b < out[j].b
	})
	return out
}

func equalTripleSets(a, b []triple) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
