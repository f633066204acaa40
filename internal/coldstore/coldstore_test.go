package coldstore

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cold.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedWord(t *testing.T, s *Store, tokenID, lower, category string) {
	t.Helper()
	if _, err := s.db.Exec(
		`INSERT INTO vocab_words (token_id, surface_lower, category) VALUES (?, ?, ?)`,
		tokenID, lower, category); err != nil {
		t.Fatalf("seed word: %v", err)
	}
}

func TestLookupWordHitAndMiss(t *testing.T) {
	s := openTestStore(t)
	seedWord(t, s, "AB.AB.AA.AA.AA", "whale", "word")

	rec, ok, err := s.LookupWord(context.Background(), "whale")
	if err != nil {
		t.Fatalf("LookupWord: %v", err)
	}
	if !ok || rec.TokenID != "AB.AB.AA.AA.AA" {
		t.Errorf("LookupWord hit = %+v, %v", rec, ok)
	}

	_, ok, err = s.LookupWord(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("LookupWord: %v", err)
	}
	if ok {
		t.Error("LookupWord of unseeded surface should miss")
	}
}

func TestMintVarAllocatesDistinctSequentialAddresses(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id1, err := s.MintVar(ctx, MintVarRequest{Surface: "xyzzy", Reason: "sic"})
	if err != nil {
		t.Fatalf("MintVar: %v", err)
	}
	id2, err := s.MintVar(ctx, MintVarRequest{Surface: "plugh", Reason: "sic"})
	if err != nil {
		t.Fatalf("MintVar: %v", err)
	}
	if id1 == id2 {
		t.Errorf("MintVar returned duplicate addresses: %q", id1)
	}
	if id1 == "" || id2 == "" {
		t.Error("MintVar returned an empty token id")
	}
}

func TestMintVarWritesAuditLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tokenID, err := s.MintVar(ctx, MintVarRequest{
		Surface: "glorp", Reason: "sic", DocumentName: "doc1", LineNumber: 3, CharOffset: 12,
	})
	if err != nil {
		t.Fatalf("MintVar: %v", err)
	}

	var surface, reason, doc string
	row := s.db.QueryRow(`SELECT surface, reason, document_name FROM var_log WHERE token_id = ?`, tokenID)
	if err := row.Scan(&surface, &reason, &doc); err != nil {
		t.Fatalf("scan var_log: %v", err)
	}
	if surface != "glorp" || reason != "sic" || doc != "doc1" {
		t.Errorf("var_log row = %q %q %q", surface, reason, doc)
	}
}

func TestForwardWalkNoMatch(t *testing.T) {
	s := openTestStore(t)
	res, err := s.ForwardWalk(context.Background(), "", "AA.AA.AA.AA.AA")
	if err != nil {
		t.Fatalf("ForwardWalk: %v", err)
	}
	if res.Status != ForwardNoMatch {
		t.Errorf("Status = %v, want ForwardNoMatch", res.Status)
	}
}

func TestForwardWalkPartialThenComplete(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.db.Exec(
		`INSERT INTO boilerplate_sequences (prefix, next_tokens, is_terminal, token_id) VALUES (?, ?, 0, NULL)`,
		"AA.AA.AA.AA.AA", ""); err != nil {
		t.Fatalf("seed boilerplate: %v", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO boilerplate_sequences (prefix, next_tokens, is_terminal, token_id) VALUES (?, ?, 1, ?)`,
		"AA.AA.AA.AA.AA|AA.AA.AA.AA.AB", "", "AA.AE.AA.AA"); err != nil {
		t.Fatalf("seed boilerplate: %v", err)
	}

	res, err := s.ForwardWalk(context.Background(), "", "AA.AA.AA.AA.AA")
	if err != nil {
		t.Fatalf("ForwardWalk: %v", err)
	}
	if res.Status != ForwardPartial {
		t.Errorf("Status = %v, want ForwardPartial", res.Status)
	}

	res, err = s.ForwardWalk(context.Background(), "AA.AA.AA.AA.AA", "AA.AA.AA.AA.AB")
	if err != nil {
		t.Fatalf("ForwardWalk: %v", err)
	}
	if res.Status != ForwardComplete || res.TokenID != "AA.AE.AA.AA" {
		t.Errorf("ForwardWalk complete = %+v", res)
	}
}

func TestCountsReflectsSeededRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	words, labels, chars, err := s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if words != 0 || labels != 0 || chars != 0 {
		t.Fatalf("Counts on empty store = %d, %d, %d, want all zero", words, labels, chars)
	}

	seedWord(t, s, "AB.AB.AA.AA.AA", "whale", "word")
	if _, err := s.db.Exec(
		`INSERT INTO vocab_labels (token_id, surface_exact, category) VALUES (?, ?, ?)`,
		"AB.AB.AA.AA.AB", "Ishmael", "label"); err != nil {
		t.Fatalf("seed label: %v", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO vocab_chars (token_id, byte_value, category) VALUES (?, ?, ?)`,
		"AA.AA.AA.AA.AB", 97, "char"); err != nil {
		t.Fatalf("seed char: %v", err)
	}

	words, labels, chars, err = s.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if words != 1 || labels != 1 || chars != 1 {
		t.Errorf("Counts after seeding = %d, %d, %d, want 1, 1, 1", words, labels, chars)
	}
}
