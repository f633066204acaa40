package resolver

import (
	"testing"

	"github.com/humancognome/textpbm/internal/scanner"
	"github.com/humancognome/textpbm/internal/vocab"
)

type fakeLookup struct {
	exact map[string]string
	lower map[string]string
	chars map[rune]string
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		exact: map[string]string{},
		lower: map[string]string{},
		chars: map[rune]string{},
	}
}

func (f *fakeLookup) LookupExact(text string) (string, bool) {
	id, ok := f.exact[text]
	return id, ok
}

func (f *fakeLookup) LookupLower(lower string) (string, bool) {
	id, ok := f.lower[lower]
	return id, ok
}

func (f *fakeLookup) LookupChar(ch rune) (string, bool) {
	id, ok := f.chars[ch]
	return id, ok
}

type fakeUnknownSink struct {
	texts []string
	chars []rune
}

func (f *fakeUnknownSink) RecordUnknown(text string, line, offset int) {
	f.texts = append(f.texts, text)
}

func (f *fakeUnknownSink) RecordUnknownChar(ch rune) {
	f.chars = append(f.chars, ch)
}

func TestResolveExactMatch(t *testing.T) {
	lk := newFakeLookup()
	lk.exact["whale"] = "AB.AB.AA.AA.AA"
	r := New(lk, nil)

	got := r.Resolve(scanner.RawToken{Text: "whale", Type: scanner.Word})
	if len(got) != 1 || got[0].TokenID != "AB.AB.AA.AA.AA" || got[0].Provenance != vocab.ProvenanceExact {
		t.Errorf("Resolve(whale) = %+v", got)
	}
}

func TestResolveCaseRelaxed(t *testing.T) {
	lk := newFakeLookup()
	lk.lower["whale"] = "AB.AB.AA.AA.AA"
	r := New(lk, nil)

	got := r.Resolve(scanner.RawToken{Text: "Whale", Type: scanner.Word, IsCapitalized: true})
	if len(got) != 1 || got[0].TokenID != "AB.AB.AA.AA.AA" || got[0].Provenance != vocab.ProvenanceCaseRelaxed {
		t.Errorf("Resolve(Whale) = %+v", got)
	}
}

func TestResolvePossessiveSplit(t *testing.T) {
	lk := newFakeLookup()
	lk.exact["whale"] = "AB.AB.AA.AA.AA"
	lk.exact["s"] = "AB.AB.AA.AA.AB"
	r := New(lk, nil)

	got := r.Resolve(scanner.RawToken{Text: "whale's", Type: scanner.Word})
	if len(got) != 3 {
		t.Fatalf("Resolve(whale's) = %+v", got)
	}
	if got[0].TokenID != "AB.AB.AA.AA.AA" || got[0].Provenance != vocab.ProvenanceSplit {
		t.Errorf("part 0 = %+v", got[0])
	}
	if got[2].TokenID != "AB.AB.AA.AA.AB" {
		t.Errorf("part 2 = %+v", got[2])
	}
}

func TestResolveHyphenatedCompound(t *testing.T) {
	lk := newFakeLookup()
	lk.exact["well"] = "AB.AB.AA.AA.AC"
	lk.exact["known"] = "AB.AB.AA.AA.AD"
	r := New(lk, nil)

	got := r.Resolve(scanner.RawToken{Text: "well-known", Type: scanner.Word})
	if len(got) != 3 {
		t.Fatalf("Resolve(well-known) = %+v", got)
	}
	if got[0].TokenID != "AB.AB.AA.AA.AC" || got[1].Surface != "-" || got[2].TokenID != "AB.AB.AA.AA.AD" {
		t.Errorf("Resolve(well-known) = %+v", got)
	}
}

func TestResolveSicFallback(t *testing.T) {
	lk := newFakeLookup()
	lk.chars['x'] = "AA.AA.AA.AA.Bi"
	lk.chars['y'] = "AA.AA.AA.AA.Bj"
	sink := &fakeUnknownSink{}
	r := New(lk, sink)

	got := r.Resolve(scanner.RawToken{Text: "xy", Type: scanner.Word, LineNumber: 4, CharOffset: 9})
	if len(got) != 4 {
		t.Fatalf("Resolve(xy) = %+v", got)
	}
	if got[0].TokenID != vocab.MarkerSicStart || got[3].TokenID != vocab.MarkerSicEnd {
		t.Errorf("Resolve(xy) sic wrap = %+v", got)
	}
	if len(sink.texts) != 1 || sink.texts[0] != "xy" {
		t.Errorf("sink.texts = %v, want [xy]", sink.texts)
	}
}

func TestResolvePunctuation(t *testing.T) {
	lk := newFakeLookup()
	r := New(lk, nil)

	got := r.Resolve(scanner.RawToken{Text: ".", Type: scanner.Punctuation})
	if len(got) != 1 || got[0].TokenID != "AA.AA.AA.AA.Aw" {
		t.Errorf("Resolve(.) = %+v", got)
	}
}

func TestResolveEllipsis(t *testing.T) {
	lk := newFakeLookup()
	r := New(lk, nil)

	got := r.Resolve(scanner.RawToken{Text: "...", Type: scanner.Punctuation})
	if len(got) != 1 || got[0].TokenID != "AA.AB.AA.AW.AJ" {
		t.Errorf("Resolve(...) = %+v", got)
	}
}

func TestResolveItalicMarkers(t *testing.T) {
	lk := newFakeLookup()
	r := New(lk, nil)

	got := r.Resolve(scanner.RawToken{Type: scanner.ItalicStart})
	if len(got) != 1 || got[0].TokenID != vocab.MarkerItalicStart {
		t.Errorf("Resolve(ItalicStart) = %+v", got)
	}
}
