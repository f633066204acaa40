package spacing

import (
	"testing"

	"github.com/humancognome/textpbm/internal/vocab"
)

type fakeVocab struct {
	surfaces   map[string]string
	categories map[string]string
}

func newFakeVocab() *fakeVocab {
	return &fakeVocab{surfaces: map[string]string{}, categories: map[string]string{}}
}

func (v *fakeVocab) Surface(tokenID string) string {
	if s, ok := v.surfaces[tokenID]; ok {
		return s
	}
	return "<" + tokenID + ">"
}

func (v *fakeVocab) Category(tokenID string) string {
	if c, ok := v.categories[tokenID]; ok {
		return c
	}
	return "word"
}

func TestRenderInsertsSpaceBetweenWords(t *testing.T) {
	v := newFakeVocab()
	v.surfaces["W1"] = "the"
	v.surfaces["W2"] = "whale"

	got := Render([]string{"W1", "W2"}, v)
	if got != "the whale" {
		t.Errorf("Render = %q, want %q", got, "the whale")
	}
}

func TestRenderNoSpaceBeforeComma(t *testing.T) {
	v := newFakeVocab()
	v.surfaces["W1"] = "whale"
	v.surfaces["COMMA"] = ","
	comma := "AA.AA.AA.AA.Au"
	v.surfaces[comma] = ","

	got := Render([]string{"W1", comma, "W1"}, v)
	if got != "whale, whale" {
		t.Errorf("Render = %q, want %q", got, "whale, whale")
	}
}

func TestRenderNoSpaceAfterOpenParen(t *testing.T) {
	v := newFakeVocab()
	openParen := "AA.AA.AA.AA.Aq"
	v.surfaces[openParen] = "("
	v.surfaces["W1"] = "aside"

	got := Render([]string{openParen, "W1"}, v)
	if got != "(aside" {
		t.Errorf("Render = %q, want %q", got, "(aside")
	}
}

func TestRenderStructuralWhitespaceRendersDirectly(t *testing.T) {
	v := newFakeVocab()
	newline := "AA.AA.AA.AA.AK"
	v.surfaces[newline] = "\n"
	v.surfaces["W1"] = "first"
	v.surfaces["W2"] = "second"

	got := Render([]string{"W1", newline, "W2"}, v)
	if got != "first\nsecond" {
		t.Errorf("Render = %q, want %q", got, "first\\nsecond")
	}
}

func TestRenderAnchorSuppressesSpacing(t *testing.T) {
	v := newFakeVocab()
	v.surfaces["W1"] = "whale"
	v.surfaces[vocab.StreamEnd] = ""
	v.categories[vocab.StreamEnd] = vocab.AnchorCategory

	got := Render([]string{"W1", vocab.StreamEnd}, v)
	if got != "whale" {
		t.Errorf("Render = %q, want %q", got, "whale")
	}
}
