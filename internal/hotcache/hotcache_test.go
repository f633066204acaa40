package hotcache

import (
	"testing"

	"github.com/humancognome/textpbm/internal/vocab"
)

func TestNewRegistersAnchors(t *testing.T) {
	c := New()
	if got := c.Category(vocab.StreamStart); got != vocab.AnchorCategory {
		t.Errorf("Category(StreamStart) = %q, want %q", got, vocab.AnchorCategory)
	}
	if got := c.Surface(vocab.StreamStart); got != "" {
		t.Errorf("Surface(StreamStart) = %q, want empty", got)
	}
}

func TestLookupPrecedence(t *testing.T) {
	c := New()
	c.PutChar('a', "AA.AA.AA.AA.AB", "char")
	c.PutWord("apple", "AB.AB.AA.AA.AA", "word")
	c.PutLabel("Apple", "AB.AB.AA.AA.AB", "label")

	if id, ok := c.Lookup("a"); !ok || id != "AA.AA.AA.AA.AB" {
		t.Errorf("Lookup(%q) = %q, %v", "a", id, ok)
	}
	if id, ok := c.Lookup("Apple"); !ok || id != "AB.AB.AA.AA.AB" {
		t.Errorf("Lookup(%q) = %q, %v, want exact label match", "Apple", id, ok)
	}
	if id, ok := c.Lookup("apple"); !ok || id != "AB.AB.AA.AA.AA" {
		t.Errorf("Lookup(%q) = %q, %v, want lowercase word match", "apple", id, ok)
	}
	if id, ok := c.Lookup("APPLE"); !ok || id != "AB.AB.AA.AA.AA" {
		t.Errorf("Lookup(%q) = %q, %v, want case-relaxed word match", "APPLE", id, ok)
	}
}

func TestLookupCharExactLower(t *testing.T) {
	c := New()
	c.PutChar('a', "AA.AA.AA.AA.AB", "char")
	c.PutWord("apple", "AB.AB.AA.AA.AA", "word")
	c.PutLabel("Apple", "AB.AB.AA.AA.AB", "label")

	if id, ok := c.LookupChar('a'); !ok || id != "AA.AA.AA.AA.AB" {
		t.Errorf("LookupChar('a') = %q, %v", id, ok)
	}
	if _, ok := c.LookupChar('z'); ok {
		t.Error("LookupChar('z') should miss")
	}

	if id, ok := c.LookupExact("Apple"); !ok || id != "AB.AB.AA.AA.AB" {
		t.Errorf("LookupExact(%q) = %q, %v, want label hit", "Apple", id, ok)
	}
	if id, ok := c.LookupExact("apple"); !ok || id != "AB.AB.AA.AA.AA" {
		t.Errorf("LookupExact(%q) = %q, %v, want word hit", "apple", id, ok)
	}
	if _, ok := c.LookupExact("APPLE"); ok {
		t.Error("LookupExact(\"APPLE\") should miss: it is not an exact stored form")
	}

	if id, ok := c.LookupLower("apple"); !ok || id != "AB.AB.AA.AA.AA" {
		t.Errorf("LookupLower(%q) = %q, %v", "apple", id, ok)
	}
	if _, ok := c.LookupLower("APPLE"); ok {
		t.Error("LookupLower(\"APPLE\") should miss: word map is keyed by lowercase only")
	}
}

func TestLookupMiss(t *testing.T) {
	c := New()
	if _, ok := c.Lookup("nonexistent"); ok {
		t.Error("Lookup of unregistered surface should miss")
	}
}

func TestSurfaceDefault(t *testing.T) {
	c := New()
	if got := c.Surface("AB.AB.ZZ.ZZ.ZZ"); got != "<AB.AB.ZZ.ZZ.ZZ>" {
		t.Errorf("Surface(unregistered) = %q", got)
	}
}

func TestCategoryDefault(t *testing.T) {
	c := New()
	if got := c.Category("AB.AB.ZZ.ZZ.ZZ"); got != "unknown" {
		t.Errorf("Category(unregistered) = %q, want unknown", got)
	}
}
