// Package hotcache is the in-memory hot tier of the three-tier cache-miss
// resolver (spec §4.4 tier 1): a single RWMutex-guarded bundle of maps
// covering every vocabulary scope plus the anchor tokens, consulted
// before falling through to internal/kvcache and internal/coldstore.
package hotcache

import (
	"strings"
	"sync"

	"github.com/humancognome/textpbm/internal/vocab"
)

// operation distinguishes a read from a write for the lock discipline
// below, mirroring the read/write dispatch in the teacher's lock manager.
type operation int

const (
	readOp operation = iota
	writeOp
)

// Cache is the hot tier. The zero value is not usable; construct one
// with New.
type Cache struct {
	mu sync.RWMutex

	charToToken  map[rune]string
	wordToToken  map[string]string // lowercased surfaces
	labelToToken map[string]string // exact-case surfaces (proper nouns)

	tokenToSurface  map[string]string
	tokenToCategory map[string]string
}

// New returns an empty Cache with the two stream anchors pre-registered,
// matching the reference vocabulary loader's anchor registration step.
func New() *Cache {
	c := &Cache{
		charToToken:     make(map[rune]string),
		wordToToken:     make(map[string]string),
		labelToToken:    make(map[string]string),
		tokenToSurface:  make(map[string]string),
		tokenToCategory: make(map[string]string),
	}
	c.registerAnchor(vocab.StreamStart)
	c.registerAnchor(vocab.StreamEnd)
	return c
}

func (c *Cache) registerAnchor(tokenID string) {
	c.tokenToSurface[tokenID] = ""
	c.tokenToCategory[tokenID] = vocab.AnchorCategory
}

func (c *Cache) execute(op operation, fn func()) {
	if op == writeOp {
		c.mu.Lock()
		defer c.mu.Unlock()
	} else {
		c.mu.RLock()
		defer c.mu.RUnlock()
	}
	fn()
}

// PutChar registers a single-byte/rune surface.
func (c *Cache) PutChar(ch rune, tokenID, category string) {
	c.execute(writeOp, func() {
		c.charToToken[ch] = tokenID
		c.tokenToSurface[tokenID] = string(ch)
		c.tokenToCategory[tokenID] = category
	})
}

// PutWord registers a common-word surface under its lowercased form.
func (c *Cache) PutWord(lower, tokenID, category string) {
	c.execute(writeOp, func() {
		c.wordToToken[lower] = tokenID
		c.tokenToSurface[tokenID] = lower
		c.tokenToCategory[tokenID] = category
	})
}

// PutLabel registers a case-sensitive proper-noun surface.
func (c *Cache) PutLabel(exact, tokenID, category string) {
	c.execute(writeOp, func() {
		c.labelToToken[exact] = tokenID
		c.tokenToSurface[tokenID] = exact
		c.tokenToCategory[tokenID] = category
	})
}

// PutMarker registers a marker/punctuation token whose surface is fixed
// independent of any input string (e.g. structural markers).
func (c *Cache) PutMarker(tokenID, surface, category string) {
	c.execute(writeOp, func() {
		c.tokenToSurface[tokenID] = surface
		c.tokenToCategory[tokenID] = category
	})
}

// Lookup resolves a surface to a Token ID, trying single-char, then
// exact (label) match, then lowercase (word) match, in that order —
// the same precedence as the reference vocabulary cache's lookup().
func (c *Cache) Lookup(text string) (tokenID string, ok bool) {
	c.execute(readOp, func() {
		runes := []rune(text)
		if len(runes) == 1 {
			if id, found := c.charToToken[runes[0]]; found {
				tokenID, ok = id, true
				return
			}
		}
		if id, found := c.labelToToken[text]; found {
			tokenID, ok = id, true
			return
		}
		if id, found := c.wordToToken[strings.ToLower(text)]; found {
			tokenID, ok = id, true
			return
		}
	})
	return
}

// LookupChar resolves a single-rune surface against the char map only,
// the tier internal/resolver consults for sic fallback and punctuation.
func (c *Cache) LookupChar(ch rune) (tokenID string, ok bool) {
	c.execute(readOp, func() {
		tokenID, ok = c.charToToken[ch]
	})
	return
}

// LookupExact resolves text against the case-sensitive label map and,
// failing that, the word map keyed by its own literal text — i.e. it
// only hits the word map when text is already in its stored (lowercased)
// form, so a case-relaxed match is never mistaken for an exact one.
func (c *Cache) LookupExact(text string) (tokenID string, ok bool) {
	c.execute(readOp, func() {
		if id, found := c.labelToToken[text]; found {
			tokenID, ok = id, true
			return
		}
		if id, found := c.wordToToken[text]; found {
			tokenID, ok = id, true
		}
	})
	return
}

// LookupLower resolves an already-lowercased surface against the word
// map, the tier internal/resolver consults for case-relaxed matches.
func (c *Cache) LookupLower(lower string) (tokenID string, ok bool) {
	c.execute(readOp, func() {
		tokenID, ok = c.wordToToken[lower]
	})
	return
}

// Surface returns the canonical surface text for a Token ID, or
// "<tokenID>" if it is not registered (matching the reference default).
func (c *Cache) Surface(tokenID string) string {
	var out string
	c.execute(readOp, func() {
		if s, found := c.tokenToSurface[tokenID]; found {
			out = s
			return
		}
		out = "<" + tokenID + ">"
	})
	return out
}

// Category returns the spacing/bond category for a Token ID, or
// "unknown" if it is not registered.
func (c *Cache) Category(tokenID string) string {
	var out string
	c.execute(readOp, func() {
		if cat, found := c.tokenToCategory[tokenID]; found {
			out = cat
			return
		}
		out = "unknown"
	})
	return out
}
