// Package resolver maps scanner.RawTokens to Token IDs (spec §4.6,
// tokenization stage two), ported rule-for-rule from the reference
// resolver: exact match, case relaxation, possessive/hyphen splitting,
// and a character-by-character sic fallback wrapped in sic markers.
package resolver

import (
	"strings"

	"github.com/humancognome/textpbm/internal/scanner"
	"github.com/humancognome/textpbm/internal/vocab"
)

// ResolvedToken is one output unit of resolution: a Token ID, the
// surface text it stands for, and how it was resolved.
type ResolvedToken struct {
	TokenID    string
	Surface    string
	Provenance vocab.Provenance
}

// punctuationMap mirrors PUNCTUATION_MAP: single ASCII punctuation to
// hcp_core byte code tokens.
var punctuationMap = map[string]string{
	".": "AA.AA.AA.AA.Aw", ",": "AA.AA.AA.AA.Au", ";": "AA.AA.AA.AA.BJ",
	":": "AA.AA.AA.AA.BI", "!": "AA.AA.AA.AA.Ai", "?": "AA.AA.AA.AA.BN",
	"(": "AA.AA.AA.AA.Aq", ")": "AA.AA.AA.AA.Ar", "[": "AA.AA.AA.AA.Br",
	"]": "AA.AA.AA.AA.Bt", "{": "AA.AA.AA.AA.CY", "}": "AA.AA.AA.AA.Ca",
	"-": "AA.AA.AA.AA.Av", `"`: "AA.AA.AA.AA.Aj", "'": "AA.AA.AA.AA.Ap",
	"_": "AA.AA.AA.AA.Bv", "/": "AA.AA.AA.AA.Ax", "*": "AA.AA.AA.AA.As",
	"#": "AA.AA.AA.AA.Ak", "$": "AA.AA.AA.AA.Al", "%": "AA.AA.AA.AA.Am",
}

// unicodePunctMap mirrors UNICODE_PUNCT_MAP: Unicode punctuation to
// hcp_core Unicode character tokens.
var unicodePunctMap = map[string]string{
	"“": "AA.AB.AA.AY.AE", "”": "AA.AB.AA.AY.AF",
	"‘": "AA.AB.AA.AY.AA", "’": "AA.AB.AA.AY.AB",
	"—": "AA.AB.AA.AW.AE", "–": "AA.AB.AA.AW.AD",
	"…": "AA.AB.AA.AW.AJ",
}

var emDashTokens = map[string]string{
	"--":     "AA.AB.AA.AW.AE",
	"—": "AA.AB.AA.AW.AE",
}

var ellipsisToken = map[string]string{
	"...": "AA.AB.AA.AW.AJ",
}

// WordLookup is the three-tier resolution surface the resolver needs
// from hotcache/kvcache/coldstore, kept narrow so the resolver doesn't
// depend on any one tier's concrete type.
type WordLookup interface {
	LookupExact(text string) (tokenID string, ok bool)
	LookupLower(lower string) (tokenID string, ok bool)
	LookupChar(ch rune) (tokenID string, ok bool)
}

// UnknownSink receives a record of every surface the resolver could
// not place, for the var-mint / sic review audit trail.
type UnknownSink interface {
	RecordUnknown(text string, line, offset int)
	RecordUnknownChar(ch rune)
}

// Resolver resolves RawTokens to ResolvedTokens against a WordLookup.
type Resolver struct {
	lookup  WordLookup
	unknown UnknownSink
}

// New constructs a Resolver over the given lookup surface. unknown may
// be nil, in which case unresolved surfaces are silently sic-encoded.
func New(lookup WordLookup, unknown UnknownSink) *Resolver {
	return &Resolver{lookup: lookup, unknown: unknown}
}

// Resolve dispatches a single raw token to its resolution path.
func (r *Resolver) Resolve(tok scanner.RawToken) []ResolvedToken {
	switch tok.Type {
	case scanner.ItalicStart:
		return []ResolvedToken{{vocab.MarkerItalicStart, "", vocab.ProvenanceMarker}}
	case scanner.ItalicEnd:
		return []ResolvedToken{{vocab.MarkerItalicEnd, "", vocab.ProvenanceMarker}}
	case scanner.Punctuation:
		return r.resolvePunctuation(tok)
	default:
		return r.resolveWordToken(tok)
	}
}

// Marker builds a structural marker ResolvedToken by name, mirroring
// make_marker. Callers pass one of the vocab.Marker* constants.
func Marker(tokenID string) ResolvedToken {
	return ResolvedToken{tokenID, "", vocab.ProvenanceMarker}
}

func (r *Resolver) resolvePunctuation(tok scanner.RawToken) []ResolvedToken {
	text := tok.Text

	if id, ok := emDashTokens[text]; ok {
		return []ResolvedToken{{id, text, vocab.ProvenancePunctuation}}
	}
	if id, ok := ellipsisToken[text]; ok {
		return []ResolvedToken{{id, text, vocab.ProvenancePunctuation}}
	}
	if id, ok := punctuationMap[text]; ok {
		return []ResolvedToken{{id, text, vocab.ProvenancePunctuation}}
	}
	if id, ok := unicodePunctMap[text]; ok {
		return []ResolvedToken{{id, text, vocab.ProvenancePunctuation}}
	}
	if len([]rune(text)) == 1 {
		if id, ok := r.lookup.LookupChar([]rune(text)[0]); ok {
			return []ResolvedToken{{id, text, vocab.ProvenancePunctuation}}
		}
	}
	return r.sicEncode(text, tok.LineNumber, tok.CharOffset)
}

func (r *Resolver) resolveWordToken(tok scanner.RawToken) []ResolvedToken {
	text := tok.Text
	normalized := strings.ReplaceAll(text, "’", "'")

	if id, ok := r.lookup.LookupExact(normalized); ok {
		return []ResolvedToken{{id, text, vocab.ProvenanceExact}}
	}

	lowercase := strings.ToLower(normalized)
	if tok.IsCapitalized {
		if id, ok := r.lookup.LookupLower(lowercase); ok {
			return []ResolvedToken{{id, text, vocab.ProvenanceCaseRelaxed}}
		}
	}
	if lowercase != normalized {
		if id, ok := r.lookup.LookupLower(lowercase); ok {
			return []ResolvedToken{{id, text, vocab.ProvenanceCaseRelaxed}}
		}
	}

	if strings.HasSuffix(normalized, "'s") {
		if result, ok := r.resolvePossessiveS(text, normalized); ok {
			return result
		}
	}
	if strings.HasSuffix(normalized, "'") {
		if result, ok := r.resolveTrailingApostrophe(text, normalized); ok {
			return result
		}
	}

	if strings.Contains(normalized, "-") {
		if result, ok := r.resolveHyphenatedCompound(text, normalized); ok {
			return result
		}
	}

	if r.unknown != nil {
		r.unknown.RecordUnknown(text, tok.LineNumber, tok.CharOffset)
	}
	return r.sicEncode(text, tok.LineNumber, tok.CharOffset)
}

func (r *Resolver) lookupAny(text string) (string, bool) {
	if id, ok := r.lookup.LookupExact(text); ok {
		return id, true
	}
	return r.lookup.LookupLower(strings.ToLower(text))
}

func (r *Resolver) resolvePossessiveS(text, normalized string) ([]ResolvedToken, bool) {
	base := normalized[:len(normalized)-2]
	baseID, ok := r.lookupAny(base)
	if !ok {
		return nil, false
	}

	aposToken := punctuationMap["'"]
	aposSurface := "'"
	if strings.Contains(text, "’") {
		aposToken = unicodePunctMap["’"]
		aposSurface = "’"
	}

	sID, ok := r.lookupAny("s")
	if ok {
		return []ResolvedToken{
			{baseID, base, vocab.ProvenanceSplit},
			{aposToken, aposSurface, vocab.ProvenancePunctuation},
			{sID, "s", vocab.ProvenanceSplit},
		}, true
	}
	return []ResolvedToken{
		{baseID, base, vocab.ProvenanceSplit},
		{aposToken, aposSurface + "s", vocab.ProvenancePunctuation},
	}, true
}

func (r *Resolver) resolveTrailingApostrophe(text, normalized string) ([]ResolvedToken, bool) {
	base := normalized[:len(normalized)-1]
	baseID, ok := r.lookupAny(base)
	if !ok {
		return nil, false
	}
	aposToken := punctuationMap["'"]
	aposSurface := "'"
	if strings.HasSuffix(text, "’") {
		aposToken = unicodePunctMap["’"]
		aposSurface = "’"
	}
	return []ResolvedToken{
		{baseID, base, vocab.ProvenanceSplit},
		{aposToken, aposSurface, vocab.ProvenancePunctuation},
	}, true
}

func (r *Resolver) resolveHyphenatedCompound(text, normalized string) ([]ResolvedToken, bool) {
	normParts := strings.Split(normalized, "-")
	origParts := strings.Split(text, "-")

	resolved := make([]ResolvedToken, 0, len(normParts))
	for i, part := range normParts {
		id, ok := r.lookupAny(part)
		if !ok {
			return nil, false
		}
		surface := part
		if i < len(origParts) {
			surface = origParts[i]
		}
		resolved = append(resolved, ResolvedToken{id, surface, vocab.ProvenanceSplit})
	}

	hyphen := ResolvedToken{punctuationMap["-"], "-", vocab.ProvenancePunctuation}
	result := make([]ResolvedToken, 0, len(resolved)*2-1)
	for i, rt := range resolved {
		if i > 0 {
			result = append(result, hyphen)
		}
		result = append(result, rt)
	}
	return result, true
}

// sicEncode wraps an unresolvable surface in sic markers and encodes it
// character by character, falling back to a TBD marker for any byte
// with no char-cache entry at all.
func (r *Resolver) sicEncode(text string, line, offset int) []ResolvedToken {
	result := []ResolvedToken{Marker(vocab.MarkerSicStart)}
	for _, ch := range text {
		if id, ok := r.lookup.LookupChar(ch); ok {
			result = append(result, ResolvedToken{id, string(ch), vocab.ProvenanceSic})
			continue
		}
		if r.unknown != nil {
			r.unknown.RecordUnknownChar(ch)
		}
		result = append(result, ResolvedToken{vocab.MarkerTBD, string(ch), vocab.ProvenanceMarker})
	}
	result = append(result, Marker(vocab.MarkerSicEnd))
	return result
}
