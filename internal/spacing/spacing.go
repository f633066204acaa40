// Package spacing reconstructs inter-token whitespace from a Token ID
// sequence (spec §4.11), ported from the reference reassemble_text's
// rule table: structural whitespace renders directly, brackets/quotes
// and sentence punctuation suppress spacing on the side that would
// otherwise look wrong, and anchor-category tokens never get padding.
package spacing

import (
	"strings"

	"github.com/humancognome/textpbm/internal/vocab"
)

// noSpaceBefore holds the tokens that must not be preceded by a space
// (closing brackets/quotes, comma/period/semicolon/colon/!/?).
var noSpaceBefore = map[string]bool{
	"AA.AA.AA.AA.Au": true, // COMMA
	"AA.AA.AA.AA.Aw": true, // FULL STOP
	"AA.AA.AA.AA.BJ": true, // SEMICOLON
	"AA.AA.AA.AA.BI": true, // COLON
	"AA.AA.AA.AA.Ai": true, // EXCLAMATION MARK
	"AA.AA.AA.AA.BN": true, // QUESTION MARK
	"AA.AA.AA.AA.Ar": true, // RIGHT PARENTHESIS
	"AA.AA.AA.AA.Bt": true, // RIGHT SQUARE BRACKET
	"AA.AA.AA.AA.Ca": true, // RIGHT CURLY BRACKET
	"AA.AB.AA.AY.AF": true, // RIGHT DOUBLE QUOTATION MARK
	"AA.AB.AA.AY.AB": true, // RIGHT SINGLE QUOTATION MARK
}

// noSpaceAfter holds the tokens that must not be followed by a space
// (opening brackets/quotes).
var noSpaceAfter = map[string]bool{
	"AA.AA.AA.AA.Aq": true, // LEFT PARENTHESIS
	"AA.AA.AA.AA.Br": true, // LEFT SQUARE BRACKET
	"AA.AA.AA.AA.CY": true, // LEFT CURLY BRACKET
	"AA.AB.AA.AY.AE": true, // LEFT DOUBLE QUOTATION MARK
	"AA.AB.AA.AY.AA": true, // LEFT SINGLE QUOTATION MARK
}

// structuralWhitespace tokens render their own surface directly and
// are never padded with an additional space on either side.
var structuralWhitespace = map[string]bool{
	"AA.AA.AA.AA.AK": true, // NEWLINE
	"AA.AA.AA.AA.AN": true, // CARRIAGE RETURN
	"AA.AA.AA.AA.AJ": true, // TAB
	vocab.MarkerLineBreak: true, // title-block line break (spec §4.7)
}

const anchorCategory = "pbm_anchor"

// Vocabulary supplies the surface and category lookups Render needs.
type Vocabulary interface {
	Surface(tokenID string) string
	Category(tokenID string) string
}

// Render walks sequence once, consulting vocab for each token's surface
// and category, and returns the reconstructed text.
func Render(sequence []string, vocab Vocabulary) string {
	var b strings.Builder
	var prev string
	hasPrev := false

	for _, tokenID := range sequence {
		surface := vocab.Surface(tokenID)

		if structuralWhitespace[tokenID] {
			b.WriteString(surface)
			prev = tokenID
			hasPrev = true
			continue
		}

		if needSpace(tokenID, prev, hasPrev, vocab) {
			b.WriteByte(' ')
		}
		b.WriteString(surface)
		prev = tokenID
		hasPrev = true
	}

	return b.String()
}

func needSpace(tokenID, prev string, hasPrev bool, vocab Vocabulary) bool {
	if !hasPrev {
		return false
	}
	if structuralWhitespace[prev] {
		return false
	}
	if noSpaceBefore[tokenID] {
		return false
	}
	if noSpaceAfter[prev] {
		return false
	}
	if vocab.Category(tokenID) == anchorCategory || vocab.Category(prev) == anchorCategory {
		return false
	}
	return true
}
