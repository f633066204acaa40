// Package structure splits raw document text into blocks — chapter and
// section headings, titles, and paragraphs — and wraps them in the
// structural markers internal/resolver maps into the token stream
// (spec §4.7). It has no direct counterpart in the reference ingest
// scripts, which strip boilerplate but never emit structural markers
// themselves; the rules below are a straightforward regexp
// segmentation in the scanner/resolver idiom.
package structure

import (
	"regexp"
	"strings"

	"github.com/humancognome/textpbm/internal/vocab"
)

var (
	chapterRe = regexp.MustCompile(`(?i)^(chapter|chap\.?) +(\d+|[ivxlcdm]+)\.?$`)
	letterRe  = regexp.MustCompile(`(?i)^letter +\d+\.?$`)
	contentsRe = regexp.MustCompile(`(?i)^\s*contents\s*$`)
)

// BlockKind classifies a block of text detected by Split.
type BlockKind int

const (
	Paragraph BlockKind = iota
	ChapterHeading
	SectionHeading
	Title // multi-line block that is neither a paragraph nor a recognized heading line
)

// Block is one unit of document structure.
type Block struct {
	Kind   BlockKind
	Lines  []string
	Indent int // capped at 8; 0 for headings
}

// Split partitions text into blocks separated by one or more blank
// lines and classifies each.
func Split(text string) []Block {
	rawBlocks := splitOnBlankLines(text)
	blocks := make([]Block, 0, len(rawBlocks))
	for _, lines := range rawBlocks {
		blocks = append(blocks, classify(lines))
	}
	return blocks
}

func splitOnBlankLines(text string) [][]string {
	lines := strings.Split(text, "\n")
	var blocks [][]string
	var current []string
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func classify(lines []string) Block {
	if len(lines) == 1 {
		trimmed := strings.TrimSpace(lines[0])
		switch {
		case chapterRe.MatchString(trimmed):
			return Block{Kind: ChapterHeading, Lines: lines}
		case letterRe.MatchString(trimmed), contentsRe.MatchString(trimmed):
			return Block{Kind: SectionHeading, Lines: lines}
		default:
			return Block{Kind: Paragraph, Lines: lines, Indent: indentLevel(lines[0])}
		}
	}
	// A multi-line block that isn't a single recognized heading line is
	// treated as a title block (e.g. a title page) per spec §4.7; callers
	// needing paragraph/title disambiguation beyond line count supply
	// their own pre-split input.
	return Block{Kind: Title, Lines: lines}
}

func indentLevel(line string) int {
	n := 0
	for _, ch := range line {
		if ch != ' ' {
			break
		}
		n++
	}
	var level int
	switch {
	case n < 2:
		level = 0
	case n <= 4:
		level = 1
	default:
		level = 2 + (n-5)/2
	}
	if level > 8 {
		level = 8
	}
	return level
}

// IsStandalone reports whether kind is emitted as a single marker
// rather than a wrapping start/end pair (chapter and section headings).
func IsStandalone(kind BlockKind) bool {
	return kind == ChapterHeading || kind == SectionHeading
}

// StandaloneMarker returns the single marker token id for a standalone
// block kind. It panics if kind is not standalone; callers should check
// IsStandalone first.
func StandaloneMarker(kind BlockKind) string {
	switch kind {
	case ChapterHeading:
		return vocab.MarkerChapterBreak
	case SectionHeading:
		return vocab.MarkerSectionBreak
	default:
		panic("structure: StandaloneMarker called on non-standalone kind")
	}
}

// WrapMarkers returns the (start, end) structural marker token ids that
// wrap a block of the given non-standalone kind.
func WrapMarkers(kind BlockKind) (start, end string) {
	switch kind {
	case Title:
		return vocab.MarkerTitleStart, vocab.MarkerTitleEnd
	default:
		return vocab.MarkerParagraphStart, vocab.MarkerParagraphEnd
	}
}
