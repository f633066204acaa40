// Package bytetable provides the static 256-entry byte classification
// table (spec §4.2), ported from the reference implementation's
// byte_codes.py classify_byte.
package bytetable

import "fmt"

// Category classifies a byte value's role in the UTF-8 / ASCII space.
type Category string

const (
	Control     Category = "control"
	Whitespace  Category = "whitespace"
	LetterUpper Category = "letter_upper"
	LetterLower Category = "letter_lower"
	Digit       Category = "digit"
	Punctuation Category = "punctuation"
	UTF8Lead2   Category = "utf8_lead2"
	UTF8Lead3   Category = "utf8_lead3"
	UTF8Lead4   Category = "utf8_lead4"
	UTF8Cont    Category = "utf8_cont"
	Invalid     Category = "invalid"
)

// BondClass classifies a byte's bonding behaviour, carried on the entry
// as a descriptive tag; the disassembler itself is category-agnostic
// per spec §4.8.
type BondClass string

const (
	Alpha     BondClass = "alpha"
	Numeric   BondClass = "numeric"
	Separator BondClass = "separator"
	Delimiter BondClass = "delimiter"
	Covalent  BondClass = "covalent"
	Inert     BondClass = "inert"
	Unstable  BondClass = "unstable"
)

// Entry is one row of the byte classification table.
type Entry struct {
	Value     int
	Hex       string
	Category  Category
	BondClass BondClass
	Display   string
	Name      string
	ASCII     rune // 0 if the byte has no single-rune ASCII representation
}

// Table holds exactly 256 entries, indexed by byte value.
var Table [256]Entry

func init() {
	for v := 0; v < 256; v++ {
		Table[v] = classify(v)
	}
}

var controlNames = map[int]string{
	0x00: "NULL", 0x01: "START OF HEADING", 0x02: "START OF TEXT",
	0x03: "END OF TEXT", 0x04: "END OF TRANSMISSION", 0x05: "ENQUIRY",
	0x06: "ACKNOWLEDGE", 0x07: "BELL", 0x08: "BACKSPACE",
	0x09: "CHARACTER TABULATION", 0x0A: "LINE FEED",
	0x0B: "LINE TABULATION", 0x0C: "FORM FEED",
	0x0D: "CARRIAGE RETURN", 0x0E: "SHIFT OUT", 0x0F: "SHIFT IN",
	0x10: "DATA LINK ESCAPE", 0x11: "DEVICE CONTROL ONE",
	0x12: "DEVICE CONTROL TWO", 0x13: "DEVICE CONTROL THREE",
	0x14: "DEVICE CONTROL FOUR", 0x15: "NEGATIVE ACKNOWLEDGE",
	0x16: "SYNCHRONOUS IDLE", 0x17: "END OF TRANSMISSION BLOCK",
	0x18: "CANCEL", 0x19: "END OF MEDIUM", 0x1A: "SUBSTITUTE",
	0x1B: "ESCAPE", 0x1C: "INFORMATION SEPARATOR FOUR",
	0x1D: "INFORMATION SEPARATOR THREE",
	0x1E: "INFORMATION SEPARATOR TWO",
	0x1F: "INFORMATION SEPARATOR ONE",
	0x7F: "DELETE",
}

var punctNames = map[int]string{
	0x21: "EXCLAMATION MARK", 0x22: "QUOTATION MARK",
	0x23: "NUMBER SIGN", 0x24: "DOLLAR SIGN",
	0x25: "PERCENT SIGN", 0x26: "AMPERSAND",
	0x27: "APOSTROPHE", 0x28: "LEFT PARENTHESIS",
	0x29: "RIGHT PARENTHESIS", 0x2A: "ASTERISK",
	0x2B: "PLUS SIGN", 0x2C: "COMMA",
	0x2D: "HYPHEN-MINUS", 0x2E: "FULL STOP",
	0x2F: "SOLIDUS",
	0x3A: "COLON", 0x3B: "SEMICOLON",
	0x3C: "LESS-THAN SIGN", 0x3D: "EQUALS SIGN",
	0x3E: "GREATER-THAN SIGN", 0x3F: "QUESTION MARK",
	0x40: "COMMERCIAL AT",
	0x5B: "LEFT SQUARE BRACKET", 0x5C: "REVERSE SOLIDUS",
	0x5D: "RIGHT SQUARE BRACKET", 0x5E: "CIRCUMFLEX ACCENT",
	0x5F: "LOW LINE", 0x60: "GRAVE ACCENT",
	0x7B: "LEFT CURLY BRACKET", 0x7C: "VERTICAL LINE",
	0x7D: "RIGHT CURLY BRACKET", 0x7E: "TILDE",
}

var whitespaceNames = map[int]string{
	0x09: "CHARACTER TABULATION", 0x0A: "LINE FEED",
	0x0D: "CARRIAGE RETURN", 0x20: "SPACE",
}

var whitespaceDisplay = map[int]string{
	0x09: `'\t'`, 0x0A: `'\n'`, 0x0D: `'\r'`, 0x20: "' '",
}

func classify(v int) Entry {
	hex := fmt.Sprintf("0x%02X", v)

	switch v {
	case 0x09, 0x0A, 0x0D, 0x20:
		var ascii rune
		if v == 0x20 {
			ascii = ' '
		}
		return Entry{v, hex, Whitespace, Separator, whitespaceDisplay[v], whitespaceNames[v], ascii}
	}

	if name, ok := controlNames[v]; ok {
		return Entry{v, hex, Control, Inert, "<" + name + ">", name, 0}
	}

	if v >= 0x21 && v <= 0x7E {
		ch := rune(v)
		switch {
		case v >= 0x41 && v <= 0x5A:
			return Entry{v, hex, LetterUpper, Alpha, string(ch), "LATIN CAPITAL LETTER " + string(ch), ch}
		case v >= 0x61 && v <= 0x7A:
			return Entry{v, hex, LetterLower, Alpha, string(ch), "LATIN SMALL LETTER " + string(ch-32), ch}
		case v >= 0x30 && v <= 0x39:
			return Entry{v, hex, Digit, Numeric, string(ch), "DIGIT " + string(ch), ch}
		}
		name, ok := punctNames[v]
		if !ok {
			name = "PUNCTUATION " + string(ch)
		}
		return Entry{v, hex, Punctuation, Delimiter, string(ch), name, ch}
	}

	switch {
	case v >= 0x80 && v <= 0xBF:
		n := v - 0x80
		return Entry{v, hex, UTF8Cont, Covalent, fmt.Sprintf("<CONT %02d>", n), fmt.Sprintf("UTF8 CONTINUATION %d", n), 0}
	case v >= 0xC0 && v <= 0xDF:
		n := v - 0xC0
		return Entry{v, hex, UTF8Lead2, Covalent, fmt.Sprintf("<LEAD2 %02d>", n), fmt.Sprintf("UTF8 2-BYTE LEAD %d", n), 0}
	case v >= 0xE0 && v <= 0xEF:
		n := v - 0xE0
		return Entry{v, hex, UTF8Lead3, Covalent, fmt.Sprintf("<LEAD3 %02d>", n), fmt.Sprintf("UTF8 3-BYTE LEAD %d", n), 0}
	case v >= 0xF0 && v <= 0xF7:
		n := v - 0xF0
		return Entry{v, hex, UTF8Lead4, Covalent, fmt.Sprintf("<LEAD4 %02d>", n), fmt.Sprintf("UTF8 4-BYTE LEAD %d", n), 0}
	}

	return Entry{v, hex, Invalid, Unstable, fmt.Sprintf("<INVALID %02X>", v), fmt.Sprintf("INVALID BYTE 0x%02X", v), 0}
}
