// Package tokenid implements the base-50 hierarchical Token ID codec
// (spec §4.1). Every operation is pure and total on valid input.
package tokenid

import (
	"fmt"
	"strings"

	"github.com/humancognome/textpbm/internal/errs"
)

// Alphabet is the 50-symbol alphabet used to encode a pair value:
// the 52 Latin letters minus O and o, to avoid digit-zero confusion.
// Its ordering defines address sort order and matches ASCII sort of
// its own characters (uppercase block first).
const Alphabet = "ABCDEFGHIJKLMNPQRSTUVWXYZabcdefghijklmnpqrstuvwxyz"

// PairMax is the largest value a single pair can encode (2500 values, 0..2499).
const PairMax = 2499

var decodeTable [256]int8

func init() {
	for i := range decodeTable {
		decodeTable[i] = -1
	}
	for i := 0; i < len(Alphabet); i++ {
		decodeTable[Alphabet[i]] = int8(i)
	}
}

// ID is an immutable, value-typed Token ID: 1-5 pair values in [0, 2499].
type ID struct {
	pairs [5]int
	depth int
}

// New builds an ID from 1-5 pair values.
func New(values ...int) (ID, error) {
	if len(values) < 1 || len(values) > 5 {
		return ID{}, fmt.Errorf("%w: %d pairs", errs.ErrBadDepth, len(values))
	}
	var id ID
	for i, v := range values {
		if v < 0 || v > PairMax {
			return ID{}, fmt.Errorf("%w: %d", errs.ErrValueOutOfRange, v)
		}
		id.pairs[i] = v
	}
	id.depth = len(values)
	return id, nil
}

// EncodePair renders a single [0, 2499] value as a two-character pair.
func EncodePair(v int) (string, error) {
	if v < 0 || v > PairMax {
		return "", fmt.Errorf("%w: %d", errs.ErrValueOutOfRange, v)
	}
	hi := v / 50
	lo := v % 50
	return string([]byte{Alphabet[hi], Alphabet[lo]}), nil
}

// DecodePair parses a two-character pair back into its integer value.
// It rejects any character outside the 50-symbol alphabet, including O/o.
func DecodePair(s string) (int, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q", errs.ErrBadPair, s)
	}
	hi := decodeTable[s[0]]
	lo := decodeTable[s[1]]
	if hi < 0 || lo < 0 {
		return 0, fmt.Errorf("%w: %q", errs.ErrBadPair, s)
	}
	return int(hi)*50 + int(lo), nil
}

// EncodeTokenID renders 1-5 pair values as a dotted Token ID string.
func EncodeTokenID(values ...int) (string, error) {
	if len(values) < 1 || len(values) > 5 {
		return "", fmt.Errorf("%w: %d pairs", errs.ErrBadDepth, len(values))
	}
	parts := make([]string, len(values))
	for i, v := range values {
		p, err := EncodePair(v)
		if err != nil {
			return "", err
		}
		parts[i] = p
	}
	return strings.Join(parts, "."), nil
}

// DecodeTokenID parses a dotted Token ID string into its pair values.
func DecodeTokenID(s string) ([]int, error) {
	parts := strings.Split(s, ".")
	if len(parts) < 1 || len(parts) > 5 {
		return nil, fmt.Errorf("%w: %q", errs.ErrBadDepth, s)
	}
	values := make([]int, len(parts))
	for i, p := range parts {
		v, err := DecodePair(p)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// Depth returns the number of pairs in s without fully decoding it.
func Depth(s string) int {
	return strings.Count(s, ".") + 1
}

// Prefix returns the k leading pair values of s, used by storage routing.
func Prefix(s string, k int) ([]int, error) {
	values, err := DecodeTokenID(s)
	if err != nil {
		return nil, err
	}
	if k < 0 || k > len(values) {
		return nil, fmt.Errorf("%w: prefix %d of depth %d", errs.ErrBadDepth, k, len(values))
	}
	return values[:k], nil
}

// String renders the ID as its canonical dotted representation.
func (id ID) String() string {
	s, err := EncodeTokenID(id.pairs[:id.depth]...)
	if err != nil {
		// Unreachable: id was constructed through New, which validated
		// every pair already.
		return ""
	}
	return s
}

// Depth returns the number of pairs addressed by id.
func (id ID) Depth() int { return id.depth }

// Pairs returns the pair values addressed by id.
func (id ID) Pairs() []int {
	out := make([]int, id.depth)
	copy(out, id.pairs[:id.depth])
	return out
}
