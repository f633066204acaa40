package reassemble

import (
	"reflect"
	"testing"

	"github.com/humancognome/textpbm/internal/disassemble"
	"github.com/humancognome/textpbm/internal/vocab"
)

func TestSequenceReproducesUnambiguousStream(t *testing.T) {
	tokens := []string{vocab.StreamStart, "the", "whale", "swims", vocab.StreamEnd}
	pbm := disassemble.Disassemble(tokens)

	got := Sequence(pbm)
	want := []string{"the", "whale", "swims"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sequence = %v, want %v", got, want)
	}
}

func TestSequenceStopsAtStreamEnd(t *testing.T) {
	tokens := []string{vocab.StreamStart, vocab.StreamEnd}
	pbm := disassemble.Disassemble(tokens)

	got := Sequence(pbm)
	if len(got) != 0 {
		t.Errorf("Sequence(empty stream) = %v, want empty", got)
	}
}

func TestSequencePicksHighestRemainingCount(t *testing.T) {
	// "the" appears before both "cat" and "dog", but "dog" twice as often.
	tokens := []string{
		vocab.StreamStart, "the", "dog", vocab.StreamEnd,
		vocab.StreamStart, "the", "dog", vocab.StreamEnd,
		vocab.StreamStart, "the", "cat", vocab.StreamEnd,
	}
	pbm := disassemble.Disassemble(tokens)

	got := Sequence(pbm)
	if len(got) < 2 || got[0] != "the" || got[1] != "dog" {
		t.Errorf("Sequence = %v, want to start [the dog]", got)
	}
}
