package chunking

import (
	"strings"
	"testing"
)

func TestSplitEmptyAndBlankInput(t *testing.T) {
	s := NewWordSplitter(5)
	if got := s.Split(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
	if got := s.Split("   \t\n  "); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
}

func TestSplitPacksExactWordCounts(t *testing.T) {
	s := NewWordSplitter(3)
	chunks := s.Split("one two three four five six seven")

	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %v", len(chunks), chunks)
	}
	for i, chunk := range chunks[:len(chunks)-1] {
		if n := len(strings.Fields(chunk)); n != 3 {
			t.Fatalf("chunk %d has %d words, expected 3", i, n)
		}
	}
	last := strings.Fields(chunks[len(chunks)-1])
	if len(last) < 1 || len(last) > 3 {
		t.Fatalf("last chunk has %d words, expected 1..3", len(last))
	}
}

func TestSplitReconstructsNormalizedInput(t *testing.T) {
	input := "  The   quick\tbrown\n\nfox jumps over   the lazy dog  "
	normalized := strings.Join(strings.Fields(input), " ")

	for _, maxWords := range []int{1, 2, 4, 9, 100} {
		s := NewWordSplitter(maxWords)
		chunks := s.Split(input)
		if got := strings.Join(chunks, " "); got != normalized {
			t.Fatalf("max_words=%d: reconstruction mismatch:\n got %q\nwant %q", maxWords, got, normalized)
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	s := NewWordSplitter(4)
	input := "alpha beta gamma delta epsilon zeta eta theta iota"

	first := s.Split(input)
	second := s.Split(input)
	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs: %q vs %q", i, first[i], second[i])
		}
	}
}

func TestSplitKeepsOversizedWordIntact(t *testing.T) {
	long := strings.Repeat("x", 10_000)
	s := NewWordSplitter(2)
	chunks := s.Split("short " + long)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], long) {
		t.Fatalf("oversized word was altered")
	}
}

func TestNewWordSplitterDefaultsInvalidSize(t *testing.T) {
	if s := NewWordSplitter(0); s.MaxWords != 500 {
		t.Fatalf("expected default 500, got %d", s.MaxWords)
	}
	if s := NewWordSplitter(-3); s.MaxWords != 500 {
		t.Fatalf("expected default 500, got %d", s.MaxWords)
	}
}
