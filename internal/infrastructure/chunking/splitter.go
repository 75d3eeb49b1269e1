package chunking

import "strings"

// WordSplitter packs whitespace-separated words greedily into chunks of
// exactly MaxWords words; only the final chunk may be shorter. Splitting
// is deterministic: the same text and MaxWords always produce the same
// boundaries.
type WordSplitter struct {
	MaxWords int
}

func NewWordSplitter(maxWords int) *WordSplitter {
	if maxWords <= 0 {
		maxWords = 500
	}
	return &WordSplitter{MaxWords: maxWords}
}

func (s *WordSplitter) Split(text string) []string {
	// strings.Fields collapses whitespace runs and trims the ends,
	// normalizing the text before packing.
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	out := make([]string, 0, len(words)/s.MaxWords+1)
	for start := 0; start < len(words); start += s.MaxWords {
		end := start + s.MaxWords
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[start:end], " "))
	}
	return out
}
