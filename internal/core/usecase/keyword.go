package usecase

import (
	"sort"
	"strings"

	"github.com/avoronov/kbengine/internal/core/domain"
)

// stopWords is the fixed set removed from queries before keyword
// matching. Deliberately small: the fallback is a correctness floor, not
// a quality target.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"and": {}, "or": {}, "but": {},
	"is": {}, "are": {},
	"in": {}, "to": {}, "for": {},
}

// queryKeywords lowercases and whitespace-normalizes the query, then
// drops stop words. The returned keywords are distinct, in first-seen
// order.
func queryKeywords(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, word := range fields {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}

// matchKeywords scores every chunk by the number of distinct query
// keywords occurring as substrings of its lowercased content. Chunks
// scoring zero are excluded; ties keep the original chunk order (stable
// sort, no secondary signal). The result is deterministic and total over
// the matching chunks.
func matchKeywords(query string, chunks []domain.Chunk) []domain.ScoredChunk {
	keywords := queryKeywords(query)
	if len(keywords) == 0 {
		return nil
	}

	out := make([]domain.ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		content := strings.ToLower(chunk.Content)
		matches := 0
		for _, keyword := range keywords {
			if strings.Contains(content, keyword) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		out = append(out, domain.ScoredChunk{Chunk: chunk, Score: float64(matches)})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

func trimScored(scored []domain.ScoredChunk, limit int) []domain.ScoredChunk {
	if limit <= 0 || len(scored) <= limit {
		return scored
	}
	return scored[:limit]
}
