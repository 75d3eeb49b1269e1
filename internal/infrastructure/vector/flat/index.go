package flat

import (
	"log/slog"
	"sort"

	"github.com/avoronov/kbengine/internal/core/domain"
)

// Index is an exhaustive nearest-neighbor structure over a tenant's chunk
// embeddings. It is built fresh per retrieval call and never shared:
// corpora are tenant-scoped and small, so exact search under squared
// Euclidean distance wins over any approximation.
type Index struct {
	dim     int
	entries []entry
}

type entry struct {
	chunk  domain.Chunk
	vector []float32
}

// Build indexes exactly the chunks whose embedding matches dim. Chunks
// with a missing or mismatched embedding are skipped, not failed on; a
// mismatch is logged per chunk since it points at a stored-data problem.
func Build(dim int, chunks []domain.Chunk) *Index {
	idx := &Index{dim: dim}
	if dim <= 0 {
		return idx
	}

	idx.entries = make([]entry, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Embedding) == 0 {
			continue
		}
		if len(chunk.Embedding) != dim {
			slog.Warn("skip chunk with mismatched embedding dimension",
				"chunk_id", chunk.ID,
				"document_id", chunk.DocumentID,
				"have", len(chunk.Embedding),
				"want", dim,
			)
			continue
		}
		idx.entries = append(idx.entries, entry{chunk: chunk, vector: chunk.Embedding})
	}
	return idx
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

type hit struct {
	chunk    domain.Chunk
	distance float64
}

// Search returns up to k chunks ordered by ascending squared Euclidean
// distance to query. An empty or unbuilt index yields an empty result.
func (idx *Index) Search(query []float32, k int) []domain.ScoredChunk {
	if idx == nil || len(idx.entries) == 0 || len(query) != idx.dim || k <= 0 {
		return nil
	}

	hits := make([]hit, 0, len(idx.entries))
	for _, e := range idx.entries {
		hits = append(hits, hit{chunk: e.chunk, distance: squaredDistance(query, e.vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].distance < hits[j].distance
	})

	if k > len(hits) {
		k = len(hits)
	}
	out := make([]domain.ScoredChunk, 0, k)
	for _, h := range hits[:k] {
		// Relevance decreases with distance; keep scores positive and
		// monotonic so callers can sort descending uniformly.
		out = append(out, domain.ScoredChunk{
			Chunk: h.chunk,
			Score: 1.0 / (1.0 + h.distance),
		})
	}
	return out
}

func squaredDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
