package flat

import (
	"testing"

	"github.com/avoronov/kbengine/internal/core/domain"
)

func chunkWithVec(id string, vec []float32) domain.Chunk {
	return domain.Chunk{ID: id, Content: id, Embedding: vec}
}

func TestBuildExcludesMissingAndMismatchedEmbeddings(t *testing.T) {
	idx := Build(2, []domain.Chunk{
		chunkWithVec("a", []float32{1, 0}),
		chunkWithVec("b", nil),
		chunkWithVec("c", []float32{1, 2, 3}),
		chunkWithVec("d", []float32{0, 1}),
	})

	if idx.Len() != 2 {
		t.Fatalf("expected 2 indexed chunks, got %d", idx.Len())
	}
}

func TestSearchOrdersByAscendingDistance(t *testing.T) {
	idx := Build(2, []domain.Chunk{
		chunkWithVec("far", []float32{10, 10}),
		chunkWithVec("near", []float32{1, 1}),
		chunkWithVec("mid", []float32{3, 3}),
	})

	hits := idx.Search([]float32{1, 1}, 3)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	want := []string{"near", "mid", "far"}
	for i, w := range want {
		if hits[i].Chunk.ID != w {
			t.Fatalf("hit %d = %q, want %q", i, hits[i].Chunk.ID, w)
		}
	}
	if hits[0].Score < hits[1].Score || hits[1].Score < hits[2].Score {
		t.Fatalf("scores not descending: %v", hits)
	}
}

func TestSearchTruncatesToK(t *testing.T) {
	idx := Build(1, []domain.Chunk{
		chunkWithVec("a", []float32{1}),
		chunkWithVec("b", []float32{2}),
		chunkWithVec("c", []float32{3}),
	})
	if hits := idx.Search([]float32{0}, 2); len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
}

func TestSearchOnEmptyIndexReturnsNothing(t *testing.T) {
	idx := Build(3, nil)
	if hits := idx.Search([]float32{1, 2, 3}, 5); len(hits) != 0 {
		t.Fatalf("expected empty result, got %v", hits)
	}

	var unbuilt *Index
	if hits := unbuilt.Search([]float32{1}, 5); len(hits) != 0 {
		t.Fatalf("expected empty result from nil index, got %v", hits)
	}
}

func TestSearchRejectsMismatchedQueryDimension(t *testing.T) {
	idx := Build(2, []domain.Chunk{chunkWithVec("a", []float32{1, 0})})
	if hits := idx.Search([]float32{1, 0, 0}, 5); len(hits) != 0 {
		t.Fatalf("expected empty result for wrong query dim, got %v", hits)
	}
}
