package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avoronov/kbengine/internal/core/domain"
)

func tenantChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "c1", Index: 0, Content: "the cat sat", Embedding: []float32{1, 0}},
		{ID: "c2", Index: 1, Content: "dogs bark loudly"},
		{ID: "c3", Index: 2, Content: "cats and dogs play"},
	}
}

func TestRetrieveNoCompletedDocumentsSentinel(t *testing.T) {
	docs := &docRepoFake{hasCompleted: false}
	chunks := &chunkRepoFake{list: tenantChunks()}
	builder := &indexBuilderFake{index: &indexFake{}}
	observer := &observerFake{}

	uc := NewRetrieveContextUseCase(docs, chunks, &embedderFake{}, builder.build, 5, observer)

	for _, query := range []string{"cat", "", "anything at all"} {
		if got := uc.RetrieveContext(context.Background(), query, "t1", 5); got != NoProcessedDocumentsSentinel {
			t.Fatalf("query %q: got %q, want sentinel", query, got)
		}
	}
	if builder.builds != 0 {
		t.Fatalf("index must not be built without completed documents")
	}
	if observer.records[0].mode != RetrievalModeNoDocuments {
		t.Fatalf("expected no_documents mode, got %q", observer.records[0].mode)
	}
}

func TestRetrieveDegradedModeSkipsVectorIndex(t *testing.T) {
	docs := &docRepoFake{hasCompleted: true}
	chunks := &chunkRepoFake{list: tenantChunks()}
	builder := &indexBuilderFake{index: &indexFake{hits: []domain.ScoredChunk{{Chunk: tenantChunks()[0]}}}}
	embedder := &embedderFake{available: false, dim: 2}

	uc := NewRetrieveContextUseCase(docs, chunks, embedder, builder.build, 5, nil)

	got := uc.RetrieveContext(context.Background(), "cat", "t1", 5)
	want := "the cat sat\n\ncats and dogs play"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if builder.builds != 0 {
		t.Fatalf("degraded embedder must never build the vector index")
	}
	if embedder.calls != 0 {
		t.Fatalf("degraded embedder must not be asked to embed the query")
	}
}

func TestRetrieveVectorPathFormatsRankedOrder(t *testing.T) {
	all := tenantChunks()
	docs := &docRepoFake{hasCompleted: true}
	chunks := &chunkRepoFake{list: all}
	index := &indexFake{hits: []domain.ScoredChunk{
		{Chunk: all[2], Score: 0.9},
		{Chunk: all[0], Score: 0.4},
	}}
	builder := &indexBuilderFake{index: index}
	embedder := &embedderFake{available: true, embedOK: true, dim: 2, vector: []float32{1, 0}}

	uc := NewRetrieveContextUseCase(docs, chunks, embedder, builder.build, 5, nil)

	got := uc.RetrieveContext(context.Background(), "cat", "t1", 2)
	want := "cats and dogs play\n\nthe cat sat"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if index.lastK != 2 {
		t.Fatalf("expected search k=2, got %d", index.lastK)
	}
}

func TestRetrieveFallsBackWhenQueryEmbeddingFails(t *testing.T) {
	docs := &docRepoFake{hasCompleted: true}
	chunks := &chunkRepoFake{list: tenantChunks()}
	builder := &indexBuilderFake{index: &indexFake{hits: []domain.ScoredChunk{{Chunk: tenantChunks()[0]}}}}
	embedder := &embedderFake{available: true, embedOK: false, dim: 2}

	uc := NewRetrieveContextUseCase(docs, chunks, embedder, builder.build, 5, nil)

	got := uc.RetrieveContext(context.Background(), "dogs", "t1", 5)
	want := "dogs bark loudly\n\ncats and dogs play"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRetrieveFallsBackWhenIndexIsEmpty(t *testing.T) {
	docs := &docRepoFake{hasCompleted: true}
	chunks := &chunkRepoFake{list: tenantChunks()}
	builder := &indexBuilderFake{index: &indexFake{}}
	embedder := &embedderFake{available: true, embedOK: true, dim: 2, vector: []float32{1, 0}}

	uc := NewRetrieveContextUseCase(docs, chunks, embedder, builder.build, 5, nil)

	got := uc.RetrieveContext(context.Background(), "cat", "t1", 5)
	want := "the cat sat\n\ncats and dogs play"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if embedder.calls != 0 {
		t.Fatalf("query must not be embedded when nothing is indexable")
	}
}

func TestRetrieveNoRelevantInformationSentinel(t *testing.T) {
	docs := &docRepoFake{hasCompleted: true}
	chunks := &chunkRepoFake{list: tenantChunks()}
	observer := &observerFake{}

	uc := NewRetrieveContextUseCase(docs, chunks, &embedderFake{}, nil, 5, observer)

	if got := uc.RetrieveContext(context.Background(), "quantum flux", "t1", 5); got != NoRelevantInformationSentinel {
		t.Fatalf("got %q, want no-relevant-information sentinel", got)
	}
	if observer.records[0].mode != RetrievalModeNoMatches {
		t.Fatalf("expected no_matches mode, got %q", observer.records[0].mode)
	}
}

func TestRetrieveConvertsStorageErrorsToSentinel(t *testing.T) {
	observer := &observerFake{}
	uc := NewRetrieveContextUseCase(
		&docRepoFake{hasCompletedErr: errors.New("connection refused")},
		&chunkRepoFake{},
		&embedderFake{},
		nil, 5, observer,
	)

	if got := uc.RetrieveContext(context.Background(), "cat", "t1", 5); got != RetrievalErrorSentinel {
		t.Fatalf("got %q, want error sentinel", got)
	}
	if observer.records[0].mode != RetrievalModeError {
		t.Fatalf("expected error mode, got %q", observer.records[0].mode)
	}

	uc = NewRetrieveContextUseCase(
		&docRepoFake{hasCompleted: true},
		&chunkRepoFake{listErr: errors.New("scan failed")},
		&embedderFake{},
		nil, 5, nil,
	)
	if got := uc.RetrieveContext(context.Background(), "cat", "t1", 5); got != RetrievalErrorSentinel {
		t.Fatalf("got %q, want error sentinel", got)
	}
}

func TestRetrieveAppliesDefaultTopK(t *testing.T) {
	many := make([]domain.Chunk, 0, 8)
	for i := 0; i < 8; i++ {
		many = append(many, domain.Chunk{ID: string(rune('a' + i)), Index: i, Content: "cat fact"})
	}
	uc := NewRetrieveContextUseCase(
		&docRepoFake{hasCompleted: true},
		&chunkRepoFake{list: many},
		&embedderFake{},
		nil, 0, nil,
	)

	got := uc.RetrieveContext(context.Background(), "cat", "t1", 0)
	if parts := strings.Count(got, "\n\n") + 1; parts != DefaultTopK {
		t.Fatalf("expected %d chunks in context, got %d", DefaultTopK, parts)
	}
}
