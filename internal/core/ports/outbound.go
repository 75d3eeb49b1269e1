package ports

import (
	"context"
	"io"

	"github.com/avoronov/kbengine/internal/core/domain"
)

// DocumentRepository persists and reads document state. Status updates
// are single-row atomic so that a crash mid-pipeline stays observable as
// stuck-in-processing.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	HasCompleted(ctx context.Context, tenantID string) (bool, error)
	SetStatus(ctx context.Context, id string, status domain.DocumentStatus) error
	MarkCompleted(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// ChunkRepository persists and reads chunk rows. DeleteByDocument backs
// the caller-driven cascade: chunks are owned by their document, and a
// caller re-triggering ingestion clears prior rows through it.
type ChunkRepository interface {
	Insert(ctx context.Context, chunk *domain.Chunk) error
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Chunk, error)
	DeleteByDocument(ctx context.Context, documentID string) error
}

// BlobStorage stores raw document content keyed by storage path.
type BlobStorage interface {
	Save(ctx context.Context, path string, data io.Reader) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, paths []string) error
}

// TenantDirectory resolves tenant display names and feature flags.
type TenantDirectory interface {
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
}

// Embedder maps text to a fixed-dimension vector, or reports that no
// embedding is available. Absence is a valid state: Embed never returns
// an error, and in degraded mode it always returns (nil, false).
type Embedder interface {
	Available() bool
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, bool)
}

// VectorIndex is an exact-search structure over chunk embeddings, built
// fresh per retrieval call and never shared.
type VectorIndex interface {
	Len() int
	Search(query []float32, k int) []domain.ScoredChunk
}

// VectorIndexBuilder constructs a VectorIndex over exactly the chunks
// whose embedding matches dim; everything else is excluded, not failed on.
type VectorIndexBuilder func(dim int, chunks []domain.Chunk) VectorIndex

// Chunker splits raw text into bounded-size passages.
type Chunker interface {
	Split(text string) []string
}

// MessageQueue carries ingest requests from the upload path to the
// background worker.
type MessageQueue interface {
	PublishIngestRequest(ctx context.Context, req domain.IngestRequest) error
	SubscribeIngestRequests(ctx context.Context, handler func(context.Context, domain.IngestRequest) error) error
}
