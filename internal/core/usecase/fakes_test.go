package usecase

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/avoronov/kbengine/internal/core/domain"
	"github.com/avoronov/kbengine/internal/core/ports"
)

type docRepoFake struct {
	hasCompleted    bool
	hasCompletedErr error

	statusCalls   []domain.DocumentStatus
	statusErr     error
	completedIDs  []string
	markCompleted error
}

func (f *docRepoFake) Create(context.Context, *domain.Document) error { return nil }

func (f *docRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	return nil, domain.ErrDocumentNotFound
}

func (f *docRepoFake) HasCompleted(context.Context, string) (bool, error) {
	if f.hasCompletedErr != nil {
		return false, f.hasCompletedErr
	}
	return f.hasCompleted, nil
}

func (f *docRepoFake) SetStatus(_ context.Context, _ string, status domain.DocumentStatus) error {
	f.statusCalls = append(f.statusCalls, status)
	if status == domain.StatusProcessing && f.statusErr != nil {
		return f.statusErr
	}
	return nil
}

func (f *docRepoFake) MarkCompleted(_ context.Context, id string) error {
	if f.markCompleted != nil {
		return f.markCompleted
	}
	f.completedIDs = append(f.completedIDs, id)
	return nil
}

func (f *docRepoFake) Delete(context.Context, string) error { return nil }

type chunkRepoFake struct {
	list    []domain.Chunk
	listErr error

	inserted  []domain.Chunk
	failAt    int // 1-based insert call that fails; 0 = never
	insertErr error
}

func (f *chunkRepoFake) Insert(_ context.Context, chunk *domain.Chunk) error {
	if f.failAt > 0 && len(f.inserted)+1 == f.failAt {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *chunk)
	return nil
}

func (f *chunkRepoFake) ListByTenant(context.Context, string) ([]domain.Chunk, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *chunkRepoFake) DeleteByDocument(context.Context, string) error { return nil }

type blobFake struct {
	objects map[string][]byte
	openErr error
}

func (f *blobFake) Save(context.Context, string, io.Reader) error { return nil }

func (f *blobFake) Open(_ context.Context, path string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(bytes.NewReader(f.objects[path])), nil
}

func (f *blobFake) Remove(context.Context, []string) error { return nil }

type embedderFake struct {
	available bool
	dim       int
	vector    []float32
	embedOK   bool
	calls     int
}

func (f *embedderFake) Available() bool { return f.available }
func (f *embedderFake) Dimension() int  { return f.dim }

func (f *embedderFake) Embed(context.Context, string) ([]float32, bool) {
	f.calls++
	if !f.available || !f.embedOK {
		return nil, false
	}
	return f.vector, true
}

type indexFake struct {
	hits     []domain.ScoredChunk
	searched int
	lastK    int
}

func (f *indexFake) Len() int { return len(f.hits) }

func (f *indexFake) Search(_ []float32, k int) []domain.ScoredChunk {
	f.searched++
	f.lastK = k
	if k > len(f.hits) {
		k = len(f.hits)
	}
	return f.hits[:k]
}

type indexBuilderFake struct {
	index  *indexFake
	builds int
}

func (f *indexBuilderFake) build(_ int, _ []domain.Chunk) ports.VectorIndex {
	f.builds++
	return f.index
}

type observationRecord struct {
	mode   string
	chunks int
}

type observerFake struct {
	records []observationRecord
}

func (f *observerFake) ObserveRetrieval(mode string, _ time.Duration, chunks int) {
	f.records = append(f.records, observationRecord{mode: mode, chunks: chunks})
}

type tenantDirectoryFake struct {
	tenant *domain.Tenant
	err    error
}

func (f *tenantDirectoryFake) GetByID(context.Context, string) (*domain.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tenant, nil
}

type retrieverFake struct {
	result     string
	lastQuery  string
	lastTenant string
}

func (f *retrieverFake) RetrieveContext(_ context.Context, query, tenantID string, _ int) string {
	f.lastQuery = query
	f.lastTenant = tenantID
	return f.result
}
