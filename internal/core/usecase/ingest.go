package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/avoronov/kbengine/internal/core/domain"
	"github.com/avoronov/kbengine/internal/core/ports"
)

// IngestObserver receives the outcome of each ingestion run. A nil
// observer disables observation.
type IngestObserver interface {
	ObserveIngest(succeeded bool, duration time.Duration, chunks int)
}

type IngestDocumentUseCase struct {
	docs     ports.DocumentRepository
	chunks   ports.ChunkRepository
	blobs    ports.BlobStorage
	chunker  ports.Chunker
	embedder ports.Embedder
	observer IngestObserver
}

func NewIngestDocumentUseCase(
	docs ports.DocumentRepository,
	chunks ports.ChunkRepository,
	blobs ports.BlobStorage,
	chunker ports.Chunker,
	embedder ports.Embedder,
	observer IngestObserver,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		docs:     docs,
		chunks:   chunks,
		blobs:    blobs,
		chunker:  chunker,
		embedder: embedder,
		observer: observer,
	}
}

// Ingest drives one document through decode, chunk, embed and persist,
// advancing the status state machine. The boolean is the entire caller
// contract: any failure is recorded as a failed:<reason> status and
// logged, never propagated. Partially written chunks from a failed
// attempt stay in place; re-ingestion is the caller's decision (clearing
// prior rows via ChunkRepository.DeleteByDocument first).
func (uc *IngestDocumentUseCase) Ingest(ctx context.Context, req domain.IngestRequest) bool {
	start := time.Now()

	// Recorded before any decoding work: a crash mid-pipeline is then
	// observable as stuck-in-processing rather than silent loss.
	if err := uc.docs.SetStatus(ctx, req.DocumentID, domain.StatusProcessing); err != nil {
		slog.Error("set status=processing", "document_id", req.DocumentID, "error", err)
		uc.observe(false, start, 0)
		return false
	}

	persisted, err := uc.run(ctx, req)
	if err != nil {
		slog.Error("ingest document", "document_id", req.DocumentID, "tenant_id", req.TenantID, "error", err)
		if failErr := uc.docs.SetStatus(ctx, req.DocumentID, domain.FailedStatus(err.Error())); failErr != nil {
			slog.Error("mark failed status", "document_id", req.DocumentID, "error", failErr)
		}
		uc.observe(false, start, persisted)
		return false
	}

	if err := uc.docs.MarkCompleted(ctx, req.DocumentID); err != nil {
		slog.Error("mark completed status", "document_id", req.DocumentID, "error", err)
		uc.observe(false, start, persisted)
		return false
	}

	uc.observe(true, start, persisted)
	return true
}

func (uc *IngestDocumentUseCase) run(ctx context.Context, req domain.IngestRequest) (int, error) {
	raw, err := uc.download(ctx, req.StoragePath)
	if err != nil {
		return 0, err
	}

	text, err := decodeContent(raw, req.DocumentType)
	if err != nil {
		return 0, err
	}

	// Zero chunks (empty content) is a success with nothing persisted.
	pieces := uc.chunker.Split(text)
	now := time.Now().UTC()

	for i, content := range pieces {
		// Embedding absence is a valid state, never a failure.
		vector, _ := uc.embedder.Embed(ctx, content)

		chunk := &domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: req.DocumentID,
			TenantID:   req.TenantID,
			Index:      i,
			Content:    content,
			Embedding:  vector,
			CreatedAt:  now,
		}
		if err := uc.chunks.Insert(ctx, chunk); err != nil {
			return i, fmt.Errorf("persist chunk %d: %w", i, err)
		}
	}

	return len(pieces), nil
}

func (uc *IngestDocumentUseCase) download(ctx context.Context, path string) ([]byte, error) {
	reader, err := uc.blobs.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open stored document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read stored document: %w", err)
	}
	return raw, nil
}

// decodeContent applies the decoding policy: text-typed documents decode
// as UTF-8 strictly; all other declared types decode best-effort with
// invalid bytes replaced. No binary-format parsing happens here.
func decodeContent(raw []byte, documentType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(documentType)) {
	case "txt", "text":
		if !utf8.Valid(raw) {
			return "", domain.WrapError(domain.ErrInvalidInput, "decode document", errors.New("content is not valid UTF-8"))
		}
		return string(raw), nil
	default:
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), nil
	}
}

func (uc *IngestDocumentUseCase) observe(succeeded bool, start time.Time, chunks int) {
	if uc.observer == nil {
		return
	}
	uc.observer.ObserveIngest(succeeded, time.Since(start), chunks)
}
