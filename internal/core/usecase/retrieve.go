package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avoronov/kbengine/internal/core/domain"
	"github.com/avoronov/kbengine/internal/core/ports"
)

// Sentinel strings returned in lieu of content. The conversation layer
// recognizes them verbatim, so they must never change shape.
const (
	NoProcessedDocumentsSentinel  = "No processed documents available for this tenant."
	NoRelevantInformationSentinel = "No relevant information found in the available documents."
	RetrievalErrorSentinel        = "Error retrieving document context."
)

const DefaultTopK = 5

// RetrievalObserver receives the outcome of each retrieval call. A nil
// observer disables observation.
type RetrievalObserver interface {
	ObserveRetrieval(mode string, duration time.Duration, chunks int)
}

// Retrieval modes as reported to the observer.
const (
	RetrievalModeVector      = "vector"
	RetrievalModeKeyword     = "keyword"
	RetrievalModeNoDocuments = "no_documents"
	RetrievalModeNoMatches   = "no_matches"
	RetrievalModeError       = "error"
)

type RetrieveContextUseCase struct {
	docs       ports.DocumentRepository
	chunks     ports.ChunkRepository
	embedder   ports.Embedder
	buildIndex ports.VectorIndexBuilder
	topK       int
	observer   RetrievalObserver
}

func NewRetrieveContextUseCase(
	docs ports.DocumentRepository,
	chunks ports.ChunkRepository,
	embedder ports.Embedder,
	buildIndex ports.VectorIndexBuilder,
	topK int,
	observer RetrievalObserver,
) *RetrieveContextUseCase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrieveContextUseCase{
		docs:       docs,
		chunks:     chunks,
		embedder:   embedder,
		buildIndex: buildIndex,
		topK:       topK,
		observer:   observer,
	}
}

// RetrieveContext returns the formatted context string for a query. It
// never fails: storage and embedding errors are logged with their typed
// kind and converted to the error sentinel, so a conversation can always
// proceed. Failures are thereby distinguishable from no-data internally
// while staying invisible to the caller.
func (uc *RetrieveContextUseCase) RetrieveContext(ctx context.Context, query, tenantID string, limit int) string {
	start := time.Now()
	if limit <= 0 {
		limit = uc.topK
	}

	text, mode, count, err := uc.retrieve(ctx, query, tenantID, limit)
	if err != nil {
		slog.Error("retrieve context", "tenant_id", tenantID, "error", err)
		uc.observe(RetrievalModeError, start, 0)
		return RetrievalErrorSentinel
	}

	uc.observe(mode, start, count)
	return text
}

func (uc *RetrieveContextUseCase) retrieve(ctx context.Context, query, tenantID string, limit int) (string, string, int, error) {
	hasCompleted, err := uc.docs.HasCompleted(ctx, tenantID)
	if err != nil {
		return "", "", 0, fmt.Errorf("check processed documents: %w", err)
	}
	if !hasCompleted {
		return NoProcessedDocumentsSentinel, RetrievalModeNoDocuments, 0, nil
	}

	chunks, err := uc.chunks.ListByTenant(ctx, tenantID)
	if err != nil {
		return "", "", 0, fmt.Errorf("load tenant chunks: %w", err)
	}

	if uc.embedder.Available() {
		if hits := uc.searchVectors(ctx, query, chunks, limit); len(hits) > 0 {
			return formatContext(hits), RetrievalModeVector, len(hits), nil
		}
	}

	// Keyword fallback runs over all chunks, embedded or not.
	matches := trimScored(matchKeywords(query, chunks), limit)
	if len(matches) == 0 {
		return NoRelevantInformationSentinel, RetrievalModeNoMatches, 0, nil
	}
	return formatContext(matches), RetrievalModeKeyword, len(matches), nil
}

// searchVectors embeds the query and searches a fresh index over the
// valid-embedding chunks. Any shortfall (no indexable chunks, query
// embedding unavailable, empty search result) yields nil so the caller
// falls through to keyword matching.
func (uc *RetrieveContextUseCase) searchVectors(ctx context.Context, query string, chunks []domain.Chunk, limit int) []domain.ScoredChunk {
	if uc.buildIndex == nil {
		return nil
	}

	index := uc.buildIndex(uc.embedder.Dimension(), chunks)
	if index == nil || index.Len() == 0 {
		return nil
	}

	queryVector, ok := uc.embedder.Embed(ctx, query)
	if !ok {
		return nil
	}
	return index.Search(queryVector, limit)
}

// formatContext concatenates the selected chunk contents in ranked order,
// separated by a blank line. This string is the engine's only retrieval
// artifact.
func formatContext(scored []domain.ScoredChunk) string {
	parts := make([]string, 0, len(scored))
	for _, s := range scored {
		parts = append(parts, s.Chunk.Content)
	}
	return strings.Join(parts, "\n\n")
}

func (uc *RetrieveContextUseCase) observe(mode string, start time.Time, chunks int) {
	if uc.observer == nil {
		return
	}
	uc.observer.ObserveRetrieval(mode, time.Since(start), chunks)
}
