package ports

import (
	"context"

	"github.com/avoronov/kbengine/internal/core/domain"
)

// DocumentIngestor drives a document through decode, chunk, embed and
// persist. The boolean result is the whole contract: failures are
// recorded on the document status and never propagate to the caller.
type DocumentIngestor interface {
	Ingest(ctx context.Context, req domain.IngestRequest) bool
}

// ContextRetriever returns the formatted context string for a query, or
// one of the fixed sentinel strings. It never fails.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, query, tenantID string, limit int) string
}

// PromptBuilder renders the tenant-branded system prompt consumed by the
// conversation layer.
type PromptBuilder interface {
	BuildSystemPrompt(ctx context.Context, tenantID, userMessage string) (string, error)
}
