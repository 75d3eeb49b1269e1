package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/avoronov/kbengine/internal/core/domain"
)

type ChunkRepository struct {
	db *sql.DB
}

func NewChunkRepository(db *sql.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

func (r *ChunkRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026083002)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS document_chunks (
	id TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	tenant_id TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	embedding JSONB,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_document_chunks_tenant ON document_chunks(tenant_id);
CREATE INDEX IF NOT EXISTS idx_document_chunks_document ON document_chunks(document_id);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *ChunkRepository) Insert(ctx context.Context, chunk *domain.Chunk) error {
	var embedding any
	if len(chunk.Embedding) > 0 {
		raw, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("marshal embedding: %w", err)
		}
		embedding = raw
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO document_chunks (
	id, document_id, tenant_id, chunk_index, content, embedding, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7)
`,
		chunk.ID, chunk.DocumentID, chunk.TenantID, chunk.Index, chunk.Content, embedding, chunk.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chunk: %w", err)
	}
	return nil
}

// ListByTenant returns all chunk rows for a tenant in document order. A
// malformed stored embedding is not fatal: the row is returned with no
// embedding and the problem is logged, so retrieval degrades instead of
// failing.
func (r *ChunkRepository) ListByTenant(ctx context.Context, tenantID string) ([]domain.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, tenant_id, chunk_index, content, embedding, created_at
FROM document_chunks
WHERE tenant_id = $1
ORDER BY document_id, chunk_index
`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query tenant chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingRaw []byte

		err := rows.Scan(
			&chunk.ID, &chunk.DocumentID, &chunk.TenantID, &chunk.Index,
			&chunk.Content, &embeddingRaw, &chunk.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}

		if len(embeddingRaw) > 0 {
			if err := json.Unmarshal(embeddingRaw, &chunk.Embedding); err != nil {
				slog.Warn("malformed stored embedding, treating as absent",
					"chunk_id", chunk.ID,
					"document_id", chunk.DocumentID,
					"error", err,
				)
				chunk.Embedding = nil
			}
		}
		out = append(out, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}

func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete document chunks: %w", err)
	}
	return nil
}
