package domain

import "time"

// Chunk is the unit of retrieval: a word-bounded slice of a document's
// text. Embedding is nil when no embedding capability was available at
// ingestion time; that is an expected state, not an error.
type Chunk struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	TenantID   string    `json:"tenant_id"`
	Index      int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasEmbedding reports whether the chunk carries a vector of the given
// dimension. Mismatched vectors are treated the same as absent ones.
func (c Chunk) HasEmbedding(dim int) bool {
	return dim > 0 && len(c.Embedding) == dim
}
