package domain

// ScoredChunk pairs a chunk with its relevance score. Vector search
// reports similarity derived from distance; keyword matching reports the
// count of distinct matching keywords.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
