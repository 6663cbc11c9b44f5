package model

import (
	"time"

	"github.com/google/uuid"
)

type RetrievalMethod string

const (
	RetrievalMethodVector RetrievalMethod = "vector"
)

// Chunk represents a stored piece of a loaded web page
type Chunk struct {
	ID           int64     `json:"id"`
	RID          uuid.UUID `json:"rid"`
	CollectionID int64     `json:"collection_id"`
	Content      string    `json:"content"`
	Source       string    `json:"source"`
	ChunkIndex   int       `json:"chunk_index"`
	Embedding    []float32 `json:"embedding,omitempty"`
	Metadata     Metadata  `json:"metadata,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	// Results
	Similarity *float64 `json:"similarity,omitempty"`
}
