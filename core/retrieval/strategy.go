package retrieval

import (
	"context"

	"github.com/siherrmann/urlrag/model"
)

// Strategy defines a retrieval strategy
type Strategy interface {
	Retrieve(ctx context.Context, embedding []float32, config *model.QueryConfig) ([]*model.RetrievalResult, error)
}

// VectorOnlyStrategy performs pure vector similarity search in one collection
type VectorOnlyStrategy struct {
	engine       *Engine
	collectionID int64
}

// NewVectorOnlyStrategy creates a new vector-only strategy
func NewVectorOnlyStrategy(engine *Engine, collectionID int64) *VectorOnlyStrategy {
	return &VectorOnlyStrategy{
		engine:       engine,
		collectionID: collectionID,
	}
}

// Retrieve performs vector-only retrieval
func (s *VectorOnlyStrategy) Retrieve(ctx context.Context, embedding []float32, config *model.QueryConfig) ([]*model.RetrievalResult, error) {
	return s.engine.VectorRetrieve(ctx, embedding, s.collectionID, config)
}
