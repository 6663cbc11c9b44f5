package retrieval

import (
	"context"
	"fmt"

	"github.com/siherrmann/urlrag/core/pipeline"
	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
)

// Retriever embeds a query and runs a strategy with a fixed query config
type Retriever struct {
	pipeline *pipeline.Pipeline
	strategy Strategy
	config   model.QueryConfig
}

// NewRetriever creates a new retriever
func NewRetriever(p *pipeline.Pipeline, strategy Strategy, config model.QueryConfig) *Retriever {
	return &Retriever{
		pipeline: p,
		strategy: strategy,
		config:   config,
	}
}

// Retrieve returns the chunks relevant to the query
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]*model.RetrievalResult, error) {
	if r.config.TopK <= 0 {
		return nil, helper.NewError("retriever validation", fmt.Errorf("k must be positive, got %d", r.config.TopK))
	}

	embedding, err := r.pipeline.EmbedQuery(ctx, query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	results, err := r.strategy.Retrieve(ctx, embedding, &r.config)
	if err != nil {
		return nil, helper.NewError("retrieve", err)
	}

	return results, nil
}
