package retrieval

import (
	"context"
	"sort"

	"github.com/siherrmann/urlrag/database"
	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
)

// Engine runs similarity queries against the stored chunks
type Engine struct {
	chunks database.ChunksDBHandlerFunctions
}

// NewEngine creates a new retrieval engine
func NewEngine(chunks database.ChunksDBHandlerFunctions) *Engine {
	return &Engine{
		chunks: chunks,
	}
}

// VectorRetrieve performs pure vector similarity search within a collection.
// Results are ordered by similarity, most similar first.
func (e *Engine) VectorRetrieve(ctx context.Context, embedding []float32, collectionID int64, config *model.QueryConfig) ([]*model.RetrievalResult, error) {
	if config == nil {
		defaultConfig := model.DefaultQueryConfig()
		config = &defaultConfig
	}

	chunks, err := e.chunks.SelectChunksBySimilarity(ctx, collectionID, embedding, config.TopK, config.SimilarityThreshold)
	if err != nil {
		return nil, helper.NewError("select chunks by similarity", err)
	}

	results := make([]*model.RetrievalResult, len(chunks))
	for i, chunk := range chunks {
		score := 0.0
		if chunk.Similarity != nil {
			score = *chunk.Similarity
		}
		results[i] = &model.RetrievalResult{
			Chunk:           chunk,
			Score:           score,
			RetrievalMethod: model.RetrievalMethodVector,
		}
	}

	sortResults(results)

	return results, nil
}

func sortResults(results []*model.RetrievalResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}
