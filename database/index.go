package database

import (
	"context"
	"fmt"
	"time"

	"github.com/siherrmann/urlrag/helper"
)

// Vector index types
const (
	IndexTypeHNSW    = "hnsw"
	IndexTypeIVFFlat = "ivfflat"
)

// IndexParams are the build parameters of a vector index.
// Zero values fall back to the pgvector defaults.
type IndexParams struct {
	// HNSW
	M              int
	EfConstruction int
	// IVFFlat
	Lists int
}

// ChangeIndexType rebuilds the chunk embedding index as HNSW or IVFFlat.
// IVFFlat builds its lists from existing rows, so it should be created after ingestion.
func (h *ChunksDBHandler) ChangeIndexType(ctx context.Context, indexType string, params IndexParams) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if indexType != IndexTypeHNSW && indexType != IndexTypeIVFFlat {
		return helper.NewError("change index type", fmt.Errorf("unsupported index type: %s (use 'hnsw' or 'ivfflat')", indexType))
	}

	_, err := h.db.Instance.ExecContext(ctx, `DROP INDEX IF EXISTS idx_chunks_embedding;`)
	if err != nil {
		return helper.NewError("drop index", err)
	}

	h.db.Logger.Info("Dropped existing vector index")

	var createIndexSQL string

	switch indexType {
	case IndexTypeHNSW:
		m := 16
		efConstruction := 64

		if params.M > 0 {
			m = params.M
		}
		if params.EfConstruction > 0 {
			efConstruction = params.EfConstruction
		}

		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops) WITH (m = %d, ef_construction = %d);`,
			m, efConstruction,
		)

	case IndexTypeIVFFlat:
		lists := 100
		if params.Lists > 0 {
			lists = params.Lists
		}

		createIndexSQL = fmt.Sprintf(
			`CREATE INDEX idx_chunks_embedding ON chunks USING ivfflat (embedding vector_cosine_ops) WITH (lists = %d);`,
			lists,
		)
	}

	_, err = h.db.Instance.ExecContext(ctx, createIndexSQL)
	if err != nil {
		return helper.NewError("create index", err)
	}

	h.db.Logger.Info("Created vector index", "type", indexType, "params", fmt.Sprintf("%+v", params))

	return nil
}
