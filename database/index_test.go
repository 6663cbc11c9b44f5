package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChangeIndexType(t *testing.T) {
	database := initDB(t)

	// Chunks reference a collection
	_, err := NewCollectionsDBHandler(database, true)
	require.NoError(t, err, "Expected NewCollectionsDBHandler to not return an error")

	chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewChunksDBHandler to not return an error")

	ctx := context.Background()

	tests := []struct {
		name      string
		indexType string
		params    IndexParams
	}{
		{"Change index to HNSW with default params", IndexTypeHNSW, IndexParams{}},
		{"Change index to HNSW with custom params", IndexTypeHNSW, IndexParams{M: 32, EfConstruction: 128}},
		{"Change index to IVFFlat with default params", IndexTypeIVFFlat, IndexParams{}},
		{"Change index to IVFFlat with custom params", IndexTypeIVFFlat, IndexParams{Lists: 200}},
		{"Change index back to HNSW", IndexTypeHNSW, IndexParams{M: 16, EfConstruction: 64}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := chunksDbHandler.ChangeIndexType(ctx, tt.indexType, tt.params)
			assert.NoError(t, err)

			var indexDef string
			err = database.Instance.QueryRow(
				`SELECT indexdef FROM pg_indexes WHERE indexname = 'idx_chunks_embedding';`,
			).Scan(&indexDef)
			require.NoError(t, err)
			assert.Contains(t, indexDef, "USING "+tt.indexType)
		})
	}

	t.Run("Change index with unsupported index type keeps the existing index", func(t *testing.T) {
		err := chunksDbHandler.ChangeIndexType(ctx, "invalid", IndexParams{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported index type")

		var exists bool
		err = database.Instance.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_indexes WHERE indexname = 'idx_chunks_embedding');`,
		).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Change index with cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := chunksDbHandler.ChangeIndexType(cancelled, IndexTypeHNSW, IndexParams{})
		assert.Error(t, err)
	})
}
