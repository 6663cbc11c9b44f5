package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/urlrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionsNewCollectionsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewCollectionsDBHandler", func(t *testing.T) {
		collectionsDbHandler, err := NewCollectionsDBHandler(database, true)
		assert.NoError(t, err)
		require.NotNil(t, collectionsDbHandler)
		require.NotNil(t, collectionsDbHandler.db)
	})

	t.Run("Invalid call NewCollectionsDBHandler with nil database", func(t *testing.T) {
		_, err := NewCollectionsDBHandler(nil, false)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "database connection is nil")
	})
}

func TestCollectionsEnsure(t *testing.T) {
	database := initDB(t)
	collectionsDbHandler, err := NewCollectionsDBHandler(database, false)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Ensure creates a new collection", func(t *testing.T) {
		collection, err := collectionsDbHandler.EnsureCollection(ctx, "ensure_new", model.Metadata{"topic": "real estate"})
		require.NoError(t, err)
		assert.NotZero(t, collection.ID)
		assert.NotEqual(t, uuid.Nil, collection.RID)
		assert.Equal(t, "ensure_new", collection.Name)
		assert.Equal(t, "real estate", collection.Metadata["topic"])
	})

	t.Run("Ensure returns the existing collection", func(t *testing.T) {
		first, err := collectionsDbHandler.EnsureCollection(ctx, "ensure_existing", nil)
		require.NoError(t, err)

		second, err := collectionsDbHandler.EnsureCollection(ctx, "ensure_existing", nil)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.RID, second.RID)
	})

	t.Run("Ensure with empty name fails", func(t *testing.T) {
		_, err := collectionsDbHandler.EnsureCollection(ctx, "", nil)
		assert.Error(t, err)
	})

	t.Run("Select collection by name", func(t *testing.T) {
		created, err := collectionsDbHandler.EnsureCollection(ctx, "select_by_name", nil)
		require.NoError(t, err)

		collection, err := collectionsDbHandler.SelectCollectionByName(ctx, "select_by_name")
		require.NoError(t, err)
		assert.Equal(t, created.ID, collection.ID)
	})

	t.Run("Select unknown collection fails", func(t *testing.T) {
		_, err := collectionsDbHandler.SelectCollectionByName(ctx, "does_not_exist")
		assert.Error(t, err)
	})
}

func TestCollectionsReset(t *testing.T) {
	chunksDbHandler, collection := newTestChunkHandlers(t, "collections_reset")
	_, other := newTestChunkHandlers(t, "collections_reset_other")
	collectionsDbHandler, err := NewCollectionsDBHandler(chunksDbHandler.db, false)
	require.NoError(t, err)
	ctx := context.Background()

	err = chunksDbHandler.InsertChunks(ctx, []*model.Chunk{
		{CollectionID: collection.ID, Content: "a", Source: "https://example.com/a", Embedding: testEmbedding(testDim, 0)},
		{CollectionID: collection.ID, Content: "b", Source: "https://example.com/a", Embedding: testEmbedding(testDim, 1)},
		{CollectionID: other.ID, Content: "c", Source: "https://example.com/c", Embedding: testEmbedding(testDim, 2)},
	})
	require.NoError(t, err)

	t.Run("Reset deletes only the chunks of the collection", func(t *testing.T) {
		deleted, err := collectionsDbHandler.ResetCollection(ctx, collection.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, deleted)

		count, err := chunksDbHandler.CountChunksByCollection(ctx, collection.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		count, err = chunksDbHandler.CountChunksByCollection(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("Reset of an empty collection", func(t *testing.T) {
		deleted, err := collectionsDbHandler.ResetCollection(ctx, collection.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, deleted)
	})

	t.Run("Delete collection cascades to its chunks", func(t *testing.T) {
		err := collectionsDbHandler.DeleteCollection(ctx, other.RID)
		require.NoError(t, err)

		count, err := chunksDbHandler.CountChunksByCollection(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		_, err = collectionsDbHandler.SelectCollectionByName(ctx, other.Name)
		assert.Error(t, err)
	})
}
