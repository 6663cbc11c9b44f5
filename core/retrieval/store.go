package retrieval

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/siherrmann/urlrag/core/pipeline"
	"github.com/siherrmann/urlrag/database"
	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
)

// Store is the vector store of one collection.
// It embeds chunks on insert and queries on search.
type Store struct {
	collections database.CollectionsDBHandlerFunctions
	chunks      database.ChunksDBHandlerFunctions
	engine      *Engine
	pipeline    *pipeline.Pipeline
	collection  *model.Collection
}

// NewStore creates a store for the named collection, the collection is created if it doesn't exist
func NewStore(ctx context.Context, collections database.CollectionsDBHandlerFunctions, chunks database.ChunksDBHandlerFunctions, p *pipeline.Pipeline, collectionName string) (*Store, error) {
	if collections == nil || chunks == nil {
		return nil, helper.NewError("store validation", fmt.Errorf("database handlers are required"))
	}
	if p == nil || p.Embedder == nil {
		return nil, helper.NewError("store validation", fmt.Errorf("an embedder is required"))
	}

	collection, err := collections.EnsureCollection(ctx, collectionName, nil)
	if err != nil {
		return nil, helper.NewError("ensure collection", err)
	}

	return &Store{
		collections: collections,
		chunks:      chunks,
		engine:      NewEngine(chunks),
		pipeline:    p,
		collection:  collection,
	}, nil
}

// Collection returns the collection of the store
func (s *Store) Collection() *model.Collection {
	return s.collection
}

// SetPipeline replaces the pipeline used to embed chunks and queries
func (s *Store) SetPipeline(p *pipeline.Pipeline) {
	s.pipeline = p
}

// Reset deletes all chunks of the collection
func (s *Store) Reset(ctx context.Context) (int, error) {
	deleted, err := s.collections.ResetCollection(ctx, s.collection.ID)
	if err != nil {
		return 0, helper.NewError("reset collection", err)
	}
	return deleted, nil
}

// AddChunks embeds the chunks and stores them in one batch.
// Every chunk gets a new RID, the RIDs are returned in chunk order.
func (s *Store) AddChunks(ctx context.Context, chunks []*model.Chunk) ([]uuid.UUID, error) {
	rids := make([]uuid.UUID, len(chunks))
	for i, chunk := range chunks {
		chunk.RID = uuid.New()
		chunk.CollectionID = s.collection.ID
		rids[i] = chunk.RID
	}

	err := s.pipeline.Embed(ctx, chunks)
	if err != nil {
		return nil, helper.NewError("embed chunks", err)
	}

	err = s.chunks.InsertChunks(ctx, chunks)
	if err != nil {
		return nil, helper.NewError("insert chunks", err)
	}

	return rids, nil
}

// Count returns the number of chunks in the collection
func (s *Store) Count(ctx context.Context) (int, error) {
	count, err := s.chunks.CountChunksByCollection(ctx, s.collection.ID)
	if err != nil {
		return 0, helper.NewError("count chunks", err)
	}
	return count, nil
}

// Chunks returns all chunks of the collection
func (s *Store) Chunks(ctx context.Context) ([]*model.Chunk, error) {
	chunks, err := s.chunks.SelectChunksByCollection(ctx, s.collection.ID)
	if err != nil {
		return nil, helper.NewError("select chunks", err)
	}
	return chunks, nil
}

// Chunk returns a chunk of the collection by RID
func (s *Store) Chunk(ctx context.Context, rid uuid.UUID) (*model.Chunk, error) {
	chunk, err := s.chunks.SelectChunk(ctx, rid)
	if err != nil {
		return nil, helper.NewError("select chunk", err)
	}
	if chunk.CollectionID != s.collection.ID {
		return nil, helper.NewError("select chunk", fmt.Errorf("chunk %s is not part of collection %s", rid, s.collection.Name))
	}
	return chunk, nil
}

// DeleteChunk deletes a chunk of the collection by RID
func (s *Store) DeleteChunk(ctx context.Context, rid uuid.UUID) error {
	_, err := s.Chunk(ctx, rid)
	if err != nil {
		return err
	}

	err = s.chunks.DeleteChunk(ctx, rid)
	if err != nil {
		return helper.NewError("delete chunk", err)
	}
	return nil
}

// SimilaritySearch returns the k chunks most similar to the query
func (s *Store) SimilaritySearch(ctx context.Context, query string, k int) ([]*model.Chunk, error) {
	results, err := s.AsRetriever(k).Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	chunks := make([]*model.Chunk, len(results))
	for i, result := range results {
		chunks[i] = result.Chunk
	}
	return chunks, nil
}

// AsRetriever returns a retriever returning the k most similar chunks of the collection
func (s *Store) AsRetriever(k int) *Retriever {
	config := model.DefaultQueryConfig()
	config.TopK = k
	return NewRetriever(s.pipeline, NewVectorOnlyStrategy(s.engine, s.collection.ID), config)
}
