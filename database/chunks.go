package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
	loadSql "github.com/siherrmann/urlrag/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunks(ctx context.Context, chunks []*model.Chunk) error
	DeleteChunk(ctx context.Context, rid uuid.UUID) error
	SelectChunk(ctx context.Context, rid uuid.UUID) (*model.Chunk, error)
	SelectChunksByCollection(ctx context.Context, collectionID int64) ([]*model.Chunk, error)
	CountChunksByCollection(ctx context.Context, collectionID int64) (int, error)
	SelectChunksBySimilarity(ctx context.Context, collectionID int64, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db           *helper.Database
	embeddingDim int
}

// queryRower is implemented by *sql.DB and *sql.Tx
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is implemented by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// NewChunksDBHandler creates a new chunks database handler.
// The collections table has to exist before, chunks reference it.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}
	if embeddingDim <= 0 {
		return nil, helper.NewError("embedding dimension validation", fmt.Errorf("embedding dimension must be positive, got %d", embeddingDim))
	}

	chunksDbHandler := &ChunksDBHandler{
		db:           db,
		embeddingDim: embeddingDim,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler", "embedding_dim", embeddingDim)

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table with its vector index.
// If the table already exists, it does not create it again.
func (h *ChunksDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, h.embeddingDim)
	if err != nil {
		return helper.NewError("init chunks", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunks inserts all chunks in one transaction.
// Either all chunks are stored or none. A missing RID is generated.
func (h *ChunksDBHandler) InsertChunks(ctx context.Context, chunks []*model.Chunk) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}

	for i, chunk := range chunks {
		err = h.insertChunk(ctx, tx, chunk)
		if err != nil {
			rollbackErr := tx.Rollback()
			if rollbackErr != nil {
				h.db.Logger.Error("Error rolling back chunk insert", "error", rollbackErr)
			}
			return helper.NewError(fmt.Sprintf("insert chunk %d", i), err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return helper.NewError("commit transaction", err)
	}

	return nil
}

func (h *ChunksDBHandler) insertChunk(ctx context.Context, q queryRower, chunk *model.Chunk) error {
	if chunk.Source == "" {
		return helper.NewError("chunk validation", fmt.Errorf("chunk source is empty"))
	}
	if len(chunk.Embedding) != h.embeddingDim {
		return helper.NewError("chunk validation", fmt.Errorf("embedding has %d dimensions, expected %d", len(chunk.Embedding), h.embeddingDim))
	}
	if chunk.RID == uuid.Nil {
		chunk.RID = uuid.New()
	}
	if chunk.Metadata == nil {
		chunk.Metadata = model.Metadata{}
	}

	row := q.QueryRowContext(
		ctx,
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7)`,
		chunk.RID,
		chunk.CollectionID,
		chunk.Content,
		chunk.Source,
		chunk.ChunkIndex,
		pgvector.NewVector(chunk.Embedding),
		chunk.Metadata,
	)

	err := scanChunk(row, chunk, nil)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// DeleteChunk deletes a chunk by RID
func (h *ChunksDBHandler) DeleteChunk(ctx context.Context, rid uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_chunk($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectChunk retrieves a chunk by RID
func (h *ChunksDBHandler) SelectChunk(ctx context.Context, rid uuid.UUID) (*model.Chunk, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_chunk($1)`,
		rid,
	)

	chunk := &model.Chunk{}
	err := scanChunk(row, chunk, nil)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByCollection retrieves all chunks of a collection in insert order
func (h *ChunksDBHandler) SelectChunksByCollection(ctx context.Context, collectionID int64) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_collection($1)`,
		collectionID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	chunks := []*model.Chunk{}
	for rows.Next() {
		chunk := &model.Chunk{}
		err := scanChunk(rows, chunk, nil)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// CountChunksByCollection returns the number of chunks stored for a collection
func (h *ChunksDBHandler) CountChunksByCollection(ctx context.Context, collectionID int64) (int, error) {
	var count int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT count_chunks_by_collection($1)`,
		collectionID,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("count chunks", err)
	}
	return count, nil
}

// SelectChunksBySimilarity finds the chunks of a collection closest to the embedding by cosine similarity.
// Results are ordered by similarity, most similar first.
// With the HNSW index the collection filter runs after the index scan. hnsw.ef_search is
// raised to the limit (40 to 1000), but when many collections share the table fewer than
// limit chunks can still come back for a small collection.
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, collectionID int64, embedding []float32, limit int, threshold float64) ([]*model.Chunk, error) {
	if len(embedding) != h.embeddingDim {
		return nil, helper.NewError("embedding validation", fmt.Errorf("embedding has %d dimensions, expected %d", len(embedding), h.embeddingDim))
	}
	if limit <= 0 {
		return []*model.Chunk{}, nil
	}

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3, $4)`,
		collectionID,
		pgvector.NewVector(embedding),
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	chunks := []*model.Chunk{}
	for rows.Next() {
		chunk := &model.Chunk{}
		var similarity float64
		err := scanChunk(rows, chunk, &similarity)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunk.Similarity = &similarity

		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// scanChunk scans a chunk row, similarity is only scanned for search results
func scanChunk(row rowScanner, chunk *model.Chunk, similarity *float64) error {
	var embedding pgvector.Vector
	dest := []any{
		&chunk.ID,
		&chunk.RID,
		&chunk.CollectionID,
		&chunk.Content,
		&chunk.Source,
		&chunk.ChunkIndex,
		&embedding,
		&chunk.Metadata,
		&chunk.CreatedAt,
	}
	if similarity != nil {
		dest = append(dest, similarity)
	}

	err := row.Scan(dest...)
	if err != nil {
		return err
	}

	chunk.Embedding = embedding.Slice()
	return nil
}
