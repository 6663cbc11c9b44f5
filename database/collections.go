package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
	"github.com/siherrmann/urlrag/sql"
)

// CollectionsDBHandlerFunctions defines the interface for Collections database operations.
type CollectionsDBHandlerFunctions interface {
	EnsureCollection(ctx context.Context, name string, metadata model.Metadata) (*model.Collection, error)
	SelectCollectionByName(ctx context.Context, name string) (*model.Collection, error)
	ResetCollection(ctx context.Context, id int64) (int, error)
	DeleteCollection(ctx context.Context, rid uuid.UUID) error
}

// CollectionsDBHandler handles collection-related database operations
type CollectionsDBHandler struct {
	db *helper.Database
}

// NewCollectionsDBHandler creates a new collections database handler.
// It loads the collection-related SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewCollectionsDBHandler(db *helper.Database, force bool) (*CollectionsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	collectionsDbHandler := &CollectionsDBHandler{
		db: db,
	}

	err := sql.LoadCollectionsSql(collectionsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load collections sql", err)
	}

	err = collectionsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized CollectionsDBHandler")

	return collectionsDbHandler, nil
}

// CreateTable creates the 'collections' table if it doesn't exist yet
func (h *CollectionsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_collections();`)
	if err != nil {
		return helper.NewError("init collections", err)
	}

	h.db.Logger.Info("Checked/created table collections")

	return nil
}

// EnsureCollection returns the collection with the given name and creates it if it doesn't exist
func (h *CollectionsDBHandler) EnsureCollection(ctx context.Context, name string, metadata model.Metadata) (*model.Collection, error) {
	if name == "" {
		return nil, helper.NewError("collection name validation", fmt.Errorf("collection name is empty"))
	}
	if metadata == nil {
		metadata = model.Metadata{}
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM ensure_collection($1, $2)`,
		name,
		metadata,
	)

	collection := &model.Collection{}
	err := row.Scan(
		&collection.ID,
		&collection.RID,
		&collection.Name,
		&collection.Metadata,
		&collection.CreatedAt,
		&collection.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return collection, nil
}

// SelectCollectionByName retrieves a collection by its name
func (h *CollectionsDBHandler) SelectCollectionByName(ctx context.Context, name string) (*model.Collection, error) {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_collection_by_name($1)`,
		name,
	)

	collection := &model.Collection{}
	err := row.Scan(
		&collection.ID,
		&collection.RID,
		&collection.Name,
		&collection.Metadata,
		&collection.CreatedAt,
		&collection.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return collection, nil
}

// ResetCollection deletes all chunks of the collection and returns how many were deleted
func (h *CollectionsDBHandler) ResetCollection(ctx context.Context, id int64) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT reset_collection($1)`,
		id,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("reset collection", err)
	}

	h.db.Logger.Info("Reset collection", "id", id, "deleted_chunks", deleted)

	return deleted, nil
}

// DeleteCollection deletes a collection together with all its chunks
func (h *CollectionsDBHandler) DeleteCollection(ctx context.Context, rid uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_collection($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
