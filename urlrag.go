package urlrag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/siherrmann/urlrag/core/chain"
	"github.com/siherrmann/urlrag/core/loader"
	"github.com/siherrmann/urlrag/core/pipeline"
	"github.com/siherrmann/urlrag/core/retrieval"
	"github.com/siherrmann/urlrag/database"
	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
	loadSql "github.com/siherrmann/urlrag/sql"
)

// ErrNotInitialized is returned by queries before the vector store was initialized
var ErrNotInitialized = errors.New("vector store is not initialized")

// ProgressFunc is called when ingestion reaches a new stage.
// It runs without the Rag being locked, so it may query the Rag and sees the state
// at the stage boundary (an empty collection after the reset). It must not start
// another ingestion.
type ProgressFunc func(stage model.IngestStage)

// Rag loads web pages into a vector store and answers questions about them with sources
type Rag struct {
	Config      model.Config
	DB          *helper.Database
	Collections *database.CollectionsDBHandler
	Chunks      *database.ChunksDBHandler
	Store       *retrieval.Store
	Pipeline    *pipeline.Pipeline
	Loader      loader.LoadFunc
	LLM         chain.GenerateFunc
	// Database
	dbConfig *helper.DatabaseConfiguration
	// State
	mu       sync.RWMutex
	ingestMu sync.Mutex
	ready    bool
	// Logging
	log *slog.Logger
}

// NewRag creates a new Rag. No connection is opened and no model is loaded before Initialize.
// A nil dbConfig is read from the environment on initialization.
func NewRag(config model.Config, dbConfig *helper.DatabaseConfiguration) (*Rag, error) {
	err := config.Validate()
	if err != nil {
		return nil, helper.NewError("validate config", err)
	}

	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	return &Rag{
		Config:   config,
		dbConfig: dbConfig,
		log:      logger,
	}, nil
}

// SetLoader sets the loader used to fetch the pages
func (r *Rag) SetLoader(load loader.LoadFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Loader = load
}

// SetPipeline sets the chunking and embedding pipeline.
// Before initialization a missing chunker or embedder is filled from the config,
// afterwards the pipeline needs both.
func (r *Rag) SetPipeline(p *pipeline.Pipeline) error {
	if p == nil {
		return helper.NewError("set pipeline", fmt.Errorf("pipeline is nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ready && (p.Chunker == nil || p.Embedder == nil) {
		return helper.NewError("set pipeline", fmt.Errorf("pipeline needs a chunker and an embedder after initialization"))
	}

	r.Pipeline = p
	if r.Store != nil {
		r.Store.SetPipeline(p)
	}
	return nil
}

// SetLLM sets the chat model answering the questions
func (r *Rag) SetLLM(llm chain.GenerateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LLM = llm
}

// Initialize creates every component that wasn't set before.
// It is safe to call it multiple times.
func (r *Rag) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialize(ctx)
}

// IsReady reports whether the Rag is initialized and can answer questions
func (r *Rag) IsReady() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

func (r *Rag) initialize(ctx context.Context) error {
	if r.ready {
		return nil
	}

	err := helper.LoadEnv()
	if err != nil {
		return helper.NewError("load env", err)
	}

	if r.LLM == nil {
		apiKey := os.Getenv(r.Config.LLMAPIKeyEnv)
		if apiKey == "" {
			return helper.NewError("create llm", fmt.Errorf("%s is not set", r.Config.LLMAPIKeyEnv))
		}
		r.LLM, err = chain.OpenAILLM(chain.LLMConfig{
			APIKey:      apiKey,
			BaseURL:     r.Config.LLMBaseURL,
			Model:       r.Config.LLMModel,
			Temperature: r.Config.Temperature,
			MaxTokens:   r.Config.MaxTokens,
		})
		if err != nil {
			return helper.NewError("create llm", err)
		}
	}

	// Fill a copy, the caller's pipeline stays as it was given
	p := pipeline.NewPipeline(nil, nil)
	if r.Pipeline != nil {
		filled := *r.Pipeline
		p = &filled
	}
	if p.Chunker == nil {
		p.Chunker = pipeline.RecursiveChunker(r.Config.ChunkSize, r.Config.ChunkOverlap, r.Config.Separators)
	}
	if p.Embedder == nil {
		p.Embedder, err = pipeline.HugotEmbedder(r.Config.EmbeddingModel, r.Config.EmbeddingOnnxFile)
		if err != nil {
			return helper.NewError("create embedder", err)
		}
		r.log.Info("Loaded embedding model", slog.String("model", r.Config.EmbeddingModel))
	}
	r.Pipeline = p
	if r.Store != nil {
		r.Store.SetPipeline(p)
	}

	if r.Store == nil {
		err = r.initializeStore(ctx)
		if err != nil {
			return err
		}
	}

	if r.Loader == nil {
		r.Loader = loader.BrowserLoader(r.Config.LoaderTimeout)
	}

	r.ready = true
	r.log.Info("Initialized components", slog.String("collection", r.Store.Collection().Name))

	return nil
}

func (r *Rag) initializeStore(ctx context.Context) error {
	dbConfig := r.dbConfig
	if dbConfig == nil {
		var err error
		dbConfig, err = helper.NewDatabaseConfiguration()
		if err != nil {
			return helper.NewError("database configuration", err)
		}
	}

	if r.DB == nil {
		db, err := helper.NewDatabase("urlrag", dbConfig, r.log)
		if err != nil {
			return helper.NewError("connect database", err)
		}
		r.DB = db
	}

	err := loadSql.Init(r.DB.Instance)
	if err != nil {
		return helper.NewError("initialize database extensions", err)
	}

	// Collections first, chunks reference them
	r.Collections, err = database.NewCollectionsDBHandler(r.DB, false)
	if err != nil {
		return helper.NewError("create collections handler", err)
	}

	r.Chunks, err = database.NewChunksDBHandler(r.DB, r.Config.EmbeddingDim, false)
	if err != nil {
		return helper.NewError("create chunks handler", err)
	}

	r.Store, err = retrieval.NewStore(ctx, r.Collections, r.Chunks, r.Pipeline, r.Config.CollectionName)
	if err != nil {
		return helper.NewError("create vector store", err)
	}

	return nil
}

// ProcessURLs replaces the content of the collection with the pages behind the urls.
// It returns the number of stored chunks. Ingestions run one at a time, queries wait
// while a stage is running.
func (r *Rag) ProcessURLs(ctx context.Context, urls []string, progress ProgressFunc) (int, error) {
	if len(urls) == 0 {
		return 0, helper.NewError("process urls", fmt.Errorf("no urls given"))
	}
	for i, u := range urls {
		if strings.TrimSpace(u) == "" {
			return 0, helper.NewError("process urls", fmt.Errorf("url %d is empty", i))
		}
	}

	r.ingestMu.Lock()
	defer r.ingestMu.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// report hands the stage to progress with the lock released
	report := func(stage model.IngestStage) error {
		r.log.Info(stage.String())
		if progress != nil {
			r.mu.Unlock()
			func() {
				defer r.mu.Lock()
				progress(stage)
			}()
		}
		if stage != model.StageInitialize && !r.ready {
			return helper.NewError(fmt.Sprintf("continue ingestion at %q", stage), ErrNotInitialized)
		}
		return nil
	}

	err := report(model.StageInitialize)
	if err != nil {
		return 0, err
	}
	err = r.initialize(ctx)
	if err != nil {
		return 0, helper.NewError("initialize", err)
	}

	err = report(model.StageReset)
	if err != nil {
		return 0, err
	}
	deleted, err := r.Store.Reset(ctx)
	if err != nil {
		return 0, helper.NewError("reset vector store", err)
	}
	r.log.Info("Reset collection", slog.String("collection", r.Store.Collection().Name), slog.Int("deleted_chunks", deleted))

	err = report(model.StageLoad)
	if err != nil {
		return 0, err
	}
	documents, err := r.Loader(ctx, urls)
	if err != nil {
		return 0, helper.NewError("load urls", err)
	}
	r.log.Info("Loaded documents", slog.Int("documents", len(documents)))

	err = report(model.StageSplit)
	if err != nil {
		return 0, err
	}
	chunks, err := r.Pipeline.Split(documents)
	if err != nil {
		return 0, helper.NewError("split documents", err)
	}
	r.log.Info("Split documents", slog.Int("chunks", len(chunks)))

	err = report(model.StageStore)
	if err != nil {
		return 0, err
	}
	rids, err := r.Store.AddChunks(ctx, chunks)
	if err != nil {
		return 0, helper.NewError("add chunks", err)
	}
	r.log.Info("Stored chunks", slog.Int("chunks", len(rids)))

	// The chunks are stored, closing the Rag in the last callback doesn't undo that
	_ = report(model.StageDone)

	return len(rids), nil
}

// GenerateAnswer answers the query from the stored chunks and returns the answer with its sources
func (r *Rag) GenerateAnswer(ctx context.Context, query string) (*model.AnswerResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.ready {
		return nil, ErrNotInitialized
	}

	qa, err := chain.NewQAWithSources(r.LLM, r.Store.AsRetriever(r.Config.TopK), r.Config.ChainType)
	if err != nil {
		return nil, helper.NewError("create chain", err)
	}

	result, err := qa.Run(ctx, query)
	if err != nil {
		return nil, helper.NewError("generate answer", err)
	}

	return result, nil
}

// SimilaritySearch returns the k stored chunks most similar to the query
func (r *Rag) SimilaritySearch(ctx context.Context, query string, k int) ([]*model.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.ready {
		return nil, ErrNotInitialized
	}

	chunks, err := r.Store.SimilaritySearch(ctx, query, k)
	if err != nil {
		return nil, helper.NewError("similarity search", err)
	}

	return chunks, nil
}

// Chunk returns a stored chunk of the collection by RID
func (r *Rag) Chunk(ctx context.Context, rid uuid.UUID) (*model.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.ready {
		return nil, ErrNotInitialized
	}

	return r.Store.Chunk(ctx, rid)
}

// DeleteChunk deletes a stored chunk of the collection by RID
func (r *Rag) DeleteChunk(ctx context.Context, rid uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrNotInitialized
	}

	err := r.Store.DeleteChunk(ctx, rid)
	if err != nil {
		return err
	}
	r.log.Info("Deleted chunk", slog.String("rid", rid.String()))

	return nil
}

// DeleteCollection deletes the named collection with all its chunks.
// Deleting the Rag's own collection resets it to uninitialized, the next Initialize creates it again.
func (r *Rag) DeleteCollection(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrNotInitialized
	}

	collection, err := r.Collections.SelectCollectionByName(ctx, name)
	if err != nil {
		return helper.NewError(fmt.Sprintf("select collection %s", name), err)
	}

	err = r.Collections.DeleteCollection(ctx, collection.RID)
	if err != nil {
		return helper.NewError(fmt.Sprintf("delete collection %s", name), err)
	}
	r.log.Info("Deleted collection", slog.String("collection", name))

	if collection.ID == r.Store.Collection().ID {
		r.Store = nil
		r.ready = false
	}

	return nil
}

// ChangeIndexType rebuilds the vector index of the chunks as HNSW or IVFFlat
func (r *Rag) ChangeIndexType(ctx context.Context, indexType string, params database.IndexParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.ready {
		return ErrNotInitialized
	}

	return r.Chunks.ChangeIndexType(ctx, indexType, params)
}

// Close closes the database connection.
// The Rag can be initialized again afterwards.
func (r *Rag) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ready = false
	r.Store = nil
	r.Collections = nil
	r.Chunks = nil

	db := r.DB
	r.DB = nil
	if db != nil {
		return db.Close()
	}
	return nil
}
