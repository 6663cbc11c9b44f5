package retrieval

import (
	"context"
	"log"
	"strings"
	"testing"

	"github.com/siherrmann/urlrag/core/pipeline"
	"github.com/siherrmann/urlrag/database"
	"github.com/siherrmann/urlrag/helper"
	loadSql "github.com/siherrmann/urlrag/sql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

const testDim = 3

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	db := helper.NewTestDatabase(dbConfig)

	err = loadSql.Init(db.Instance)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func initHandlers(t *testing.T) (*database.CollectionsDBHandler, *database.ChunksDBHandler) {
	db := initDB(t)

	collections, err := database.NewCollectionsDBHandler(db, false)
	require.NoError(t, err)

	chunks, err := database.NewChunksDBHandler(db, testDim, false)
	require.NoError(t, err)

	return collections, chunks
}

// keywordEmbedder maps text onto three topic axes: mortgages, rates and everything else
func keywordEmbedder(text string) ([]float32, error) {
	lower := strings.ToLower(text)
	return []float32{
		float32(strings.Count(lower, "mortgage")),
		float32(strings.Count(lower, "rate")),
		0.1,
	}, nil
}

func testPipeline() *pipeline.Pipeline {
	return pipeline.NewPipeline(pipeline.RecursiveChunker(1000, 200, []string{"\n\n", "\n", ".", " "}), keywordEmbedder)
}
