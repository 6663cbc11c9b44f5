package database

import (
	"context"
	"log"
	"testing"

	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/sql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

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
	database := helper.NewTestDatabase(dbConfig)

	err = sql.Init(database.Instance)
	require.NoError(t, err)

	t.Cleanup(func() {
		database.Close()
	})

	return database
}

// testEmbedding returns a unit vector of the given dimension pointing to the given axis
func testEmbedding(dim int, axis int) []float32 {
	embedding := make([]float32, dim)
	embedding[axis%dim] = 1
	return embedding
}
