package pipeline

import (
	"testing"

	"github.com/siherrmann/urlrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHugotEmbedderDefaultModel(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping HugotEmbedder test in short mode (requires model download)")
	}

	config := model.DefaultConfig()
	embedder, err := HugotEmbedder(config.EmbeddingModel, config.EmbeddingOnnxFile)
	require.NoError(t, err)
	require.NotNil(t, embedder)

	t.Run("Generate embedding for text", func(t *testing.T) {
		embedding, err := embedder("What is the 30 year fixed mortgage rate?")

		require.NoError(t, err)
		assert.Equal(t, config.EmbeddingDim, len(embedding), "gte-base-en-v1.5 produces 768-dimensional embeddings")

		hasNonZero := false
		for _, val := range embedding {
			if val != 0 {
				hasNonZero = true
				break
			}
		}
		assert.True(t, hasNonZero, "Embedding should contain non-zero values")
	})

	t.Run("Same text produces same embedding", func(t *testing.T) {
		text := "Deterministic embedding test"
		embedding1, err := embedder(text)
		require.NoError(t, err)
		embedding2, err := embedder(text)
		require.NoError(t, err)

		assert.Equal(t, embedding1, embedding2)
	})

	t.Run("Different texts produce different embeddings", func(t *testing.T) {
		embedding1, err := embedder("Mortgage rates fell this week.")
		require.NoError(t, err)
		embedding2, err := embedder("The recipe needs two eggs.")
		require.NoError(t, err)

		assert.NotEqual(t, embedding1, embedding2)
	})
}

func TestHugotEmbedder(t *testing.T) {
	t.Run("Unknown model fails", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping HugotEmbedder test in short mode (requires network)")
		}

		_, err := HugotEmbedder("urlrag/does-not-exist", "")
		assert.Error(t, err)
	})
}
