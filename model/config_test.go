package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultQueryConfig(t *testing.T) {
	t.Run("Returns correct default values", func(t *testing.T) {
		config := DefaultQueryConfig()

		assert.Equal(t, 4, config.TopK, "Default TopK should be 4")
		assert.Equal(t, -1.0, config.SimilarityThreshold, "Default threshold should keep every result")
	})

	t.Run("Can be modified after creation", func(t *testing.T) {
		config := DefaultQueryConfig()

		config.TopK = 2
		config.SimilarityThreshold = 0.8

		assert.Equal(t, 2, config.TopK)
		assert.Equal(t, 0.8, config.SimilarityThreshold)
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Run("Returns correct default values", func(t *testing.T) {
		config := DefaultConfig()

		assert.Equal(t, 1000, config.ChunkSize)
		assert.Equal(t, 200, config.ChunkOverlap)
		assert.Equal(t, []string{"\n\n", "\n", ".", " "}, config.Separators)
		assert.Equal(t, "Alibaba-NLP/gte-base-en-v1.5", config.EmbeddingModel)
		assert.Equal(t, 768, config.EmbeddingDim)
		assert.Equal(t, "real_estate", config.CollectionName)
		assert.Equal(t, 4, config.TopK)
		assert.Equal(t, "llama-3.3-70b-versatile", config.LLMModel)
		assert.Equal(t, "https://api.groq.com/openai/v1", config.LLMBaseURL)
		assert.Equal(t, "GROQ_API_KEY", config.LLMAPIKeyEnv)
		assert.InDelta(t, 0.9, config.Temperature, 0.0001)
		assert.Equal(t, 500, config.MaxTokens)
		assert.Equal(t, ChainTypeMapReduce, config.ChainType)
		assert.Equal(t, 30*time.Second, config.LoaderTimeout)
	})

	t.Run("Default config is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"Zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"Negative overlap", func(c *Config) { c.ChunkOverlap = -1 }},
		{"Overlap equal to chunk size", func(c *Config) { c.ChunkOverlap = c.ChunkSize }},
		{"No separators", func(c *Config) { c.Separators = nil }},
		{"Zero embedding dimension", func(c *Config) { c.EmbeddingDim = 0 }},
		{"Empty collection name", func(c *Config) { c.CollectionName = "" }},
		{"Zero top k", func(c *Config) { c.TopK = 0 }},
		{"Unknown chain type", func(c *Config) { c.ChainType = "refine" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			assert.Error(t, config.Validate())
		})
	}

	t.Run("Stuff chain type is valid", func(t *testing.T) {
		config := DefaultConfig()
		config.ChainType = ChainTypeStuff
		assert.NoError(t, config.Validate())
	})
}
