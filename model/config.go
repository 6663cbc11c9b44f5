package model

import (
	"fmt"
	"time"
)

// Chain types of the answering chain
const (
	ChainTypeStuff     = "stuff"
	ChainTypeMapReduce = "map_reduce"
)

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	TopK int `json:"top_k"`
	// Results below the threshold are dropped, -1 keeps everything
	SimilarityThreshold float64 `json:"similarity_threshold"`
}

// DefaultQueryConfig returns the configuration used to retrieve context for an answer
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:                4,
		SimilarityThreshold: -1,
	}
}

// Config holds all settings of a Rag
type Config struct {
	// Chunking
	ChunkSize    int      `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int      `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	Separators   []string `mapstructure:"separators" json:"separators"`

	// Embedding
	EmbeddingModel    string `mapstructure:"embedding_model" json:"embedding_model"`
	EmbeddingOnnxFile string `mapstructure:"embedding_onnx_file" json:"embedding_onnx_file"`
	EmbeddingDim      int    `mapstructure:"embedding_dim" json:"embedding_dim"`

	// Vector store
	CollectionName string `mapstructure:"collection_name" json:"collection_name"`
	TopK           int    `mapstructure:"top_k" json:"top_k"`

	// LLM
	LLMModel     string  `mapstructure:"llm_model" json:"llm_model"`
	LLMBaseURL   string  `mapstructure:"llm_base_url" json:"llm_base_url"`
	LLMAPIKeyEnv string  `mapstructure:"llm_api_key_env" json:"llm_api_key_env"`
	Temperature  float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens" json:"max_tokens"`
	ChainType    string  `mapstructure:"chain_type" json:"chain_type"`

	// Loader
	LoaderTimeout time.Duration `mapstructure:"loader_timeout" json:"loader_timeout"`
}

// DefaultConfig returns the configuration of the real estate research tool
func DefaultConfig() Config {
	return Config{
		ChunkSize:         1000,
		ChunkOverlap:      200,
		Separators:        []string{"\n\n", "\n", ".", " "},
		EmbeddingModel:    "Alibaba-NLP/gte-base-en-v1.5",
		EmbeddingOnnxFile: "onnx/model.onnx",
		EmbeddingDim:      768,
		CollectionName:    "real_estate",
		TopK:              4,
		LLMModel:          "llama-3.3-70b-versatile",
		LLMBaseURL:        "https://api.groq.com/openai/v1",
		LLMAPIKeyEnv:      "GROQ_API_KEY",
		Temperature:       0.9,
		MaxTokens:         500,
		ChainType:         ChainTypeMapReduce,
		LoaderTimeout:     30 * time.Second,
	}
}

// Validate checks the config for values the pipeline can't work with
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap must be in [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	}
	if len(c.Separators) == 0 {
		return fmt.Errorf("at least one separator is required")
	}
	if c.EmbeddingDim <= 0 {
		return fmt.Errorf("embedding dimension must be positive, got %d", c.EmbeddingDim)
	}
	if c.CollectionName == "" {
		return fmt.Errorf("collection name is required")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top k must be positive, got %d", c.TopK)
	}
	if c.ChainType != ChainTypeStuff && c.ChainType != ChainTypeMapReduce {
		return fmt.Errorf("unknown chain type %q", c.ChainType)
	}
	return nil
}
