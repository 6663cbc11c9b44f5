package main

import (
	"errors"
	"strings"

	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
	"github.com/spf13/viper"
)

const envPrefix = "URLRAG"

// loadConfig reads the config file (urlrag.json in the working directory if path is empty)
// and overrides its values with URLRAG_* environment variables.
func loadConfig(path string) (model.Config, error) {
	v := viper.New()
	setDefaults(v, model.DefaultConfig())

	if path == "" {
		v.SetConfigName("urlrag")
		v.SetConfigType("json")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return model.Config{}, helper.NewError("read config file", err)
		}
	}

	var config model.Config
	err = v.Unmarshal(&config)
	if err != nil {
		return model.Config{}, helper.NewError("unmarshal config", err)
	}

	err = config.Validate()
	if err != nil {
		return model.Config{}, helper.NewError("validate config", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper, config model.Config) {
	v.SetDefault("chunk_size", config.ChunkSize)
	v.SetDefault("chunk_overlap", config.ChunkOverlap)
	v.SetDefault("separators", config.Separators)
	v.SetDefault("embedding_model", config.EmbeddingModel)
	v.SetDefault("embedding_onnx_file", config.EmbeddingOnnxFile)
	v.SetDefault("embedding_dim", config.EmbeddingDim)
	v.SetDefault("collection_name", config.CollectionName)
	v.SetDefault("top_k", config.TopK)
	v.SetDefault("llm_model", config.LLMModel)
	v.SetDefault("llm_base_url", config.LLMBaseURL)
	v.SetDefault("llm_api_key_env", config.LLMAPIKeyEnv)
	v.SetDefault("temperature", config.Temperature)
	v.SetDefault("max_tokens", config.MaxTokens)
	v.SetDefault("chain_type", config.ChainType)
	v.SetDefault("loader_timeout", config.LoaderTimeout)
}
