package pipeline

import (
	"fmt"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/siherrmann/urlrag/helper"
)

// HugotEmbedder creates an embedder running a sentence embedding model with hugot's pure Go backend.
// The model is downloaded into ./models on first use.
func HugotEmbedder(modelName string, onnxFilePath string) (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel(modelName, onnxFilePath)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "embedder-pipeline",
	}
	sentencePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create sentence pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create sentence pipeline: %w", err)
	}

	return newEmbedFunc(sentencePipeline), nil
}

func newEmbedFunc(sentencePipeline *pipelines.FeatureExtractionPipeline) EmbedFunc {
	var mu sync.Mutex
	return func(text string) ([]float32, error) {
		mu.Lock()
		result, err := sentencePipeline.RunPipeline([]string{text})
		mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}

		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated")
		}

		return result.Embeddings[0], nil
	}
}
