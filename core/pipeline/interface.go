package pipeline

import (
	"context"
	"fmt"

	"github.com/siherrmann/urlrag/model"
)

// ChunkFunc is a function that splits text into chunks
type ChunkFunc func(text string) ([]string, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// Pipeline combines chunking and embedding functions
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder EmbedFunc
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Split splits all documents into chunks.
// Every chunk gets the source and a copy of the metadata of its document.
// Chunk indexes count per document, in the order the chunker returned them.
func (p *Pipeline) Split(documents []*model.Document) ([]*model.Chunk, error) {
	if p.Chunker == nil {
		return nil, fmt.Errorf("pipeline has no chunker")
	}

	chunks := []*model.Chunk{}
	for _, doc := range documents {
		if doc.Source == "" {
			return nil, fmt.Errorf("document %q has no source", doc.Title)
		}

		texts, err := p.Chunker(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("error splitting %s: %w", doc.Source, err)
		}

		for i, text := range texts {
			metadata := doc.Metadata.Copy()
			metadata[model.MetadataSource] = doc.Source

			chunks = append(chunks, &model.Chunk{
				Content:    text,
				Source:     doc.Source,
				ChunkIndex: i,
				Metadata:   metadata,
			})
		}
	}

	return chunks, nil
}

// Embed generates the embedding of every chunk
func (p *Pipeline) Embed(ctx context.Context, chunks []*model.Chunk) error {
	if p.Embedder == nil {
		return fmt.Errorf("pipeline has no embedder")
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		embedding, err := p.Embedder(chunk.Content)
		if err != nil {
			return fmt.Errorf("error embedding chunk %d of %s: %w", chunk.ChunkIndex, chunks[i].Source, err)
		}
		chunk.Embedding = embedding
	}

	return nil
}

// EmbedQuery generates the embedding of a query
func (p *Pipeline) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if p.Embedder == nil {
		return nil, fmt.Errorf("pipeline has no embedder")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return p.Embedder(query)
}
