package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/siherrmann/urlrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockEmbedFunc(text string) ([]float32, error) {
	if text == "" {
		return nil, errors.New("empty text")
	}
	return []float32{float32(len(text)), 0.2, 0.3}, nil
}

func mockEmbedFuncError(text string) ([]float32, error) {
	return nil, errors.New("embedding error")
}

func TestNewPipeline(t *testing.T) {
	chunker := RecursiveChunker(10, 0, testSeparators)
	p := NewPipeline(chunker, mockEmbedFunc)

	require.NotNil(t, p)
	assert.NotNil(t, p.Chunker)
	assert.NotNil(t, p.Embedder)
}

func TestPipelineSplit(t *testing.T) {
	p := NewPipeline(RecursiveChunker(10, 0, testSeparators), mockEmbedFunc)

	docs := []*model.Document{
		model.NewDocument("https://example.com/a", "A", "aaaa bbbb cccc dddd", model.Metadata{model.MetadataLanguage: "en"}),
		model.NewDocument("https://example.com/b", "B", "eeee", nil),
	}

	t.Run("Chunks inherit source and metadata", func(t *testing.T) {
		chunks, err := p.Split(docs)

		require.NoError(t, err)
		require.Len(t, chunks, 3)

		assert.Equal(t, "aaaa bbbb", chunks[0].Content)
		assert.Equal(t, "https://example.com/a", chunks[0].Source)
		assert.Equal(t, 0, chunks[0].ChunkIndex)
		assert.Equal(t, "en", chunks[0].Metadata[model.MetadataLanguage])
		assert.Equal(t, "https://example.com/a", chunks[0].Metadata[model.MetadataSource])

		assert.Equal(t, "cccc dddd", chunks[1].Content)
		assert.Equal(t, 1, chunks[1].ChunkIndex)

		assert.Equal(t, "eeee", chunks[2].Content)
		assert.Equal(t, "https://example.com/b", chunks[2].Source)
		assert.Equal(t, 0, chunks[2].ChunkIndex)
	})

	t.Run("Chunks don't share metadata", func(t *testing.T) {
		chunks, err := p.Split(docs)
		require.NoError(t, err)

		chunks[0].Metadata["changed"] = true
		_, ok := chunks[1].Metadata["changed"]
		assert.False(t, ok)
		_, ok = docs[0].Metadata["changed"]
		assert.False(t, ok)
	})

	t.Run("Chunk count equals chunker output", func(t *testing.T) {
		chunks, err := p.Split(docs)
		require.NoError(t, err)

		expected := 0
		for _, doc := range docs {
			texts, err := p.Chunker(doc.Content)
			require.NoError(t, err)
			expected += len(texts)
		}
		assert.Len(t, chunks, expected)
	})

	t.Run("Document without source fails", func(t *testing.T) {
		_, err := p.Split([]*model.Document{{Title: "no source", Content: "text"}})
		assert.Error(t, err)
	})

	t.Run("Chunker error is returned", func(t *testing.T) {
		broken := NewPipeline(RecursiveChunker(0, 0, testSeparators), mockEmbedFunc)
		_, err := broken.Split(docs)
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "https://example.com/a"))
	})

	t.Run("Missing chunker fails", func(t *testing.T) {
		_, err := NewPipeline(nil, mockEmbedFunc).Split(docs)
		assert.Error(t, err)
	})

	t.Run("No documents give no chunks", func(t *testing.T) {
		chunks, err := p.Split(nil)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

func TestPipelineEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("Embeds every chunk", func(t *testing.T) {
		p := NewPipeline(nil, mockEmbedFunc)
		chunks := []*model.Chunk{{Content: "one"}, {Content: "three"}}

		err := p.Embed(ctx, chunks)

		require.NoError(t, err)
		assert.Equal(t, []float32{3, 0.2, 0.3}, chunks[0].Embedding)
		assert.Equal(t, []float32{5, 0.2, 0.3}, chunks[1].Embedding)
	})

	t.Run("Embedder error is returned", func(t *testing.T) {
		p := NewPipeline(nil, mockEmbedFuncError)

		err := p.Embed(ctx, []*model.Chunk{{Content: "one", Source: "https://example.com/a"}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "embedding error")
	})

	t.Run("Cancelled context stops embedding", func(t *testing.T) {
		calls := 0
		p := NewPipeline(nil, func(text string) ([]float32, error) {
			calls++
			return []float32{1}, nil
		})
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := p.Embed(cancelled, []*model.Chunk{{Content: "one"}})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, calls)
	})

	t.Run("Missing embedder fails", func(t *testing.T) {
		err := NewPipeline(nil, nil).Embed(ctx, []*model.Chunk{{Content: "one"}})
		assert.Error(t, err)
	})

	t.Run("Embed query", func(t *testing.T) {
		p := NewPipeline(nil, mockEmbedFunc)

		embedding, err := p.EmbedQuery(ctx, "query")

		require.NoError(t, err)
		assert.Equal(t, []float32{5, 0.2, 0.3}, embedding)
	})
}
