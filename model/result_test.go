package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnswerResultSourceList(t *testing.T) {
	tests := []struct {
		name     string
		sources  string
		expected []string
	}{
		{"Empty sources", "", []string{}},
		{"Single source", "https://a.com", []string{"https://a.com"}},
		{"Comma separated", "https://a.com, https://b.com", []string{"https://a.com", "https://b.com"}},
		{"Comma without space", "https://a.com,https://b.com", []string{"https://a.com", "https://b.com"}},
		{"Whitespace separated", "https://a.com\nhttps://b.com", []string{"https://a.com", "https://b.com"}},
		{"Trailing comma", "https://a.com, ", []string{"https://a.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &AnswerResult{Answer: "answer", Sources: tt.sources}
			assert.Equal(t, tt.expected, result.SourceList())
		})
	}
}

func TestIngestStageString(t *testing.T) {
	tests := []struct {
		stage    IngestStage
		expected string
	}{
		{StageInitialize, "Initializing components"},
		{StageReset, "Resetting vector store"},
		{StageLoad, "Loading data"},
		{StageSplit, "Splitting text into chunks"},
		{StageStore, "Adding chunks to vector database"},
		{StageDone, "Docs added to vector database"},
		{IngestStage(42), "Unknown stage"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.stage.String())
		})
	}
}
