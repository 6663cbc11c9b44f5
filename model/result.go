package model

import "strings"

// RetrievalResult represents a chunk retrieved by a query
type RetrievalResult struct {
	Chunk           *Chunk          `json:"chunk"`
	Score           float64         `json:"score"`
	RetrievalMethod RetrievalMethod `json:"retrieval_method"`
}

// AnswerResult is the answer to a question together with the cited sources
type AnswerResult struct {
	Answer  string `json:"answer"`
	Sources string `json:"sources"`
}

// SourceList splits the sources string into single sources.
// Sources are separated by commas or whitespace.
func (a *AnswerResult) SourceList() []string {
	fields := strings.FieldsFunc(a.Sources, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})

	sources := []string{}
	for _, f := range fields {
		if f != "" {
			sources = append(sources, f)
		}
	}
	return sources
}
