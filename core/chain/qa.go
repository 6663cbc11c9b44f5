package chain

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/siherrmann/urlrag/helper"
	"github.com/siherrmann/urlrag/model"
)

var (
	sourcesMarker = regexp.MustCompile(`(?i)SOURCES?:`)
	answerEnd     = regexp.MustCompile(`(?i)SOURCES?:|QUESTION:\s`)
)

// Retriever returns the chunks relevant to a query
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]*model.RetrievalResult, error)
}

// QAWithSources answers questions from retrieved chunks and cites their sources
type QAWithSources struct {
	llm       GenerateFunc
	retriever Retriever
	chainType string
}

// NewQAWithSources creates a question answering chain.
// chainType is model.ChainTypeMapReduce or model.ChainTypeStuff.
func NewQAWithSources(llm GenerateFunc, retriever Retriever, chainType string) (*QAWithSources, error) {
	if llm == nil {
		return nil, fmt.Errorf("llm is required")
	}
	if retriever == nil {
		return nil, fmt.Errorf("retriever is required")
	}
	if chainType == "" {
		chainType = model.ChainTypeMapReduce
	}
	if chainType != model.ChainTypeMapReduce && chainType != model.ChainTypeStuff {
		return nil, fmt.Errorf("unknown chain type %q", chainType)
	}

	return &QAWithSources{
		llm:       llm,
		retriever: retriever,
		chainType: chainType,
	}, nil
}

// Run answers the question
func (q *QAWithSources) Run(ctx context.Context, question string) (*model.AnswerResult, error) {
	results, err := q.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, helper.NewError("retrieve documents", err)
	}

	summaries := summariesFromResults(results)
	if q.chainType == model.ChainTypeMapReduce {
		summaries, err = q.extractRelevant(ctx, question, summaries)
		if err != nil {
			return nil, err
		}
	}

	output, err := q.llm(ctx, []Message{{Role: RoleUser, Content: buildAnswerPrompt(question, summaries)}})
	if err != nil {
		return nil, helper.NewError("generate answer", err)
	}

	answer, sources := ParseAnswer(output)
	return &model.AnswerResult{
		Answer:  answer,
		Sources: sources,
	}, nil
}

// extractRelevant asks the llm for the relevant text of every summary, keeping the sources
func (q *QAWithSources) extractRelevant(ctx context.Context, question string, summaries []summary) ([]summary, error) {
	extracted := make([]summary, len(summaries))
	for i, s := range summaries {
		output, err := q.llm(ctx, []Message{{Role: RoleUser, Content: buildExtractPrompt(s.content, question)}})
		if err != nil {
			return nil, helper.NewError(fmt.Sprintf("extract relevant text from %s", s.source), err)
		}
		extracted[i] = summary{content: strings.TrimSpace(output), source: s.source}
	}
	return extracted, nil
}

// ParseAnswer splits the model output into the answer and the sources line.
// Without a SOURCES marker the whole output is the answer.
func ParseAnswer(output string) (string, string) {
	if !sourcesMarker.MatchString(output) {
		return strings.TrimSpace(output), ""
	}

	parts := answerEnd.Split(output, 3)
	answer := strings.TrimSpace(parts[0])
	sources := ""
	if len(parts) > 1 {
		sources = strings.TrimSpace(strings.SplitN(parts[1], "\n", 2)[0])
	}

	return answer, sources
}
