package chain

import (
	"fmt"
	"strings"

	"github.com/siherrmann/urlrag/model"
)

const extractPrompt = `Use the following portion of a long document to see if any of the text is relevant to answer the question.
Return any relevant text verbatim.
%s
Question: %s
Relevant text, if any:`

const answerPrompt = `Given the following extracted parts of a long document and a question, create a final answer with references ("SOURCES").
If you don't know the answer, just say that you don't know. Don't try to make up an answer.
ALWAYS return a "SOURCES" part in your answer.

QUESTION: What did the central bank decide about interest rates?
=========
Content: The central bank left its benchmark rate unchanged at 5.25%% on Wednesday.
Source: https://news.example.com/central-bank
Content: Bakeries reported a strong holiday season.
Source: https://news.example.com/bakeries
=========
FINAL ANSWER: The central bank kept its benchmark rate unchanged at 5.25%%.
SOURCES: https://news.example.com/central-bank

QUESTION: %s
=========
%s
=========
FINAL ANSWER:`

// summary is a piece of text with the source it came from
type summary struct {
	content string
	source  string
}

func buildExtractPrompt(content string, question string) string {
	return fmt.Sprintf(extractPrompt, content, question)
}

func buildAnswerPrompt(question string, summaries []summary) string {
	var b strings.Builder
	for i, s := range summaries {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Content: %s\nSource: %s", s.content, s.source)
	}
	return fmt.Sprintf(answerPrompt, question, b.String())
}

func summariesFromResults(results []*model.RetrievalResult) []summary {
	summaries := make([]summary, 0, len(results))
	for _, r := range results {
		summaries = append(summaries, summary{content: r.Chunk.Content, source: r.Chunk.Source})
	}
	return summaries
}
