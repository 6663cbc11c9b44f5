package chain

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Message roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message
type Message struct {
	Role    string
	Content string
}

// GenerateFunc sends the messages to a chat model and returns its reply
type GenerateFunc func(ctx context.Context, messages []Message) (string, error)

// LLMConfig configures an OpenAI compatible chat model
type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// OpenAILLM creates a GenerateFunc for any OpenAI compatible chat completion endpoint (Groq by default)
func OpenAILLM(config LLMConfig) (GenerateFunc, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	return func(ctx context.Context, messages []Message) (string, error) {
		chatMessages := make([]openai.ChatCompletionMessage, len(messages))
		for i, m := range messages {
			chatMessages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
		}

		resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       config.Model,
			Messages:    chatMessages,
			Temperature: config.Temperature,
			MaxTokens:   config.MaxTokens,
		})
		if err != nil {
			return "", fmt.Errorf("chat completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("chat completion returned no choices")
		}

		return resp.Choices[0].Message.Content, nil
	}, nil
}
