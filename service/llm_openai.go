package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAICompleter talks to any OpenAI-compatible chat completions endpoint.
// Groq is served through this client with its own base URL.
type OpenAICompleter struct {
	name   string
	model  string
	client *openai.Client
}

func NewOpenAICompleter(name, apiKey, baseURL, model string, timeout time.Duration) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAICompleter{
		name:   name,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (c *OpenAICompleter) Name() string {
	return c.name
}

func (c *OpenAICompleter) Model() string {
	return c.model
}

func (c *OpenAICompleter) CompleteChat(ctx context.Context, req ChatRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: req.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.User,
			},
		},
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
