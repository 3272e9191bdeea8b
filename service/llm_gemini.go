package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrAIDisabled)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiCompleter{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiCompleter) Name() string {
	return "gemini"
}

func (c *GeminiCompleter) Model() string {
	return c.model
}

func (c *GeminiCompleter) CompleteChat(ctx context.Context, req ChatRequest) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx,
		c.model,
		genai.Text(req.User),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
			Temperature:       genai.Ptr(req.Temperature),
			TopP:              genai.Ptr(req.TopP),
			MaxOutputTokens:   int32(req.MaxTokens),
		},
	)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
