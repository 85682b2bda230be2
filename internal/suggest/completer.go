package suggest

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Completer sends a single user prompt to a text-completion model and returns
// the reply text. Failures to obtain a reply are ServiceUnavailableErrors.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// OpenAICompleter talks to any OpenAI-compatible chat-completion endpoint.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAICompleter creates a completer for the endpoint at baseURL.
// An empty baseURL uses the OpenAI default.
func NewOpenAICompleter(apiKey, baseURL, model string, temperature float32) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
	}
}

// Complete implements Completer.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
		TopP:        1,
		Stream:      false,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", NewServiceUnavailableError(fmt.Errorf("status %d: %s", apiErr.HTTPStatusCode, apiErr.Message))
		}
		return "", NewServiceUnavailableError(err)
	}
	if len(resp.Choices) == 0 {
		return "", NewServiceUnavailableError(errors.New("response has no choices"))
	}
	return resp.Choices[0].Message.Content, nil
}

// GeminiCompleter talks to the Gemini API.
type GeminiCompleter struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiCompleter creates a Gemini completer. An empty baseURL uses the
// default endpoint.
func NewGeminiCompleter(ctx context.Context, apiKey, baseURL, model string, temperature float32) (*GeminiCompleter, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, model: model, temperature: temperature}, nil
}

// Complete implements Completer.
func (c *GeminiCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.temperature),
		TopP:            genai.Ptr[float32](1),
		MaxOutputTokens: int32(maxTokens),
	})
	if err != nil {
		return "", NewServiceUnavailableError(err)
	}
	if len(resp.Candidates) == 0 {
		return "", NewServiceUnavailableError(errors.New("response has no candidates"))
	}
	return resp.Text(), nil
}

type timeoutCompleter struct {
	Completer
	timeout time.Duration
}

// WithTimeout bounds every Complete call of c by d. A non-positive d returns c.
func WithTimeout(c Completer, d time.Duration) Completer {
	if d <= 0 {
		return c
	}
	return timeoutCompleter{Completer: c, timeout: d}
}

func (c timeoutCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.Completer.Complete(ctx, prompt, maxTokens)
}
