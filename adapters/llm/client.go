// Package llm adapts the OpenAI API to the chat and embedding interfaces
// used by the chatbot.
package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"heartdash/internal/config"

	"github.com/sashabaranov/go-openai"
)

// embedBatch bounds the inputs sent in one embeddings request
const embedBatch = 256

// Config holds the OpenAI connection settings
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
	Temperature    float32
	MaxTokens      int
}

// ConfigFrom maps the application AI config onto a client config
func ConfigFrom(ai config.AIConfig) Config {
	return Config{
		APIKey:         ai.OpenAIKey,
		Model:          ai.Model,
		EmbeddingModel: ai.EmbeddingModel,
		Timeout:        60 * time.Second,
		MaxTokens:      ai.MaxTokens,
	}
}

// OpenAIClient completes prompts and embeds text through OpenAI
type OpenAIClient struct {
	client *openai.Client
	config Config
}

// NewOpenAIClient creates a client. An empty API key is an error.
func NewOpenAIClient(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OpenAI API key")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = string(openai.AdaEmbeddingV2)
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1024
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		oc.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if cfg.Timeout > 0 {
		oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(oc), config: cfg}, nil
}

// Complete sends one system and one user message and returns the reply
func (c *OpenAIClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	temperature := c.config.Temperature
	if temperature == 0 {
		// a zero temperature is dropped from the request body by omitempty
		temperature = math.SmallestNonzeroFloat32
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns one vector per input text, in input order
func (c *OpenAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += embedBatch {
		end := min(start+embedBatch, len(texts))
		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts[start:end],
			Model: openai.EmbeddingModel(c.config.EmbeddingModel),
		})
		if err != nil {
			return nil, fmt.Errorf("openai embeddings failed: %w", err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), end-start)
		}
		batch := make([][]float32, end-start)
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(batch) {
				return nil, fmt.Errorf("openai embedding index %d out of range", d.Index)
			}
			batch[d.Index] = d.Embedding
		}
		out = append(out, batch...)
	}
	return out, nil
}

// MockLLMClient is a canned client for tests
type MockLLMClient struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors

	// Vector maps a text to its embedding; nil embeds by letter counts
	Vector func(text string) []float32

	Prompts    []string
	EmbedCalls int
}

func (m *MockLLMClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Error != nil {
		return "", m.Error
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return "I don't know.", nil
}

func (m *MockLLMClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.EmbedCalls++
	if m.Error != nil {
		return nil, m.Error
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if m.Vector != nil {
			out[i] = m.Vector(t)
			continue
		}
		out[i] = letterCounts(t)
	}
	return out, nil
}

func letterCounts(text string) []float32 {
	v := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			v[r-'a']++
		}
	}
	return v
}
