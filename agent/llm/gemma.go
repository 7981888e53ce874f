// Package llm generates completions from a Gemma model behind the
// Gemini API, formatting the conversation as raw turn-marked text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	contractx "github.com/example/tablebook/agent/contract"
)

// Config carries the generation settings, loaded from the environment.
type Config struct {
	APIKey          string        `envconfig:"API_KEY" required:"true"`
	Model           string        `envconfig:"MODEL" default:"gemma-3-27b-it"`
	Temperature     float32       `envconfig:"TEMPERATURE" default:"0.7"`
	TopP            float32       `envconfig:"TOP_P" default:"0.8"`
	TopK            float32       `envconfig:"TOP_K" default:"40"`
	MaxOutputTokens int32         `envconfig:"MAX_OUTPUT_TOKENS" default:"768"`
	Timeout         time.Duration `envconfig:"TIMEOUT" default:"60s"`
}

// Client talks to the model. It renders the whole history into a single
// prompt on every call; the conversation state lives with the caller.
type Client struct {
	client       *genai.Client
	cfg          Config
	instructions string
}

var _ contractx.Generator = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, instructions string) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: client, cfg: cfg, instructions: instructions}, nil
}

func (c *Client) Generate(ctx context.Context, turns []contractx.Turn) (string, error) {
	prompt := FormatHistory(turns, c.instructions)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, genai.Text(prompt), c.generateConfig())
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("model returned an empty completion")
	}
	return text, nil
}

func (c *Client) generateConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.cfg.Temperature),
		TopP:            genai.Ptr(c.cfg.TopP),
		TopK:            genai.Ptr(c.cfg.TopK),
		MaxOutputTokens: c.cfg.MaxOutputTokens,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockOnlyHigh},
		},
	}
}
