// Package gemini implements the Converser capability over the Gemini API.
package gemini

import (
	"context"
	"fmt"
	"os"

	"google.golang.org/genai"

	"github.com/numwits/numwits/pkg/llm"
)

// GeminiClient holds the genai client plus request defaults
type GeminiClient struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGeminiClient creates a new Gemini client.
// maxTokens = 0 means default.
func NewGeminiClient(model string, maxTokens int) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &GeminiClient{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// ModelID returns the configured model name
func (c *GeminiClient) ModelID() string { return c.model }

// Converse implements llm.Converser
func (c *GeminiClient) Converse(ctx context.Context, systemContext, prompt string, creativity float64) (string, error) {
	temp := float32(creativity)
	config := &genai.GenerateContentConfig{
		MaxOutputTokens:   int32(c.maxTokens),
		Temperature:       &temp,
		SystemInstruction: genai.NewContentFromText(systemContext, genai.RoleUser),
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", llm.Transient(fmt.Errorf("Gemini API call failed: %w", err), "gemini")
	}

	text := resp.Text()
	if text == "" {
		return "", llm.Transient(fmt.Errorf("empty candidate in response"), "gemini")
	}
	return text, nil
}
