// Package ollama implements the Converser capability against a local
// Ollama server.
package ollama

import (
	"context"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/pkg/errors"

	"github.com/numwits/numwits/pkg/llm"
	"github.com/numwits/numwits/pkg/message"
)

// OllamaClient talks to the local Ollama daemon (OLLAMA_HOST or default)
type OllamaClient struct {
	client    *api.Client
	model     string
	maxTokens int
}

// NewOllamaClient creates a client from the environment (OLLAMA_HOST).
// maxTokens = 0 means default.
func NewOllamaClient(model string, maxTokens int) (*OllamaClient, error) {
	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Ollama client")
	}

	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &OllamaClient{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// ModelID returns the configured model name
func (c *OllamaClient) ModelID() string { return c.model }

// Converse implements llm.Converser
func (c *OllamaClient) Converse(ctx context.Context, systemContext, prompt string, creativity float64) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: toOllamaMessages(message.Exchange(systemContext, prompt)),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": creativity,
			"num_predict": c.maxTokens,
		},
	}

	var sb strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", llm.Transient(errors.Wrap(err, "ollama chat error"), "ollama")
	}

	return sb.String(), nil
}

// toOllamaMessages converts neutral messages to Ollama format
func toOllamaMessages(messages []message.ChatMessage) []api.Message {
	out := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, api.Message{
			Role:    msg.Type().String(),
			Content: msg.Content(),
		})
	}
	return out
}
