// Package anthropic implements the Converser capability over the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/numwits/numwits/pkg/llm"
	"github.com/numwits/numwits/pkg/message"
)

// NOTE: Anthropic requires a minimum max_tokens value.
const defaultMaxTokens = 1024

// AnthropicClient handles communication with Claude models
type AnthropicClient struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicClient creates a new Anthropic client.
// maxTokens = 0 means default.
func NewAnthropicClient(model string, maxTokens int) (*AnthropicClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &AnthropicClient{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// ModelID returns the configured model name
func (c *AnthropicClient) ModelID() string { return c.model }

// Converse implements llm.Converser
func (c *AnthropicClient) Converse(ctx context.Context, systemContext, prompt string, creativity float64) (string, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(c.maxTokens),
		System:      []anthropic.TextBlockParam{{Text: systemContext}},
		Messages:    toAnthropicMessages(message.Exchange(systemContext, prompt)),
		Temperature: anthropic.Float(creativity),
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", llm.Transient(err, "anthropic")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", llm.Transient(fmt.Errorf("no text blocks in response"), "anthropic")
	}
	return sb.String(), nil
}

// toAnthropicMessages converts neutral messages to Anthropic format.
// System messages are carried in MessageNewParams.System, not here.
func toAnthropicMessages(messages []message.ChatMessage) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Type() {
		case message.MessageTypeUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content())))
		case message.MessageTypeAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content())))
		}
	}
	return out
}
