// Package openai implements the Converser capability over the OpenAI Chat
// Completions API. The same client serves any OpenAI-compatible endpoint;
// DeepSeek is wired as a preset because it only differs in base URL and key.
package openai

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"

	"github.com/numwits/numwits/pkg/llm"
	"github.com/numwits/numwits/pkg/message"
)

const deepseekBaseURL = "https://api.deepseek.com"

// OpenAIClient holds the SDK client plus request defaults
type OpenAIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIClient creates a client against api.openai.com (or
// OPENAI_BASE_URL when set, e.g. Azure).
// maxTokens = 0 means default.
func NewOpenAIClient(model string, maxTokens int) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return newClient(apiKey, os.Getenv("OPENAI_BASE_URL"), model, maxTokens)
}

// NewDeepSeekClient creates a client against the DeepSeek endpoint, which
// speaks the Chat Completions protocol.
func NewDeepSeekClient(model string, maxTokens int) (*OpenAIClient, error) {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("DEEPSEEK_API_KEY environment variable not set")
	}
	baseURL := os.Getenv("DEEPSEEK_BASE_URL")
	if baseURL == "" {
		baseURL = deepseekBaseURL
	}
	return newClient(apiKey, baseURL, model, maxTokens)
}

func newClient(apiKey, baseURL, model string, maxTokens int) (*OpenAIClient, error) {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return &OpenAIClient{
		client:    &client,
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// ModelID returns the configured model name
func (c *OpenAIClient) ModelID() string { return c.model }

// Converse implements llm.Converser
func (c *OpenAIClient) Converse(ctx context.Context, systemContext, prompt string, creativity float64) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    toOpenAIMessages(message.Exchange(systemContext, prompt)),
		MaxTokens:   openai.Int(int64(c.maxTokens)),
		Temperature: openai.Float(creativity),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", llm.Transient(err, "openai")
	}
	if len(resp.Choices) == 0 {
		return "", llm.Transient(fmt.Errorf("empty choices in completion response"), "openai")
	}

	return resp.Choices[0].Message.Content, nil
}

// toOpenAIMessages converts neutral messages to Chat Completions format
func toOpenAIMessages(messages []message.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Type() {
		case message.MessageTypeSystem:
			out = append(out, openai.SystemMessage(msg.Content()))
		case message.MessageTypeAssistant:
			out = append(out, openai.AssistantMessage(msg.Content()))
		default:
			out = append(out, openai.UserMessage(msg.Content()))
		}
	}
	return out
}
