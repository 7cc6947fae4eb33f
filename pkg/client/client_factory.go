// Package client constructs inference backends from settings.
package client

import (
	"fmt"

	"github.com/numwits/numwits/internal/config"
	"github.com/numwits/numwits/pkg/client/anthropic"
	"github.com/numwits/numwits/pkg/client/gemini"
	"github.com/numwits/numwits/pkg/client/ollama"
	"github.com/numwits/numwits/pkg/client/openai"
	"github.com/numwits/numwits/pkg/llm"
)

// NewConverser creates an inference client based on settings.
func NewConverser(settings config.LLMSettings) (llm.Converser, error) {
	switch settings.Backend {
	case "deepseek", "":
		return openai.NewDeepSeekClient(settings.Model, settings.MaxTokens)
	case "openai":
		return openai.NewOpenAIClient(settings.Model, settings.MaxTokens)
	case "anthropic", "claude":
		return anthropic.NewAnthropicClient(settings.Model, settings.MaxTokens)
	case "gemini":
		return gemini.NewGeminiClient(settings.Model, settings.MaxTokens)
	case "ollama":
		return ollama.NewOllamaClient(settings.Model, settings.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown LLM backend: %s", settings.Backend)
	}
}
