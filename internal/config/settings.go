// Package config holds application settings: inference backend selection,
// game bounds, and memory/persistence locations. Settings load from a JSON
// file with sane defaults; API keys always come from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Settings represents the main application settings
type Settings struct {
	LLM    LLMSettings    `json:"llm"`
	Game   GameSettings   `json:"game"`
	Memory MemorySettings `json:"memory"`
}

// LLMSettings contains inference client configuration
type LLMSettings struct {
	Backend   string `json:"backend"`              // "deepseek", "openai", "anthropic", "gemini", or "ollama"
	Model     string `json:"model"`                // model name
	MaxTokens int    `json:"max_tokens,omitempty"` // maximum tokens for model responses (0 = use default)
}

// GameSettings contains the round bounds and feature toggles
type GameSettings struct {
	MinValue       int     `json:"min_value"`
	MaxValue       int     `json:"max_value"`
	MaxTurns       int     `json:"max_turns"`
	EnableHints    bool    `json:"enable_hints"`
	EnableDialogue bool    `json:"enable_dialogue"`
	Creativity     float64 `json:"creativity"`         // temperature-like sampling control
	MaxWords       int     `json:"max_dialogue_words"` // cap for hint/dialogue output
}

// MemorySettings contains cross-game persistence configuration
type MemorySettings struct {
	Enabled         bool   `json:"enabled"`
	MaxHistoryGames int    `json:"max_history_games"` // FIFO cap on stored lessons per role
	SaveTranscripts bool   `json:"save_transcripts"`
	MemoryDir       string `json:"memory_dir,omitempty"`  // default ~/.numwits/memory
	HistoryDir      string `json:"history_dir,omitempty"` // default ~/.numwits/history
}

// GetDefaultSettings returns settings matching the classic 1-100, 10-guess game
func GetDefaultSettings() Settings {
	return Settings{
		LLM: GetDefaultLLMSettingsForBackend("deepseek"),
		Game: GameSettings{
			MinValue:       1,
			MaxValue:       100,
			MaxTurns:       10,
			EnableHints:    true,
			EnableDialogue: true,
			Creativity:     0.8,
			MaxWords:       150,
		},
		Memory: MemorySettings{
			Enabled:         true,
			MaxHistoryGames: 5,
			SaveTranscripts: true,
		},
	}
}

// GetDefaultLLMSettingsForBackend returns per-backend model defaults
func GetDefaultLLMSettingsForBackend(backend string) LLMSettings {
	switch backend {
	case "openai":
		return LLMSettings{Backend: "openai", Model: "gpt-4o-mini"}
	case "anthropic", "claude":
		return LLMSettings{Backend: "anthropic", Model: "claude-sonnet-4-0"}
	case "gemini":
		return LLMSettings{Backend: "gemini", Model: "gemini-2.0-flash"}
	case "ollama":
		return LLMSettings{Backend: "ollama", Model: "qwen3"}
	default:
		return LLMSettings{Backend: "deepseek", Model: "deepseek-chat"}
	}
}

// LoadSettings reads settings from path, or from ~/.numwits/settings.json
// when path is empty. A missing file yields defaults, not an error.
func LoadSettings(path string) (Settings, error) {
	settings := GetDefaultSettings()

	if path == "" {
		userConfig, err := DefaultUserConfig()
		if err != nil {
			return settings, err
		}
		path = userConfig.SettingsFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}
	return settings, nil
}

// ValidateSettings checks the constraints that are fatal at startup.
func ValidateSettings(s Settings) error {
	switch s.LLM.Backend {
	case "deepseek", "openai", "anthropic", "claude", "gemini", "ollama":
	default:
		return fmt.Errorf("unknown LLM backend: %q", s.LLM.Backend)
	}
	if s.LLM.Model == "" {
		return fmt.Errorf("model name must not be empty")
	}
	if s.Game.MinValue >= s.Game.MaxValue {
		return fmt.Errorf("min_value (%d) must be less than max_value (%d)", s.Game.MinValue, s.Game.MaxValue)
	}
	if s.Game.MaxTurns <= 0 {
		return fmt.Errorf("max_turns must be positive, got %d", s.Game.MaxTurns)
	}
	if s.Game.Creativity < 0 || s.Game.Creativity > 2 {
		return fmt.Errorf("creativity must be within [0, 2], got %g", s.Game.Creativity)
	}
	if s.Game.MaxWords <= 0 {
		return fmt.Errorf("max_dialogue_words must be positive, got %d", s.Game.MaxWords)
	}
	if s.Memory.Enabled && s.Memory.MaxHistoryGames <= 0 {
		return fmt.Errorf("max_history_games must be positive when memory is enabled, got %d", s.Memory.MaxHistoryGames)
	}
	return nil
}

// APIKeyEnvVar returns the environment variable holding the backend's key,
// or "" for backends that need none.
func APIKeyEnvVar(backend string) string {
	switch backend {
	case "deepseek":
		return "DEEPSEEK_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	case "gemini":
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// ResolveDataDirs fills in default memory/history directories under the
// user data dir and creates them.
func ResolveDataDirs(s *Settings) error {
	userConfig, err := DefaultUserConfig()
	if err != nil {
		return err
	}
	if s.Memory.MemoryDir == "" {
		s.Memory.MemoryDir = userConfig.MemoryDir
	}
	if s.Memory.HistoryDir == "" {
		s.Memory.HistoryDir = userConfig.HistoryDir
	}
	for _, dir := range []string{s.Memory.MemoryDir, s.Memory.HistoryDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// UserConfig manages per-user configuration and data directories
type UserConfig struct {
	BaseDir      string // $HOME/.numwits
	MemoryDir    string // $HOME/.numwits/memory
	HistoryDir   string // $HOME/.numwits/history
	SettingsFile string // $HOME/.numwits/settings.json
}

// DefaultUserConfig creates the default user configuration
func DefaultUserConfig() (*UserConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	baseDir := filepath.Join(homeDir, ".numwits")
	return &UserConfig{
		BaseDir:      baseDir,
		MemoryDir:    filepath.Join(baseDir, "memory"),
		HistoryDir:   filepath.Join(baseDir, "history"),
		SettingsFile: filepath.Join(baseDir, "settings.json"),
	}, nil
}
