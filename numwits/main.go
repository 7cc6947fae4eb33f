package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/numwits/numwits/internal/config"
	"github.com/numwits/numwits/internal/game"
	"github.com/numwits/numwits/internal/history"
	"github.com/numwits/numwits/internal/memory"
	"github.com/numwits/numwits/internal/ui"
	"github.com/numwits/numwits/pkg/client"
	"github.com/numwits/numwits/pkg/llm"
	pkgLogger "github.com/numwits/numwits/pkg/logger"
)

// resolveStringFlag returns the non-empty value, preferring short flag over long flag
func resolveStringFlag(shortVal, longVal string) string {
	if shortVal != "" {
		return shortVal
	}
	return longVal
}

// resolveIntFlag prefers the short flag when it was moved off its default
func resolveIntFlag(shortVal, longVal, defaultVal int) int {
	if shortVal != defaultVal {
		return shortVal
	}
	return longVal
}

func printUsage() {
	fmt.Println("numwits - two AI agents battle over a secret number")
	fmt.Println()
	fmt.Println("One agent commits to a hidden number; the other hunts it down with")
	fmt.Println("directional feedback, strategic hints, and a memory of past games.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  numwits                          # Interactive mode")
	fmt.Println("  numwits -a                       # Run one game unattended")
	fmt.Println("  numwits -a -n 5                  # Batch of five games")
	fmt.Println("  numwits -t                       # Quick test game (small range)")
	fmt.Println("  numwits -b anthropic -a          # Use the Anthropic backend")
	fmt.Println("  numwits --validate               # Check settings and API key, then exit")
	fmt.Println()
}

func main() {
	ctx := context.Background()

	var backend = flag.String("b", "", "LLM backend (deepseek, openai, anthropic, gemini, or ollama)")
	var backendLong = flag.String("backend", "", "LLM backend (deepseek, openai, anthropic, gemini, or ollama)")
	var model = flag.String("m", "", "Model name to use")
	var modelLong = flag.String("model", "", "Model name to use")
	var settingsPath = flag.String("settings", "", "Path to settings file")
	var auto = flag.Bool("a", false, "Run unattended instead of prompting")
	var autoLong = flag.Bool("auto", false, "Run unattended instead of prompting")
	var quickTest = flag.Bool("t", false, "Quick test game: range 1-16, 5 turns, no memory")
	var quickTestLong = flag.Bool("test", false, "Quick test game: range 1-16, 5 turns, no memory")
	var validate = flag.Bool("validate", false, "Validate settings and exit")
	var games = flag.Int("n", 1, "Number of games to play in auto mode")
	var gamesLong = flag.Int("games", 1, "Number of games to play in auto mode")
	var verbose = flag.Bool("v", false, "Enable verbose logging (debug level)")
	var verboseLong = flag.Bool("verbose", false, "Enable verbose logging (debug level)")
	var help = flag.Bool("h", false, "Show this help message")
	var helpLong = flag.Bool("help", false, "Show this help message")

	flag.Usage = func() {
		printUsage()
		fmt.Println("Flags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *help || *helpLong {
		flag.Usage()
		return
	}

	resolvedBackend := resolveStringFlag(*backend, *backendLong)
	resolvedModel := resolveStringFlag(*model, *modelLong)
	resolvedAuto := *auto || *autoLong
	resolvedTest := *quickTest || *quickTestLong
	resolvedGames := resolveIntFlag(*games, *gamesLong, 1)

	settings, err := config.LoadSettings(*settingsPath)
	if err != nil {
		fmt.Printf("Warning: failed to load settings: %v\n", err)
		settings = config.GetDefaultSettings()
	}

	logLevel := pkgLogger.LogLevelInfo
	if *verbose || *verboseLong {
		logLevel = pkgLogger.LogLevelDebug
	}
	pkgLogger.SetGlobalLoggerWithConsoleWriter(logLevel, os.Stderr)
	logger := pkgLogger.NewComponentLogger("main")

	// Command line overrides
	if resolvedBackend != "" {
		backendDefaults := config.GetDefaultLLMSettingsForBackend(resolvedBackend)
		if resolvedModel != "" {
			backendDefaults.Model = resolvedModel
		}
		settings.LLM = backendDefaults
	} else if resolvedModel != "" {
		settings.LLM.Model = resolvedModel
	}

	if resolvedTest {
		settings.Game.MinValue = 1
		settings.Game.MaxValue = 16
		settings.Game.MaxTurns = 5
		settings.Memory.Enabled = false
		settings.Memory.SaveTranscripts = false
	}

	if err := config.ValidateSettings(settings); err != nil {
		logger.Error("Settings validation failed", "error", err)
		os.Exit(1)
	}

	if *validate {
		if envVar := config.APIKeyEnvVar(settings.LLM.Backend); envVar != "" && os.Getenv(envVar) == "" {
			logger.Error("API key missing", "env_var", envVar)
			os.Exit(1)
		}
		fmt.Printf("Configuration OK: backend=%s model=%s range=%d-%d turns=%d\n",
			settings.LLM.Backend, settings.LLM.Model,
			settings.Game.MinValue, settings.Game.MaxValue, settings.Game.MaxTurns)
		return
	}

	conv, err := client.NewConverser(settings.LLM)
	if err != nil {
		logger.Error("Failed to create inference client", "error", err)
		os.Exit(1)
	}
	retrying := llm.WithRetry(conv, llm.DefaultRetryAttempts, llm.DefaultRetryBackoff)

	if err := config.ResolveDataDirs(&settings); err != nil {
		logger.Error("Failed to prepare data directories", "error", err)
		os.Exit(1)
	}

	printer := ui.NewPrinter()
	printer.Banner()
	logger.Debug("Using model", "backend", settings.LLM.Backend, "model", retrying.ModelID())

	if resolvedAuto || resolvedTest {
		for i := 0; i < resolvedGames; i++ {
			if err := playGame(ctx, settings, retrying, printer); err != nil {
				logger.Error("Game failed", "game", i+1, "error", err)
				os.Exit(1)
			}
		}
		return
	}

	// Interactive mode
	for {
		if !confirm("Start game?") {
			fmt.Println("Goodbye!")
			return
		}
		if err := playGame(ctx, settings, retrying, printer); err != nil {
			logger.Error("Game failed", "error", err)
			os.Exit(1)
		}
		if !confirm("Play again?") {
			fmt.Println("Thanks for playing!")
			return
		}
	}
}

// playGame runs one full game with freshly loaded memory, then persists the
// transcript and each role's new lesson. Persistence failures are logged,
// never fatal: the verdict stands regardless.
func playGame(ctx context.Context, settings config.Settings, conv llm.Converser, printer *ui.Printer) error {
	logger := pkgLogger.NewComponentLogger("main")
	cfg := gameConfig(settings)

	memStore := memory.NewStore(settings.Memory.MemoryDir, settings.Memory.MaxHistoryGames, conv)
	setter, guesser := newGameAgents(conv, cfg, memStore)

	engine, err := game.NewEngine(cfg, setter, guesser, game.NewInterpreter(), printer)
	if err != nil {
		return err
	}

	transcript, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	if settings.Memory.SaveTranscripts {
		histStore := history.NewStore(settings.Memory.HistoryDir)
		if path, err := histStore.Save(transcript); err != nil {
			logger.Warn("Failed to save transcript", "error", err)
		} else {
			logger.Info("Game saved", "path", path)
		}
	}

	if cfg.EnableMemory {
		for _, role := range []game.Role{game.RoleSetter, game.RoleGuesser} {
			if err := memStore.Record(ctx, transcript, role); err != nil {
				logger.Warn("Failed to record lesson", "role", role, "error", err)
			}
		}
	}
	return nil
}

// newGameAgents builds both agents with memory loaded fresh from the store.
// Called once per game, so in a batch run every game after the first sees
// the lessons its predecessors recorded.
func newGameAgents(conv llm.Converser, cfg game.Config, memStore *memory.Store) (setter, guesser *game.Agent) {
	var setterHistory, guesserHistory []string
	if cfg.EnableMemory {
		setterHistory = loadHistory(memStore, game.RoleSetter)
		guesserHistory = loadHistory(memStore, game.RoleGuesser)
	}

	setter = game.NewAgent(game.RoleSetter, conv, cfg, setterHistory)
	guesser = game.NewAgent(game.RoleGuesser, conv, cfg, guesserHistory)
	return setter, guesser
}

func loadHistory(store *memory.Store, role game.Role) []string {
	mem, err := store.Load(role)
	if err != nil {
		pkgLogger.NewComponentLogger("main").Warn("Failed to load role memory", "role", role, "error", err)
		return nil
	}
	return memory.FormatHistory(mem)
}

func gameConfig(settings config.Settings) game.Config {
	return game.Config{
		MinValue:       settings.Game.MinValue,
		MaxValue:       settings.Game.MaxValue,
		MaxTurns:       settings.Game.MaxTurns,
		EnableHints:    settings.Game.EnableHints,
		EnableDialogue: settings.Game.EnableDialogue,
		EnableMemory:   settings.Memory.Enabled,
		Creativity:     settings.Game.Creativity,
		MaxWords:       settings.Game.MaxWords,
	}
}

func confirm(label string) bool {
	prompt := promptui.Select{
		Label: label,
		Items: []string{"Yes", "No"},
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "{{ . }}",
		},
		Size: 2,
	}

	_, result, err := prompt.Run()
	if err != nil {
		return false
	}
	return result == "Yes"
}
