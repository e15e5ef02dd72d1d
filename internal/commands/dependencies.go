package commands

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/diogo/purrfect/internal/api"
	"github.com/diogo/purrfect/internal/chat"
	"github.com/diogo/purrfect/internal/config"
	"github.com/diogo/purrfect/internal/models"
	"github.com/diogo/purrfect/internal/render"
	"github.com/diogo/purrfect/internal/tui"
)

// Generator is the content generation surface shared by competitor analysis
// and product descriptions
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, opts *api.GenerateOptions) (*models.GenerateOutput, error)
}

// ChatRunner runs the interactive chat UI
type ChatRunner func(ctx context.Context, build func(onChange func()) tui.ChatController, info tui.Info, opts render.Options) error

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// LoadConfig reads the user configuration with environment overlays
	LoadConfig func() (config.Config, error)

	// NewTransport builds the chat transport for the configured backend
	NewTransport func(cfg config.Config, logger zerolog.Logger) (chat.Transport, error)

	// NewGenerator builds the Gemini client used outside the chat
	NewGenerator func(cfg config.Config, logger zerolog.Logger) (Generator, error)

	// RunChat runs the chat TUI
	RunChat ChatRunner

	// Out receives command output, Err receives diagnostics and logs
	Out io.Writer
	Err io.Writer

	// IsTerminal reports whether Out is an interactive terminal
	IsTerminal func() bool
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		LoadConfig:   config.LoadConfig,
		NewTransport: newTransport,
		NewGenerator: newGenerator,
		RunChat:      tui.RunChat,
		Out:          os.Stdout,
		Err:          os.Stderr,
		IsTerminal:   isStdoutTTY,
	}
}

// guruConfig builds the proxy transport configuration
func guruConfig(cfg config.Config) api.GuruConfig {
	return api.GuruConfig{
		BaseURL:   cfg.BaseURL,
		ClientKey: cfg.ClientKey,
		Timeout:   cfg.Timeout(),
	}
}

// geminiConfig builds the direct backend configuration
func geminiConfig(cfg config.Config) api.GeminiConfig {
	return api.GeminiConfig{
		APIKey:  cfg.APIKey,
		Model:   models.ModelFromName(cfg.Model),
		Timeout: cfg.Timeout(),
	}
}

// newTransport returns the transport of the configured backend. Only one
// backend is active per run.
func newTransport(cfg config.Config, logger zerolog.Logger) (chat.Transport, error) {
	if cfg.Backend == config.BackendDirect {
		client, err := api.NewGeminiClient(geminiConfig(cfg), api.WithGeminiLogger(logger))
		if err != nil {
			return nil, err
		}
		return client.StartChat(models.GuruSystemInstruction), nil
	}

	return api.NewGuruClient(guruConfig(cfg), api.WithGuruLogger(logger))
}

func newGenerator(cfg config.Config, logger zerolog.Logger) (Generator, error) {
	return api.NewGeminiClient(geminiConfig(cfg), api.WithGeminiLogger(logger))
}
