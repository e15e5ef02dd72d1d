package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/purrfect/internal/chat"
	"github.com/diogo/purrfect/internal/config"
	"github.com/diogo/purrfect/internal/models"
	"github.com/diogo/purrfect/internal/render"
	"github.com/diogo/purrfect/internal/tui"
)

// chatLogFile collects verbose logs while the TUI owns the terminal
const chatLogFile = "chat.log"

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat with the guru",
		Long: `Start an interactive chat session with the Purrfect Business Guru.

Sending a new message while the guru is thinking replaces the pending
request. Type 'exit', 'quit', or press Esc to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd)
		},
	}
}

func (a *app) runChat(cmd *cobra.Command) error {
	cfg, err := a.settings()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLog := a.chatLogger()
	defer closeLog()

	transport, err := a.deps.NewTransport(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	info := tui.Info{Backend: cfg.Backend}
	if cfg.Backend == config.BackendDirect {
		info.Model = models.ModelFromName(cfg.Model).Name
	}

	build := func(onChange func()) tui.ChatController {
		return chat.NewSession(transport,
			chat.WithGreeting(models.GuruGreeting),
			chat.WithTimeout(cfg.Timeout()),
			chat.WithLogger(logger),
			chat.WithOnChange(onChange),
		)
	}

	return a.deps.RunChat(cmd.Context(), build, info, render.OptionsFromConfig(cfg.Markdown))
}

// chatLogger returns the logger used while the TUI runs. Console output
// would corrupt the screen, so verbose logs go to a file in the config
// directory and are discarded otherwise.
func (a *app) chatLogger() (zerolog.Logger, func()) {
	if !a.flags.verbose {
		return zerolog.Nop(), func() {}
	}

	dir, err := config.EnsureConfigDir()
	if err != nil {
		a.logger.Warn().Err(err).Msg("chat log disabled")
		return zerolog.Nop(), func() {}
	}

	f, err := os.OpenFile(filepath.Join(dir, chatLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		a.logger.Warn().Err(err).Msg("chat log disabled")
		return zerolog.Nop(), func() {}
	}

	a.logger.Debug().Str("path", f.Name()).Msg("chat log enabled")
	return newFileLogger(f), func() { _ = f.Close() }
}

func newFileLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
