// Package commands provides CLI commands for purrfect.
package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/diogo/purrfect/internal/config"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	backend string
	model   string
	verbose bool
	timeout time.Duration
}

// app carries what a command invocation needs
type app struct {
	deps   *Dependencies
	flags  globalFlags
	logger zerolog.Logger
}

// NewRootCmd builds the command tree over deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	if deps == nil {
		deps = NewDependencies()
	}
	a := &app{deps: deps, logger: zerolog.Nop()}

	var fileFlag, outputFlag string

	rootCmd := &cobra.Command{
		Use:   "purrfect [message]",
		Short: "Purrfect Ventures business guru for the terminal",
		Long: `purrfect talks to the Purrfect Business Guru, an assistant for
cat-product e-commerce: branding, pricing, suppliers and growth.

Examples:
  purrfect chat                          Start interactive chat
  purrfect "How do I price cat toys?"    Ask a single question
  purrfect analyze "luxury cat beds"     Competitor analysis with sources
  purrfect store list                    Show the catalog
  purrfect store describe --all          Write product copy
  purrfect config set backend direct     Use the Gemini API directly
  cat question.md | purrfect             Read the question from stdin`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(deps.Err, a.flags.verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Out, "purrfect %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if fileFlag != "" {
				data, err := os.ReadFile(fileFlag)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return a.runAsk(cmd, string(data), outputFlag)
			}

			if hasStdin() {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return a.runAsk(cmd, string(data), outputFlag)
			}

			if len(args) > 0 {
				return a.runAsk(cmd, args[0], outputFlag)
			}

			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.backend, "backend", "", "Chat backend: proxy or direct")
	pf.StringVarP(&a.flags.model, "model", "m", "", "Model for the direct backend (e.g., gemini-2.5-flash)")
	pf.BoolVar(&a.flags.verbose, "verbose", false, "Log requests to stderr")
	pf.DurationVar(&a.flags.timeout, "timeout", 0, "Request timeout (default from config, 30s)")

	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the question from file")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the reply to file")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(
		newChatCmd(a),
		newAskCmd(a),
		newAnalyzeCmd(a),
		newStoreCmd(a),
		newConfigCmd(a),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() {
	deps := NewDependencies()
	if err := NewRootCmd(deps).Execute(); err != nil {
		fmt.Fprintln(deps.Err, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

// newLogger returns a console logger on w; warn level unless verbose
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
}

// settings loads the configuration and applies the global flags on top
func (a *app) settings() (config.Config, error) {
	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	if a.flags.backend != "" {
		cfg.Backend = a.flags.backend
	}
	if a.flags.model != "" {
		cfg.Model = a.flags.model
	}
	if a.flags.timeout > 0 {
		cfg.TimeoutMs = int(a.flags.timeout.Milliseconds())
	}
	if cfg.Verbose && !a.flags.verbose {
		a.flags.verbose = true
		a.logger = newLogger(a.deps.Err, true)
	}

	a.logger.Debug().
		Str("backend", cfg.Backend).
		Str("model", cfg.Model).
		Dur("timeout", cfg.Timeout()).
		Msg("configuration loaded")

	return cfg, nil
}

// hasStdin reports whether input is piped in
func hasStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
