package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/purrfect/internal/chat"
	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/render"
)

func newAskCmd(a *app) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask the guru a single question",
		Long: `Send one message through the configured backend and print the reply.

When stdout is not a terminal only the raw reply text is printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAsk(cmd, args[0], outputFlag)
		},
	}
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the reply to file")
	return cmd
}

// runAsk sends a single message and outputs the reply.
// Non-interactive output is the raw reply text only.
func (a *app) runAsk(cmd *cobra.Command, message, outputFile string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return apierrors.NewEmptyMessageError()
	}

	cfg, err := a.settings()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	transport, err := a.deps.NewTransport(cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create transport: %w", err)
	}

	session := chat.NewSession(transport,
		chat.WithTimeout(cfg.Timeout()),
		chat.WithLogger(a.logger),
	)
	defer session.Dispose()

	ctx := cmd.Context()
	spin := a.progress("Asking the guru")

	exchange, err := session.Send(ctx, message)
	if err != nil {
		spin.fail()
		return err
	}
	reply, err := exchange.Wait(ctx)
	if err != nil {
		spin.fail()
		return err
	}
	spin.succeed("Done")

	interactive := a.deps.IsTerminal()

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(reply), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if interactive {
			fmt.Fprintln(a.deps.Err, lipgloss.NewStyle().Foreground(colorSuccess).Render(
				fmt.Sprintf("✓ Reply saved to %s", outputFile),
			))
		}
		return nil
	}

	if !interactive {
		fmt.Fprint(a.deps.Out, reply)
		return nil
	}

	if cfg.CopyToClipboard {
		copyReply(a.deps.Err, reply)
	}

	printBubble(a.deps.Out, "🐾 Guru", reply, render.OptionsFromConfig(cfg.Markdown))
	return nil
}
