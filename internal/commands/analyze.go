package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/purrfect/internal/analysis"
	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/render"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <niche or competitor>",
		Short: "Research competitors with Google Search grounding",
		Long: `Analyze the market for a niche or competitor using the Gemini API with
Google Search grounding. The report lists the web sources it used.

Requires an API key (API_KEY or 'purrfect config set api_key <key>').`,
		Example: `  purrfect analyze "luxury cat furniture"
  purrfect analyze "Meowingtons"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, strings.Join(args, " "))
		},
	}
}

func (a *app) runAnalyze(cmd *cobra.Command, query string) error {
	if strings.TrimSpace(query) == "" {
		return apierrors.NewEmptyMessageError()
	}

	cfg, err := a.settings()
	if err != nil {
		return err
	}

	gen, err := a.deps.NewGenerator(cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	board := analysis.NewBoard(analysis.NewAnalyzer(gen, analysis.WithLogger(a.logger)))

	spin := a.progress("Scouting the competition")
	snap := board.Run(cmd.Context(), query)
	if snap.Err != nil {
		spin.fail()
		return snap.Err
	}
	spin.succeed(fmt.Sprintf("%d sources", len(snap.Result.Sources)))

	report := render.AnalysisMarkdown(snap.Result)
	if !a.deps.IsTerminal() {
		fmt.Fprint(a.deps.Out, report)
		return nil
	}

	printBubble(a.deps.Out, "📈 "+render.ReportTitle, report, render.OptionsFromConfig(cfg.Markdown))
	return nil
}
