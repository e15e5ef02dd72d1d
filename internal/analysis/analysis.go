// Package analysis runs search-grounded competitor analysis for the cat market.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/diogo/purrfect/internal/api"
	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/models"
)

// NoAnalysis replaces an empty model answer
const NoAnalysis = "No analysis generated."

// ErrAnalysisFailed is returned when a failure carries no message of its own
var ErrAnalysisFailed = errors.New("Failed to analyze competitors.")

const promptTemplate = `Analyze the competitive landscape for the following query in the global cat market: "%s".
Identify key players, their strengths/weaknesses, and potential market gaps for a new entrant.
Format the response using Markdown with clear headers.`

// Generator produces grounded content for a prompt
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, opts *api.GenerateOptions) (*models.GenerateOutput, error)
}

// Analyzer turns a market query into a report with citations
type Analyzer struct {
	gen    Generator
	logger zerolog.Logger
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

// NewAnalyzer creates an Analyzer backed by gen
func NewAnalyzer(gen Generator, opts ...Option) *Analyzer {
	a := &Analyzer{gen: gen, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildPrompt wraps query in the analysis instructions
func BuildPrompt(query string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(query))
}

// Analyze asks the model about query with Google Search grounding enabled.
// Sources keep only citations with both a uri and a title.
func (a *Analyzer) Analyze(ctx context.Context, query string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apierrors.NewEmptyMessageError()
	}

	start := time.Now()
	output, err := a.gen.GenerateContent(ctx, BuildPrompt(query), &api.GenerateOptions{GoogleSearch: true})
	if err != nil {
		a.logger.Error().Err(err).Msg("competitor analysis failed")
		if err.Error() == "" {
			return nil, ErrAnalysisFailed
		}
		return nil, err
	}

	result := &models.AnalysisResult{
		Content: output.Text,
		Sources: make([]models.Source, 0, len(output.Sources)),
	}
	if strings.TrimSpace(result.Content) == "" {
		result.Content = NoAnalysis
	}
	for _, src := range output.Sources {
		if src.URI != "" && src.Title != "" {
			result.Sources = append(result.Sources, src)
		}
	}

	a.logger.Debug().
		Int("sources", len(result.Sources)).
		Dur("elapsed", time.Since(start)).
		Msg("competitor analysis finished")

	return result, nil
}
