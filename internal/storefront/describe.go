package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/diogo/purrfect/internal/api"
	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/models"
)

// Copy shown instead of a generated description
const (
	NoKeyDescription       = "Please set API KEY to generate description."
	FailedDescription      = "Could not generate description at this time."
	UnavailableDescription = "Description unavailable."
)

// defaultConcurrency bounds parallel calls in DescribeAll
const defaultConcurrency = 3

// Generator produces content for a prompt
type Generator interface {
	GenerateContent(ctx context.Context, prompt string, opts *api.GenerateOptions) (*models.GenerateOutput, error)
}

// Describer writes marketing copy for products. It never fails; problems
// are reported through the returned text.
type Describer struct {
	gen         Generator
	concurrency int
	logger      zerolog.Logger
}

// DescriberOption configures a Describer
type DescriberOption func(*Describer)

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) DescriberOption {
	return func(d *Describer) {
		d.logger = logger
	}
}

// WithConcurrency bounds how many descriptions are generated at once
func WithConcurrency(n int) DescriberOption {
	return func(d *Describer) {
		if n > 0 {
			d.concurrency = n
		}
	}
}

// NewDescriber creates a Describer backed by gen
func NewDescriber(gen Generator, opts ...DescriberOption) *Describer {
	d := &Describer{gen: gen, concurrency: defaultConcurrency, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DescriptionPrompt asks for a short, witty description of p
func DescriptionPrompt(p models.Product) string {
	return fmt.Sprintf("Write a short, witty, and persuasive product description (max 50 words) for a cat product named %q in the category %q. It should appeal to obsessed cat owners.",
		p.Name, string(p.Category))
}

// Describe generates a description for p
func (d *Describer) Describe(ctx context.Context, p models.Product) string {
	output, err := d.gen.GenerateContent(ctx, DescriptionPrompt(p), nil)
	switch {
	case errors.Is(err, apierrors.ErrMissingAPIKey):
		return NoKeyDescription
	case err != nil:
		d.logger.Error().Err(err).Str("product", p.ID).Msg("description generation failed")
		return FailedDescription
	case output == nil || strings.TrimSpace(output.Text) == "":
		return UnavailableDescription
	}
	return strings.TrimSpace(output.Text)
}

// DescribeAll generates descriptions for every product, keyed by product id.
// It stops early only when ctx is cancelled.
func (d *Describer) DescribeAll(ctx context.Context, items []models.Product) (map[string]string, error) {
	results := make(map[string]string, len(items))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, p := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text := d.Describe(gctx, p)

			mu.Lock()
			results[p.ID] = text
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
