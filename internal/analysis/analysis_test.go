package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/diogo/purrfect/internal/api"
	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/models"
)

type fakeGenerator struct {
	output *models.GenerateOutput
	err    error

	prompt string
	opts   *api.GenerateOptions
	calls  int
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string, opts *api.GenerateOptions) (*models.GenerateOutput, error) {
	f.calls++
	f.prompt = prompt
	f.opts = opts
	return f.output, f.err
}

type silentError struct{}

func (silentError) Error() string { return "" }

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("  Tuft + Paw ")

	if !strings.Contains(prompt, `"Tuft + Paw"`) {
		t.Errorf("prompt should quote the trimmed query: %s", prompt)
	}
	for _, want := range []string{"global cat market", "market gaps", "Markdown"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestAnalyze(t *testing.T) {
	gen := &fakeGenerator{output: &models.GenerateOutput{
		Text: "## Key players",
		Sources: []models.Source{
			{URI: "https://a.example", Title: "A"},
			{URI: "", Title: "no uri"},
			{URI: "https://b.example", Title: ""},
		},
	}}

	result, err := NewAnalyzer(gen).Analyze(context.Background(), "luxury cat furniture")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.Content != "## Key players" {
		t.Errorf("Content = %q", result.Content)
	}
	if len(result.Sources) != 1 || result.Sources[0].Title != "A" {
		t.Errorf("Sources = %+v", result.Sources)
	}
	if gen.opts == nil || !gen.opts.GoogleSearch {
		t.Error("expected google search grounding")
	}
	if gen.prompt != BuildPrompt("luxury cat furniture") {
		t.Errorf("prompt = %q", gen.prompt)
	}
}

func TestAnalyze_EmptyContentFallback(t *testing.T) {
	gen := &fakeGenerator{output: &models.GenerateOutput{Text: " "}}

	result, err := NewAnalyzer(gen).Analyze(context.Background(), "q")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Content != NoAnalysis {
		t.Errorf("Content = %q, want %q", result.Content, NoAnalysis)
	}
	if result.Sources == nil || result.HasSources() {
		t.Errorf("Sources = %v, want empty slice", result.Sources)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		genErr  error
		wantMsg string
		calls   int
	}{
		{"blank query", "  ", nil, "Message is empty", 0},
		{"missing key", "q", apierrors.ErrMissingAPIKey, "API Key is missing", 1},
		{"server error keeps message", "q", apierrors.NewServerError(500, "quota exceeded", ""), "quota exceeded", 1},
		{"silent error", "q", silentError{}, "Failed to analyze competitors.", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{err: tt.genErr}

			result, err := NewAnalyzer(gen).Analyze(context.Background(), tt.query)

			if err == nil || result != nil {
				t.Fatalf("Analyze() = %v, %v; want error", result, err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
			if gen.calls != tt.calls {
				t.Errorf("calls = %d, want %d", gen.calls, tt.calls)
			}
		})
	}
}

func TestAnalyze_MissingKeyIsDetectable(t *testing.T) {
	gen := &fakeGenerator{err: apierrors.ErrMissingAPIKey}

	_, err := NewAnalyzer(gen).Analyze(context.Background(), "q")

	if !errors.Is(err, apierrors.ErrMissingAPIKey) {
		t.Errorf("error = %v, want ErrMissingAPIKey", err)
	}
}
