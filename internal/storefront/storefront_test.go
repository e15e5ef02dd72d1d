package storefront

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/diogo/purrfect/internal/api"
	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/models"
)

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	fn      func(prompt string) (*models.GenerateOutput, error)
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, prompt string, opts *api.GenerateOptions) (*models.GenerateOutput, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	return f.fn(prompt)
}

func TestCatalog(t *testing.T) {
	if len(Products()) != 6 {
		t.Errorf("len(Products()) = %d, want 6", len(Products()))
	}
	if len(Services()) != 3 {
		t.Errorf("len(Services()) = %d, want 3", len(Services()))
	}

	toys := ByCategory(models.CategoryToy)
	if len(toys) != 2 {
		t.Errorf("toys = %+v", toys)
	}

	p := Products()
	p[0].Name = "tampered"
	if Products()[0].Name == "tampered" {
		t.Error("Products() exposes the backing array")
	}
}

func TestFindProduct(t *testing.T) {
	tests := []struct {
		ref    string
		wantID string
		found  bool
	}{
		{"1", "1", true},
		{"velvet lounge bed", "4", true},
		{" Feather Wand Pro ", "6", true},
		{"laser", "", false},
	}

	for _, tt := range tests {
		p, ok := FindProduct(tt.ref)
		if ok != tt.found || p.ID != tt.wantID {
			t.Errorf("FindProduct(%q) = %v, %v", tt.ref, p.ID, ok)
		}
	}
}

func TestPriceLabel(t *testing.T) {
	p, _ := FindProduct("3")
	if p.PriceLabel() != "$45.00" {
		t.Errorf("PriceLabel() = %s", p.PriceLabel())
	}
}

func TestDescribe(t *testing.T) {
	product, _ := FindProduct("1")

	tests := []struct {
		name   string
		output *models.GenerateOutput
		err    error
		want   string
	}{
		{"generated", &models.GenerateOutput{Text: " A castle fit for a queen. \n"}, nil, "A castle fit for a queen."},
		{"missing key", nil, apierrors.ErrMissingAPIKey, NoKeyDescription},
		{"failure", nil, apierrors.NewServerError(500, "boom", ""), FailedDescription},
		{"empty text", &models.GenerateOutput{}, nil, UnavailableDescription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{fn: func(string) (*models.GenerateOutput, error) { return tt.output, tt.err }}

			got := NewDescriber(gen).Describe(context.Background(), product)
			if got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDescriptionPrompt(t *testing.T) {
	product, _ := FindProduct("2")
	prompt := DescriptionPrompt(product)

	for _, want := range []string{`"Organic Salmon Snaps"`, `"food"`, "max 50 words"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %s: %s", want, prompt)
		}
	}
}

func TestDescribeAll(t *testing.T) {
	gen := &fakeGenerator{fn: func(prompt string) (*models.GenerateOutput, error) {
		if strings.Contains(prompt, "Salmon") {
			return nil, errors.New("upstream")
		}
		return &models.GenerateOutput{Text: "copy"}, nil
	}}

	results, err := NewDescriber(gen, WithConcurrency(2)).DescribeAll(context.Background(), Products())
	if err != nil {
		t.Fatalf("DescribeAll() error = %v", err)
	}

	if len(results) != 6 {
		t.Fatalf("len(results) = %d, want 6", len(results))
	}
	if results["2"] != FailedDescription {
		t.Errorf("results[2] = %q", results["2"])
	}
	if results["1"] != "copy" {
		t.Errorf("results[1] = %q", results["1"])
	}
}

func TestDescribeAll_Cancelled(t *testing.T) {
	gen := &fakeGenerator{fn: func(string) (*models.GenerateOutput, error) {
		return &models.GenerateOutput{Text: "copy"}, nil
	}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewDescriber(gen).DescribeAll(ctx, Products())

	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
}
