package analysis

import (
	"context"
	"strings"
	"sync"

	"github.com/diogo/purrfect/internal/models"
)

// Board holds the latest analysis shown to the user. Each run replaces the
// previous result wholesale; results are never merged.
type Board struct {
	analyzer *Analyzer

	mu      sync.RWMutex
	query   string
	result  *models.AnalysisResult
	err     error
	loading bool
}

// Snapshot is a point-in-time copy of the board
type Snapshot struct {
	Query   string
	Result  *models.AnalysisResult
	Err     error
	Loading bool
}

// NewBoard creates an empty board
func NewBoard(analyzer *Analyzer) *Board {
	return &Board{analyzer: analyzer}
}

// Run clears the board, analyzes query and stores the outcome.
// Blank queries leave the board untouched.
func (b *Board) Run(ctx context.Context, query string) Snapshot {
	if strings.TrimSpace(query) == "" {
		return b.Snapshot()
	}

	b.mu.Lock()
	b.query = query
	b.result = nil
	b.err = nil
	b.loading = true
	b.mu.Unlock()

	result, err := b.analyzer.Analyze(ctx, query)

	b.mu.Lock()
	b.result = result
	b.err = err
	b.loading = false
	b.mu.Unlock()

	return b.Snapshot()
}

// Snapshot returns the current board state
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Snapshot{
		Query:   b.query,
		Result:  b.result,
		Err:     b.err,
		Loading: b.loading,
	}
}
