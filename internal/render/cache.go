package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
)

// renderers pools glamour renderers per option set. A TermRenderer is not
// safe for concurrent Render calls, so each caller borrows its own.
type renderers struct {
	mu    sync.Mutex
	pools map[Options]*sync.Pool
}

var globalPool = newRenderers()

func newRenderers() *renderers {
	return &renderers{pools: make(map[Options]*sync.Pool)}
}

func (r *renderers) pool(opts Options) *sync.Pool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pools[opts]
	if !ok {
		p = &sync.Pool{}
		r.pools[opts] = p
	}
	return p
}

// get borrows a renderer for opts, building one when the pool is empty
func (r *renderers) get(opts Options) (*glamour.TermRenderer, error) {
	if tr, ok := r.pool(opts).Get().(*glamour.TermRenderer); ok {
		return tr, nil
	}
	return createRenderer(opts)
}

// put returns a borrowed renderer
func (r *renderers) put(opts Options, tr *glamour.TermRenderer) {
	if tr != nil {
		r.pool(opts).Put(tr)
	}
}

// createRenderer builds a TermRenderer. Style names known to glamour are
// used directly, anything else is loaded as a JSON style file.
func createRenderer(opts Options) (*glamour.TermRenderer, error) {
	options := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithTableWrap(opts.TableWrap),
	}
	if opts.EnableEmoji {
		options = append(options, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		options = append(options, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(options...)
}

// ClearCache drops every pooled renderer
func ClearCache() {
	globalPool.mu.Lock()
	globalPool.pools = make(map[Options]*sync.Pool)
	globalPool.mu.Unlock()
}

// CacheSize returns the number of distinct option sets pooled
func CacheSize() int {
	globalPool.mu.Lock()
	defer globalPool.mu.Unlock()
	return len(globalPool.pools)
}
