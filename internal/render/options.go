// Package render turns model markdown into styled terminal output.
package render

// Defaults for guru replies and analysis reports
const (
	DefaultWidth = 80
	DefaultStyle = "dark"

	// MinWidth keeps wrapping sane when the terminal is tiny
	MinWidth = 20
)

// Options configures the markdown renderer. Options is comparable and
// identifies a pooled renderer.
type Options struct {
	Width int
	// Style is a glamour style name ("dark", "light", "notty", ...) or a
	// path to a JSON style file
	Style            string
	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Width:            DefaultWidth,
		Style:            DefaultStyle,
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns a copy wrapping at width, never below MinWidth
func (o Options) WithWidth(width int) Options {
	if width < MinWidth {
		width = MinWidth
	}
	o.Width = width
	return o
}

// WithStyle returns a copy using style
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// WithEmoji returns a copy with emoji shortcodes enabled or disabled
func (o Options) WithEmoji(enabled bool) Options {
	o.EnableEmoji = enabled
	return o
}
