package render

import (
	"fmt"
	"strings"

	"github.com/diogo/purrfect/internal/models"
)

// Markdown renders markdown content for terminal display using a pooled
// renderer.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth renders with default options at the given width.
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}

// MarkdownOrPlain renders content and falls back to the raw text when the
// renderer fails.
func MarkdownOrPlain(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return out
}

// ReportTitle heads every rendered competitor analysis
const ReportTitle = "Market Intelligence Report"

// AnalysisMarkdown lays out an analysis result as a markdown document with
// a numbered source list.
func AnalysisMarkdown(result *models.AnalysisResult) string {
	if result == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("# " + ReportTitle + "\n\n")
	sb.WriteString(strings.TrimSpace(result.Content))
	sb.WriteString("\n")

	if result.HasSources() {
		sb.WriteString("\n## Sources\n\n")
		for i, src := range result.Sources {
			fmt.Fprintf(&sb, "%d. [%s](%s)\n", i+1, src.Title, src.URI)
		}
	}
	return sb.String()
}
