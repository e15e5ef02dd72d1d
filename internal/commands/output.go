package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apierrors "github.com/diogo/purrfect/internal/errors"
	"github.com/diogo/purrfect/internal/render"
)

var (
	guruLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	guruBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Foreground(colorText).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1)

	headingStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(colorTextDim)
	priceStyle   = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
)

// copyToClipboard is replaced in tests
var copyToClipboard = clipboard.WriteAll

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// bubbleWidth clamps the terminal width for framed output
func bubbleWidth() int {
	w := getTerminalWidth() - 4
	if w < 40 {
		w = 40
	}
	if w > 120 {
		w = 120
	}
	return w
}

// printBubble renders markdown inside a labelled bubble
func printBubble(w io.Writer, label, markdown string, opts render.Options) {
	width := bubbleWidth()
	rendered := render.MarkdownOrPlain(markdown, opts.WithWidth(width-4))
	rendered = strings.TrimRight(rendered, "\n")

	fmt.Fprintln(w, guruLabelStyle.Render(label))
	fmt.Fprintln(w, guruBubbleStyle.Width(width).Render(rendered))
}

// copyReply copies text to the clipboard and reports the outcome on w
func copyReply(w io.Writer, text string) {
	if err := copyToClipboard(text); err != nil {
		warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
			fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
		)
		fmt.Fprintln(w, warnMsg)
		return
	}
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorError)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
		return sb.String()
	}

	switch {
	case errors.Is(err, apierrors.ErrMissingAPIKey):
		sb.WriteString(dimStyle.Render("\n  Hint: Set API_KEY or run 'purrfect config set api_key <key>'"))
	case apierrors.IsNetworkError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Check that the guru server is running and reachable (purrfect config set base_url <url>)"))
	case apierrors.IsTimeoutError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Try again or raise --timeout"))
	case apierrors.IsServerError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: The server rejected the request. Try again later"))
	}

	return sb.String()
}
