// Package tui provides the terminal chat interface for the guru.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	apierrors "github.com/diogo/purrfect/internal/errors"
)

// Purrfect palette
var (
	colorBorder    = lipgloss.Color("#5c4b3b")
	colorPrimary   = lipgloss.Color("#e0a458") // ginger
	colorSecondary = lipgloss.Color("#a3be8c")
	colorAccent    = lipgloss.Color("#f4a7b9") // paw pink
	colorError     = lipgloss.Color("#e06c75")
	colorText      = lipgloss.Color("#f2e9e1")
	colorTextDim   = lipgloss.Color("#a89984")
	colorTextMute  = lipgloss.Color("#665c54")
)

// Gradient colors for the thinking animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#e0a458"),
	lipgloss.Color("#f4a7b9"),
	lipgloss.Color("#d8a657"),
	lipgloss.Color("#ea6962"),
	lipgloss.Color("#a9b665"),
	lipgloss.Color("#89b482"),
}

var (
	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 2).
			MarginBottom(1)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
			Foreground(colorTextMute).
			Italic(true)

	messagesAreaStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Padding(1)

	userBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorSecondary).
			Padding(0, 1).
			MarginLeft(4)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true).
			MarginLeft(4)

	guruBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Foreground(colorText).
			Padding(0, 1).
			MarginRight(4)

	guruLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	errorBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorError).
				Foreground(colorError).
				Padding(0, 1).
				MarginRight(4)

	timestampStyle = lipgloss.NewStyle().
			Foreground(colorTextMute)

	inputPanelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			MarginTop(1)

	inputLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true).
			MarginRight(1)

	loadingStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorTextMute).
			MarginTop(1)

	statusKeyStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Bold(true)

	statusDescStyle = lipgloss.NewStyle().
			Foreground(colorTextMute)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)
)

// FormatError returns a styled error line with the HTTP status and a hint
// when one applies.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim).PaddingLeft(2)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("⚠ Error: %v", err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render(fmt.Sprintf("HTTP Status: %d", status)))
	}

	if hint := errorHint(err); hint != "" {
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("Hint: " + hint))
	}

	return sb.String()
}

func errorHint(err error) string {
	switch {
	case apierrors.IsEmptyMessageError(err):
		return "Type a question before pressing Enter"
	case apierrors.IsTimeoutError(err):
		return "The guru took too long. Try again or raise --timeout"
	case apierrors.IsNetworkError(err):
		return "Check that the guru server is reachable (base_url)"
	default:
		return ""
	}
}
