package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Gradient colors for animation, shared with the chat TUI palette
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#e0a458"),
	lipgloss.Color("#f4a7b9"),
	lipgloss.Color("#d8a657"),
	lipgloss.Color("#ea6962"),
	lipgloss.Color("#a9b665"),
	lipgloss.Color("#89b482"),
}

var (
	colorText     = lipgloss.Color("#f2e9e1")
	colorTextDim  = lipgloss.Color("#a89984")
	colorTextMute = lipgloss.Color("#665c54")
	colorSuccess  = lipgloss.Color("#a9b665")
	colorError    = lipgloss.Color("#e06c75")
	colorPrimary  = lipgloss.Color("#e0a458") // ginger
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner drawing on out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	paws := []string{"🐾", "  ", "🐾", "  "}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	head := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render("ฅ^•ﻌ•^ฅ")

	var trail strings.Builder
	for i := 0; i < 4; i++ {
		trail.WriteString(paws[(i+s.frame/3)%len(paws)])
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", head, msg, dots.String(), trail.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(s.out, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// progress starts a spinner when interactive and returns it, or nil
func (a *app) progress(message string) *spinner {
	if !a.deps.IsTerminal() {
		return nil
	}
	s := newSpinner(a.deps.Err, message)
	s.start()
	return s
}

// succeed and fail are nil-safe spinner stops
func (s *spinner) succeed(message string) {
	if s != nil {
		s.stopWithSuccess(message)
	}
}

func (s *spinner) fail() {
	if s != nil {
		s.stopWithError()
	}
}
