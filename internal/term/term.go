// Package term decides whether terminal output is colored. Level colors in
// log lines come from the zap console encoder and the banner is styled with
// lipgloss; [Configure] records the decision so every package agrees on it.
package term

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/backmassage/attrition/internal/config"
)

var mode = config.ColorAuto

// Configure records the color mode and reports whether stdout gets colors.
// Call once during startup.
func Configure(m config.ColorMode) bool {
	mode = m
	return Renderer(os.Stdout).ColorProfile() != termenv.Ascii
}

// Renderer returns a lipgloss renderer for w that follows the configured
// mode. In auto mode the profile comes from w and the environment, so a
// non-TTY writer, NO_COLOR or TERM=dumb give plain text.
func Renderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case config.ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case config.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}
