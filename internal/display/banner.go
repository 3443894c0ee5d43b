package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/backmassage/attrition/internal/term"
)

const banner = `       _   _        _ _   _
  __ _| |_| |_ _ __(_) |_(_) ___  _ __
 / _` + "`" + ` | __| __| '__| | __| |/ _ \| '_ \
| (_| | |_| |_| |  | | |_| | (_) | | | |
 \__,_|\__|\__|_|  |_|\__|_|\___/|_| |_|`

// bannerColor is bright magenta in the 16-color palette.
const bannerColor = lipgloss.Color("13")

// PrintBanner writes the ASCII art banner to w, in bold magenta when colors
// are enabled.
func PrintBanner(w io.Writer) {
	style := term.Renderer(w).NewStyle().Bold(true).Foreground(bannerColor)
	fmt.Fprintln(w, style.Render(banner))
}
