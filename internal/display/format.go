// Package display formats values for console and spreadsheet output and
// prints the startup banner.
package display

import (
	"fmt"
	"math"
)

// FormatBytes returns a human-readable size (B, KiB, MiB, GiB, TiB, PiB).
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	if exp >= len(suffixes) {
		exp = len(suffixes) - 1
		div = 1
		for i := 0; i <= exp; i++ {
			div *= unit
		}
	}
	return fmt.Sprintf("%.1f %s", float64(bytes)/float64(div), suffixes[exp])
}

// FormatFloat4 renders v with four decimals, or missing when v is NaN.
func FormatFloat4(v float64, missing string) string {
	if math.IsNaN(v) {
		return missing
	}
	return fmt.Sprintf("%.4f", v)
}

// FormatPercent renders a 0-1 rate as a percentage with one decimal (e.g. "23.8%").
func FormatPercent(rate float64) string {
	if math.IsNaN(rate) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", rate*100)
}
