// Package config holds runtime configuration: defaults, flag/environment/file
// binding, and validation. With no flags a run uses seed 42, a 20% stratified
// test split and a 200-tree forest.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultInputCandidates are tried in order when no input path is given.
var DefaultInputCandidates = []string{
	filepath.Join("dataset", "HR_comma_sep.csv"),
	filepath.Join("data", "HR_comma_sep.csv"),
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overridden by [Load], and passed by pointer to the jobs.
type Config struct {
	// Paths.
	InputPath  string // Default: first existing entry of DefaultInputCandidates.
	OutputDir  string // Default: "output".
	SQLitePath string // Optional SQLite export of every report table.
	ConfigFile string // Optional YAML config file.

	// Classification.
	Seed        int64   // Default: 42.
	TestSize    float64 // Default: 0.20.
	Stratify    bool    // Default: true. Cleared by --no-stratify.
	Trees       int     // Default: 200.
	MaxFeatures int     // Default: 0 (sqrt of the feature count).
	MaxIter     int     // Default: 1000.
	TopFeatures int     // Default: 20.
	Workers     int     // Default: runtime.NumCPU().

	// Charts.
	HistBins int // Default: 20.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path (appended).
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		OutputDir:   "output",
		Seed:        42,
		TestSize:    0.20,
		Stratify:    true,
		Trees:       200,
		MaxFeatures: 0,
		MaxIter:     1000,
		TopFeatures: 20,
		Workers:     runtime.NumCPU(),
		HistBins:    20,
		ColorMode:   ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// ResolveInput fills InputPath from DefaultInputCandidates when it is empty.
// The first candidate that exists wins; if none exists the first candidate is
// kept so the load error names a sensible path.
func (c *Config) ResolveInput() {
	if c.InputPath != "" {
		return
	}
	for _, p := range DefaultInputCandidates {
		if _, err := os.Stat(p); err == nil {
			c.InputPath = p
			return
		}
	}
	c.InputPath = DefaultInputCandidates[0]
}

// Validate checks enum and numeric fields and requires non-empty paths.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return errors.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}
	if !(c.TestSize > 0 && c.TestSize < 1) {
		return errors.Errorf("test size must be in (0, 1) (got %g)", c.TestSize)
	}
	if err := positive("trees", c.Trees); err != nil {
		return err
	}
	if c.MaxFeatures < 0 {
		return errors.Errorf("max features must not be negative (got %d)", c.MaxFeatures)
	}
	if err := positive("max iterations", c.MaxIter); err != nil {
		return err
	}
	if err := positive("top features", c.TopFeatures); err != nil {
		return err
	}
	if err := positive("workers", c.Workers); err != nil {
		return err
	}
	if err := positive("histogram bins", c.HistBins); err != nil {
		return err
	}
	if c.InputPath == "" {
		return errors.New("input path must not be empty")
	}
	if c.OutputDir == "" {
		return errors.New("output directory must not be empty")
	}
	return nil
}

func positive(name string, n int) error {
	if n < 1 {
		return errors.Errorf("%s must be at least 1 (got %d)", name, n)
	}
	return nil
}
