package main

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/attrition/internal/config"
)

func TestRootCmd_Subcommands(t *testing.T) {
	root, err := rootCmd(&app{cfg: config.DefaultConfig(), v: viper.New()})
	require.NoError(t, err)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	for _, want := range []string{"all", "check", "correlate", "explore", "factors", "model"} {
		assert.Contains(t, names, want)
	}
	for _, flag := range []string{"input", "output", "sqlite", "seed", "test-size", "trees", "workers"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRun_CheckMissingInput(t *testing.T) {
	dir := t.TempDir()
	code := run([]string{"check", "--color", "never",
		"-i", filepath.Join(dir, "missing.csv"), "-o", filepath.Join(dir, "out")})
	assert.Equal(t, 1, code)
}

func TestRun_Explore(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "hr.csv")
	require.NoError(t, os.WriteFile(input, []byte("satisfaction_level,left\n0.4,1\n0.9,0\n"), 0o644))

	out := filepath.Join(dir, "out")
	code := run([]string{"explore", "--color", "never", "-i", input, "-o", out})
	assert.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(out, "xlsx_output", "q1_data_exploration.xlsx"))
}

func TestRun_InvalidFlag(t *testing.T) {
	assert.Equal(t, 1, run([]string{"model", "--test-size", "1.5", "--color", "never"}))
}
