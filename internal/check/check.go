// Package check provides the preflight diagnostics (check mode) and the
// pre-run validation of the output location (CheckOutput).
package check

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/backmassage/attrition/internal/config"
	"github.com/backmassage/attrition/internal/dataset"
	"github.com/backmassage/attrition/internal/display"
	"github.com/backmassage/attrition/internal/naming"
)

// ErrNotWritable is returned by CheckOutput when an output directory cannot
// be created or written to.
var ErrNotWritable = errors.New("output location not writable")

// Logger is the logging interface RunCheck needs. *logging.Logger satisfies it.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

// Requirement lists the columns one job needs. A missing required column
// fails the job; a missing optional one only drops part of its output.
type Requirement struct {
	Job      string
	Required []dataset.Field
	Optional []dataset.Field
}

// RunCheck loads the input, reports which columns every job can use and
// verifies the output directories. It returns false if any job would fail.
func RunCheck(cfg *config.Config, reqs []Requirement, log Logger) bool {
	log.Info("=== Preflight Check ===")
	ok := true

	ds, err := dataset.Load(cfg.InputPath)
	if err != nil {
		log.Error("Input: %v", err)
		ok = false
	} else {
		log.Success("Input: %s (%d rows, %d columns)", ds.Path, ds.Nrow(), ds.Ncol())
		for _, c := range ds.Dtypes() {
			log.Debug("  %s: %s", c.Name, c.Dtype)
		}
		for _, r := range reqs {
			if !checkColumns(ds, r, log) {
				ok = false
			}
		}
	}

	if err := CheckOutput(cfg); err != nil {
		log.Error("Output: %v", err)
		ok = false
	} else {
		log.Success("Output: %s is writable", cfg.OutputDir)
		log.Info("  %s", PreviousOutputNote(cfg))
	}
	return ok
}

// checkColumns logs the column status of one job.
func checkColumns(ds *dataset.Dataset, r Requirement, log Logger) bool {
	if err := ds.Require(r.Required...); err != nil {
		log.Error("%s: %v", r.Job, err)
		return false
	}
	for _, f := range r.Optional {
		if !ds.Has(f) {
			log.Warn("%s: optional column %s not found, its output will be empty", r.Job, f)
		}
	}
	log.Success("%s: required columns present", r.Job)
	return true
}

// CheckOutput creates the output subdirectories and the SQLite parent
// directory when configured, and proves each writable with a probe file.
func CheckOutput(cfg *config.Config) error {
	dirs := naming.Dirs(cfg.OutputDir)
	if cfg.SQLitePath != "" {
		dirs = append(dirs, filepath.Dir(cfg.SQLitePath))
	}
	for _, d := range dirs {
		if err := probeDir(d); err != nil {
			return errors.Wrapf(ErrNotWritable, "%s: %v", d, err)
		}
	}
	return nil
}

// probeDir creates dir if needed, then creates and removes a temporary file in it.
func probeDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".attrition-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}

// PreviousOutputNote describes the existing workbooks a run will overwrite.
func PreviousOutputNote(cfg *config.Config) string {
	var total int64
	entries, err := os.ReadDir(filepath.Join(cfg.OutputDir, naming.XLSXDir))
	if err != nil {
		return "no previous output"
	}
	for _, e := range entries {
		if info, err := e.Info(); err == nil && !e.IsDir() {
			total += info.Size()
		}
	}
	return display.FormatBytes(total) + " of previous workbooks will be overwritten"
}
