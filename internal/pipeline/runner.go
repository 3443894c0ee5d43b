package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/backmassage/attrition/internal/check"
	"github.com/backmassage/attrition/internal/config"
	"github.com/backmassage/attrition/internal/dataset"
	"github.com/backmassage/attrition/internal/display"
	"github.com/backmassage/attrition/internal/logging"
	"github.com/backmassage/attrition/internal/naming"
	"github.com/backmassage/attrition/internal/report"
)

// Run is the top-level entry point. It verifies the output location, runs
// jobs in order and returns aggregate stats. Any job failure is fatal: the
// remaining jobs are not run.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, jobs ...Job) RunStats {
	stats := RunStats{Total: len(jobs)}
	logRunHeader(cfg, log, &stats)

	if err := check.CheckOutput(cfg); err != nil {
		log.Error("%v", err)
		stats.Failed++
		return stats
	}

	for i, j := range jobs {
		stats.Current = i + 1
		if ctx.Err() != nil {
			log.Warn("Interrupted")
			break
		}
		if err := runJob(ctx, cfg, log, j, &stats); err != nil {
			log.Error("%s failed: %v", j.Title, err)
			log.Debug("%+v", err)
			stats.Failed++
			break
		}
		stats.Completed++
	}

	logSummary(log, &stats)
	return stats
}

// runJob handles one job: load → compute → write workbook → export tables.
func runJob(ctx context.Context, cfg *config.Config, log *logging.Logger, j Job, stats *RunStats) error {
	log.Info("[%d/%d] %s", stats.Current, stats.Total, j.Title)
	start := time.Now()

	ds, err := dataset.Load(cfg.InputPath)
	if err != nil {
		return err
	}
	log.Debug("  Loaded %s: %d rows, %d columns", ds.Path, ds.Nrow(), ds.Ncol())
	if err := ds.Require(j.Required...); err != nil {
		return err
	}
	for _, f := range j.Optional {
		if !ds.Has(f) {
			log.Warn("  Column %s not found, its sheet will be empty", f)
		}
	}

	res, err := j.run(ctx, &Env{Cfg: cfg, Log: log, Data: ds})
	if err != nil {
		return err
	}
	for _, img := range res.Images {
		stats.Images++
		stats.Bytes += fileSize(img)
		log.Info("  Image: %s", img)
	}

	path := naming.WorkbookPath(cfg.OutputDir, j.Workbook)
	if err := report.WriteXLSX(path, res.Report); err != nil {
		return err
	}
	stats.Workbooks++
	stats.Tables += len(res.Report.Tables)
	size := fileSize(path)
	stats.Bytes += size
	log.Info("  Workbook: %s (%d sheets, %s)", path, len(res.Report.Tables)+1, display.FormatBytes(size))

	if cfg.SQLitePath != "" {
		if err := report.WriteSQLite(ctx, cfg.SQLitePath, res.Report); err != nil {
			return errors.Wrap(err, "sqlite export")
		}
		log.Info("  SQLite: %d tables in %s", len(res.Report.Tables)+1, cfg.SQLitePath)
	}

	log.Success("%s done in %s", j.Title, time.Since(start).Round(time.Millisecond))
	return nil
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// --- Logging helpers ---

func logRunHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("Input:  %s", cfg.InputPath)
	log.Info("Output: %s", cfg.OutputDir)
	if cfg.SQLitePath != "" {
		log.Info("SQLite: %s", cfg.SQLitePath)
	}
	log.Info("Jobs:   %d", stats.Total)
	log.Debug("Seed %d, test size %g, stratify %v, %d trees, %d workers",
		cfg.Seed, cfg.TestSize, cfg.Stratify, cfg.Trees, cfg.Workers)
}

func logSummary(log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d completed, %d failed, %d not run",
		stats.Completed, stats.Failed, stats.Total-stats.Completed-stats.Failed)
	log.Info("Summary report:")
	log.Info("  Workbooks written: %d (%d sheets)", stats.Workbooks, stats.Tables)
	log.Info("  Images written: %d", stats.Images)
	msg := fmt.Sprintf("  Total output: %s", display.FormatBytes(stats.Bytes))
	if stats.OK() {
		log.Success("%s", msg)
	} else {
		log.Warn("%s", msg)
	}
}
