package pipeline

import (
	"context"

	"github.com/backmassage/attrition/internal/check"
	"github.com/backmassage/attrition/internal/config"
	"github.com/backmassage/attrition/internal/dataset"
	"github.com/backmassage/attrition/internal/logging"
	"github.com/backmassage/attrition/internal/report"
)

// Env is what a job receives: the loaded dataset, the run config and the logger.
type Env struct {
	Cfg  *config.Config
	Log  *logging.Logger
	Data *dataset.Dataset
}

// Result is a job's output before it is written: the workbook tables and the
// images the job already rendered.
type Result struct {
	Report *report.Report
	Images []string
}

// Job is one independent report job.
type Job struct {
	Name     string // Subcommand name.
	Title    string // Human label for logs.
	Workbook string // File name under xlsx_output.
	Required []dataset.Field
	Optional []dataset.Field

	run func(ctx context.Context, env *Env) (*Result, error)
}

// Jobs returns every job in run order.
func Jobs() []Job {
	return []Job{exploreJob, correlateJob, factorsJob, modelJob}
}

// Lookup returns the job called name.
func Lookup(name string) (Job, bool) {
	for _, j := range Jobs() {
		if j.Name == name {
			return j, true
		}
	}
	return Job{}, false
}

// Requirements lists the column requirements of jobs for the preflight check.
func Requirements(jobs []Job) []check.Requirement {
	out := make([]check.Requirement, len(jobs))
	for i, j := range jobs {
		out[i] = check.Requirement{Job: j.Name, Required: j.Required, Optional: j.Optional}
	}
	return out
}
