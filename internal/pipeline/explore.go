package pipeline

import (
	"context"
	"math"

	"github.com/backmassage/attrition/internal/dataset"
	"github.com/backmassage/attrition/internal/naming"
	"github.com/backmassage/attrition/internal/report"
	"github.com/backmassage/attrition/internal/stats"
)

const exploreName = "explore"

var exploreJob = Job{
	Name:     exploreName,
	Title:    "Q1 data exploration",
	Workbook: naming.ExploreWorkbook,
	Optional: []dataset.Field{dataset.Left},
	run:      runExplore,
}

// Exploration is the first look at the dataset.
type Exploration struct {
	Rows       int
	Cols       int
	Dtypes     []dataset.ColumnInfo
	Missing    []dataset.ColumnCount
	Duplicates int
	Numeric    []string
	Summaries  []stats.Summary // One per Numeric column.
	HasTarget  bool
	LeftCounts []stats.ValueCount
}

// Explore computes the exploration tables. It needs no particular column.
func Explore(ds *dataset.Dataset) *Exploration {
	e := &Exploration{
		Rows:       ds.Nrow(),
		Cols:       ds.Ncol(),
		Dtypes:     ds.Dtypes(),
		Missing:    ds.Missing(),
		Duplicates: ds.DuplicateRows(),
		Numeric:    ds.NumericColumns(),
	}
	for _, c := range e.Numeric {
		e.Summaries = append(e.Summaries, stats.Describe(ds.ColumnFloats(c)))
	}
	if left, err := ds.Floats(dataset.Left); err == nil {
		e.HasTarget = true
		e.LeftCounts = stats.ValueCounts(left)
	}
	return e
}

// Report lays the exploration out as sheets.
func (e *Exploration) Report(source string) *report.Report {
	r := report.New(exploreName, source)

	r.Add(report.NewTable("dataset_shape", "rows", "columns")).Append(e.Rows, e.Cols)

	dt := r.Add(report.NewTable("column_dtypes", "column", "dtype"))
	for _, c := range e.Dtypes {
		dt.Append(c.Name, c.Dtype)
	}

	mv := r.Add(report.NewTable("missing_values", "column", "missing_count"))
	for _, c := range e.Missing {
		mv.Append(c.Name, c.Count)
	}

	r.Add(report.NewTable("duplicate_rows", "duplicate_rows")).Append(e.Duplicates)

	desc := r.Add(report.NewTable("describe_numeric", append([]string{"stat"}, e.Numeric...)...))
	for i, label := range stats.SummaryLabels {
		row := []interface{}{label}
		for _, s := range e.Summaries {
			row = append(row, s.Values()[i])
		}
		desc.Append(row...)
	}

	dist := r.Add(report.NewTable("left_distribution", "left_value", "count"))
	prop := r.Add(report.NewTable("left_proportion", "left_value", "proportion"))
	for _, vc := range e.LeftCounts {
		dist.Append(number(vc.Value), vc.Count)
		prop.Append(number(vc.Value), vc.Proportion)
	}
	return r
}

func runExplore(_ context.Context, env *Env) (*Result, error) {
	e := Explore(env.Data)
	env.Log.Info("  %d rows, %d columns, %d duplicate rows", e.Rows, e.Cols, e.Duplicates)
	return &Result{Report: e.Report(env.Data.Path)}, nil
}

// number returns v as an int64 cell when it is integral.
func number(v float64) interface{} {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int64(v)
	}
	return v
}
