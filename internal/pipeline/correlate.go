package pipeline

import (
	"context"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/backmassage/attrition/internal/chart"
	"github.com/backmassage/attrition/internal/dataset"
	"github.com/backmassage/attrition/internal/display"
	"github.com/backmassage/attrition/internal/naming"
	"github.com/backmassage/attrition/internal/report"
	"github.com/backmassage/attrition/internal/stats"
)

const correlateName = "correlate"

// correlateFields are the columns the correlation job reads.
var correlateFields = []dataset.Field{dataset.Satisfaction, dataset.Hours, dataset.Left}

var correlateJob = Job{
	Name:     correlateName,
	Title:    "Q2 satisfaction vs monthly hours",
	Workbook: naming.CorrelateWorkbook,
	Required: correlateFields,
	run:      runCorrelate,
}

// QuartileMean is the mean monthly hours of leavers in one satisfaction quartile.
type QuartileMean struct {
	Quartile int
	Hours    float64
}

// Correlation relates satisfaction to monthly hours.
type Correlation struct {
	Rows      int
	All       float64 // Pearson r over every record.
	Left      float64 // Pearson r among leavers; NaN with fewer than two.
	Leavers   int
	Quartiles []QuartileMean
	Dtypes    []dataset.ColumnInfo

	satisfaction []float64
	hours        []float64
	left         []float64
}

// Correlate computes the correlation tables. It needs satisfaction, hours and
// the target.
func Correlate(ds *dataset.Dataset) (*Correlation, error) {
	if err := ds.Require(correlateFields...); err != nil {
		return nil, err
	}
	sat, _ := ds.Floats(dataset.Satisfaction)
	hours, _ := ds.Floats(dataset.Hours)
	left, _ := ds.Floats(dataset.Left)

	c := &Correlation{
		Rows:         ds.Nrow(),
		All:          stats.Pearson(sat, hours),
		Dtypes:       ds.Dtypes(),
		satisfaction: sat,
		hours:        hours,
		left:         left,
	}

	leftSat, leftHours := subset(sat, left, 1), subset(hours, left, 1)
	c.Leavers = len(leftSat)
	c.Left = stats.Pearson(leftSat, leftHours)
	c.Quartiles = quartileMeans(leftSat, leftHours)
	return c, nil
}

// quartileMeans bins sat into quartiles and averages hours per bin. Bins left
// empty after dropping duplicate edges are skipped.
func quartileMeans(sat, hours []float64) []QuartileMean {
	if len(sat) == 0 {
		return nil
	}
	bins, n := stats.QuantileBins(sat, 4)
	groups := make([][]float64, n)
	for i, b := range bins {
		if b >= 0 {
			groups[b] = append(groups[b], hours[i])
		}
	}
	var out []QuartileMean
	for q, g := range groups {
		if len(g) == 0 {
			continue
		}
		out = append(out, QuartileMean{Quartile: q, Hours: stats.Mean(g)})
	}
	return out
}

// subset returns the values whose label equals want.
func subset(values, labels []float64, want float64) []float64 {
	var out []float64
	for i, l := range labels {
		if l == want {
			out = append(out, values[i])
		}
	}
	return out
}

// Report lays the correlation out as sheets.
func (c *Correlation) Report(source string) *report.Report {
	r := report.New(correlateName, source)

	s := r.Add(report.NewTable("summary", "metric", "value"))
	s.Append("data_file", source)
	s.Append("total_rows", c.Rows)
	used := make([]string, len(correlateFields))
	for i, f := range correlateFields {
		used[i] = string(f)
	}
	s.Append("used_columns", strings.Join(used, ", "))
	s.Append("correlation_all", display.FormatFloat4(c.All, "nan"))
	s.Append("correlation_left", display.FormatFloat4(c.Left, "n/a"))

	dt := r.Add(report.NewTable("column_dtypes", "column", "dtype"))
	for _, col := range c.Dtypes {
		dt.Append(col.Name, col.Dtype)
	}

	q := r.Add(report.NewTable("quartile_means", "quartile", "avg_monthly_hours"))
	for _, qm := range c.Quartiles {
		q.Append(qm.Quartile, qm.Hours)
	}
	return r
}

// Charts renders the scatter and the satisfaction distributions.
func (c *Correlation) Charts(outputDir string, bins int) ([]string, error) {
	scatter := naming.ImagePath(outputDir, naming.ScatterImage)
	err := chart.Scatter(scatter, figure("Satisfaction vs Average Monthly Hours",
		"Satisfaction Level", "Average Monthly Hours", 6, 4, 300),
		chart.Series{Name: "Stayed", X: subset(c.satisfaction, c.left, 0), Y: subset(c.hours, c.left, 0)},
		chart.Series{Name: "Left", X: subset(c.satisfaction, c.left, 1), Y: subset(c.hours, c.left, 1)},
	)
	if err != nil {
		return nil, err
	}

	dist := naming.ImagePath(outputDir, naming.DistributionImage)
	err = chart.Histogram(dist, figure("Satisfaction Level: Left vs Stayed",
		"Satisfaction Level", "Density", 6, 4, 300), bins,
		chart.Sample{Name: "Stayed", Values: subset(c.satisfaction, c.left, 0)},
		chart.Sample{Name: "Left", Values: subset(c.satisfaction, c.left, 1)},
	)
	if err != nil {
		return nil, err
	}
	return []string{scatter, dist}, nil
}

func runCorrelate(_ context.Context, env *Env) (*Result, error) {
	c, err := Correlate(env.Data)
	if err != nil {
		return nil, err
	}
	env.Log.Info("  Correlation: all %s, leavers %s (%d leavers)",
		display.FormatFloat4(c.All, "nan"), display.FormatFloat4(c.Left, "n/a"), c.Leavers)
	images, err := c.Charts(env.Cfg.OutputDir, env.Cfg.HistBins)
	if err != nil {
		return nil, err
	}
	return &Result{Report: c.Report(env.Data.Path), Images: images}, nil
}

// figure sizes a chart in inches at dpi.
func figure(title, xlabel, ylabel string, width, height float64, dpi int) chart.Figure {
	return chart.Figure{
		Title:  title,
		XLabel: xlabel,
		YLabel: ylabel,
		Width:  vg.Length(width) * vg.Inch,
		Height: vg.Length(height) * vg.Inch,
		DPI:    dpi,
	}
}
