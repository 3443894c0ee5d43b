package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/backmassage/attrition/internal/config"
	"github.com/backmassage/attrition/internal/dataset"
	"github.com/backmassage/attrition/internal/logging"
	"github.com/backmassage/attrition/internal/naming"
)

const header = "satisfaction_level,last_evaluation,number_project,average_montly_hours,time_spend_company,Work_accident,left,promotion_last_5years,Department,salary"

// hrCSV builds n deterministic records. Every third record left; leavers
// have low satisfaction and long hours.
func hrCSV(n int) string {
	depts := []string{"sales", "IT", "hr", "support"}
	tiers := []string{"low", "medium", "high"}
	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 0; i < n; i++ {
		left := 0
		sat, hours := 0.55+0.01*float64(i%40), 150+i%30
		if i%3 == 0 {
			left = 1
			sat, hours = 0.10+0.01*float64(i%20), 250+i%20
		}
		promo := 0
		if i%11 == 0 {
			promo = 1
		}
		fmt.Fprintf(&b, "%.2f,%.2f,%d,%d,%d,%d,%d,%d,%s,%s\n",
			sat, 0.5+0.01*float64(i%50), 2+i%5, hours, 2+i%6, boolInt(i%7 == 0),
			left, promo, depts[i%len(depts)], tiers[i%len(tiers)])
	}
	return b.String()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hr.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func load(t *testing.T, body string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load(writeCSV(t, body))
	require.NoError(t, err)
	return ds
}

func testConfig(t *testing.T, input string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.InputPath = input
	cfg.OutputDir = filepath.Join(t.TempDir(), "output")
	cfg.Trees = 15
	cfg.Workers = 2
	cfg.MaxIter = 300
	return &cfg
}

// --- Exploration ---

func TestExplore_Counts(t *testing.T) {
	ds := load(t, `satisfaction_level,average_montly_hours,left,Department
0.5,150,0,sales
0.5,150,0,sales
0.1,,1,IT
0.9,200,1,
`)
	e := Explore(ds)
	assert.Equal(t, 4, e.Rows)
	assert.Equal(t, 4, e.Cols)
	assert.Equal(t, 1, e.Duplicates)

	missing := map[string]int{}
	for _, m := range e.Missing {
		missing[m.Name] = m.Count
	}
	assert.Equal(t, map[string]int{
		"satisfaction_level":   0,
		"average_montly_hours": 1,
		"left":                 0,
		"Department":           1,
	}, missing)

	require.True(t, e.HasTarget)
	require.Len(t, e.LeftCounts, 2)
	assert.Equal(t, 2, e.LeftCounts[0].Count)
	assert.Equal(t, 0.5, e.LeftCounts[1].Proportion)
	assert.Contains(t, e.Numeric, "satisfaction_level")
	assert.Len(t, e.Summaries, len(e.Numeric))
}

func TestExploreReport_Sheets(t *testing.T) {
	r := Explore(load(t, hrCSV(12))).Report("hr.csv")
	var names []string
	for _, tb := range r.Tables {
		names = append(names, tb.Name)
	}
	want := []string{"dataset_shape", "column_dtypes", "missing_values", "duplicate_rows",
		"describe_numeric", "left_distribution", "left_proportion"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("sheets (-want +got):\n%s", diff)
	}
	shape := r.Table("dataset_shape")
	assert.Equal(t, []interface{}{12, 10}, shape.Rows[0])
	// Left values are integral and written as numbers.
	assert.Equal(t, int64(0), r.Table("left_distribution").Rows[0][0])
	assert.Equal(t, 8, r.Table("describe_numeric").Len())
}

func TestExplore_NoTarget(t *testing.T) {
	e := Explore(load(t, "a,b\n1,x\n2,y\n"))
	assert.False(t, e.HasTarget)
	r := e.Report("x.csv")
	assert.Equal(t, 0, r.Table("left_distribution").Len())
	assert.Equal(t, []string{"left_value", "proportion"}, r.Table("left_proportion").Header)
}

// --- Correlation ---

func TestCorrelate_Linear(t *testing.T) {
	tests := []struct {
		name string
		body string
		want float64
	}{
		{"increasing", "satisfaction_level,average_montly_hours,left\n0.2,100,1\n0.8,200,1\n0.2,100,0\n0.8,200,0\n", 1},
		{"decreasing", "satisfaction_level,average_montly_hours,left\n0.2,200,1\n0.8,100,1\n0.2,200,0\n0.8,100,0\n", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Correlate(load(t, tt.body))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, c.All, 1e-12)
			assert.InDelta(t, tt.want, c.Left, 1e-12)
			assert.Equal(t, 2, c.Leavers)
		})
	}
}

func TestCorrelate_QuartileMeans(t *testing.T) {
	c, err := Correlate(load(t, "satisfaction_level,average_montly_hours,left\n0.2,100,1\n0.8,200,1\n0.5,300,0\n"))
	require.NoError(t, err)
	want := []QuartileMean{{Quartile: 0, Hours: 100}, {Quartile: 3, Hours: 200}}
	if diff := cmp.Diff(want, c.Quartiles); diff != "" {
		t.Errorf("quartiles (-want +got):\n%s", diff)
	}
}

func TestCorrelate_SingleLeaverIsNA(t *testing.T) {
	c, err := Correlate(load(t, "satisfaction_level,average_montly_hours,left\n0.2,100,1\n0.8,200,0\n0.5,150,0\n"))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(c.Left))
	summary := c.Report("x.csv").Table("summary")
	last := summary.Rows[len(summary.Rows)-1]
	assert.Equal(t, []interface{}{"correlation_left", "n/a"}, last)

	// A single leaver cannot be split into quartiles.
	assert.Empty(t, c.Quartiles)
	assert.Equal(t, 0, c.Report("x.csv").Table("quartile_means").Len())
}

func TestCorrelate_MissingColumn(t *testing.T) {
	_, err := Correlate(load(t, "satisfaction_level,left\n0.2,1\n0.3,0\n"))
	assert.True(t, errors.Is(err, dataset.ErrMissingColumn), "got %v", err)
}

func TestCorrelationCharts(t *testing.T) {
	c, err := Correlate(load(t, hrCSV(30)))
	require.NoError(t, err)
	dir := t.TempDir()
	images, err := c.Charts(dir, 10)
	require.NoError(t, err)
	require.Len(t, images, 2)
	for _, img := range images {
		assert.FileExists(t, img)
	}
}

// --- Factors ---

func TestAnalyzeFactors_SingleDepartmentAllLeft(t *testing.T) {
	body := "satisfaction_level,left,Department,salary,promotion_last_5years\n" +
		strings.Repeat("0.3,1,sales,low,0\n", 5)
	f, err := AnalyzeFactors(load(t, body))
	require.NoError(t, err)
	require.Len(t, f.Department, 1)
	assert.Equal(t, []string{"sales"}, f.Department[0].Keys)
	assert.Equal(t, 1.0, f.Department[0].Mean)
	require.Len(t, f.DepartmentSalary, 1)
	assert.Equal(t, 1.0, f.DepartmentSalary[0].Mean)
}

func TestAnalyzeFactors_Ordering(t *testing.T) {
	body := `left,Department,salary
1,sales,high
0,sales,medium
1,IT,low
1,IT,medium
0,hr,high
1,hr,low
`
	f, err := AnalyzeFactors(load(t, body))
	require.NoError(t, err)

	var depts []string
	for _, g := range f.Department {
		depts = append(depts, g.Keys[0])
	}
	assert.Equal(t, []string{"IT", "hr", "sales"}, depts)

	// Every tier has rate 0.5 or 1; equal rates fall back to tier order.
	var tiers []string
	for _, g := range f.Salary {
		tiers = append(tiers, g.Keys[0])
	}
	assert.Equal(t, []string{"low", "medium", "high"}, tiers)
}

func TestAnalyzeFactors_OptionalColumnsAbsent(t *testing.T) {
	f, err := AnalyzeFactors(load(t, "left,satisfaction_level\n1,0.2\n0,0.8\n"))
	require.NoError(t, err)

	r := f.Report("x.csv")
	for _, name := range []string{"department_attrition", "salary_attrition", "promo_attrition", "dept_salary_attrition"} {
		assert.Equal(t, 0, r.Table(name).Len(), name)
	}
	assert.Equal(t, []string{"Department", "salary", "attrition_rate"}, r.Table("dept_salary_attrition").Header)
	assert.Equal(t, 2, r.Table("satisfaction_by_left").Len())

	images, skipped, err := f.Charts(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, images)
	assert.Equal(t, []string{"Department", "salary"}, skipped)
}

func TestFactorsReport_IntegerKeys(t *testing.T) {
	f, err := AnalyzeFactors(load(t, "left,promotion_last_5years\n1,0\n0,1\n1,0\n"))
	require.NoError(t, err)
	promo := f.Report("x.csv").Table("promo_attrition")
	require.Equal(t, 2, promo.Len())
	assert.Equal(t, int64(0), promo.Rows[0][0])
	assert.Equal(t, 1.0, promo.Rows[0][1])
}

func TestKeyCell(t *testing.T) {
	assert.Equal(t, int64(3), keyCell("3"))
	assert.Equal(t, 0.5, keyCell("0.5"))
	assert.Equal(t, "sales", keyCell("sales"))
}

// --- Classification ---

func TestClassify_Deterministic(t *testing.T) {
	path := writeCSV(t, hrCSV(60))
	cfg := testConfig(t, path)
	ds, err := dataset.Load(path)
	require.NoError(t, err)

	a, err := Classify(context.Background(), ds, cfg)
	require.NoError(t, err)
	cfg.Workers = 1
	b, err := Classify(context.Background(), ds, cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Logistic.Confusion, b.Logistic.Confusion)
	assert.Equal(t, a.Forest.Confusion, b.Forest.Confusion)
	assert.Equal(t, a.Logistic.Accuracy, b.Logistic.Accuracy)
	assert.Equal(t, a.Forest.Accuracy, b.Forest.Accuracy)
	assert.Equal(t, a.Importances, b.Importances)
}

func TestClassify_ReportsLogisticConvergence(t *testing.T) {
	path := writeCSV(t, hrCSV(60))
	cfg := testConfig(t, path)
	cfg.MaxIter = 1
	ds, err := dataset.Load(path)
	require.NoError(t, err)

	c, err := Classify(context.Background(), ds, cfg)
	require.NoError(t, err)
	assert.False(t, c.LogisticConverged)
	assert.Equal(t, 1, c.LogisticIterations)
}

func TestClassify_ConfusionMatrixTotals(t *testing.T) {
	path := writeCSV(t, hrCSV(60))
	cfg := testConfig(t, path)
	ds, err := dataset.Load(path)
	require.NoError(t, err)
	c, err := Classify(context.Background(), ds, cfg)
	require.NoError(t, err)

	assert.Len(t, c.Split.Test, 12)
	y, err := ds.Labels()
	require.NoError(t, err)
	actual := [2]int{}
	for _, i := range c.Split.Test {
		actual[y[i]]++
	}

	for _, s := range []Score{c.Logistic, c.Forest} {
		sum := 0
		for r, row := range s.Confusion {
			assert.Equal(t, actual[r], row[0]+row[1], "%s row %d", s.Model, r)
			sum += row[0] + row[1]
		}
		assert.Equal(t, len(c.Split.Test), sum, s.Model)
	}

	total := 0.0
	for _, imp := range c.Importances {
		assert.GreaterOrEqual(t, imp.Value, 0.0)
		total += imp.Value
	}
	// Fewer features than the top limit, so every importance is present.
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestClassify_EncodesCategories(t *testing.T) {
	path := writeCSV(t, hrCSV(30))
	ds, err := dataset.Load(path)
	require.NoError(t, err)
	c, err := Classify(context.Background(), ds, testConfig(t, path))
	require.NoError(t, err)

	// IT sorts first among departments and high among tiers; both are dropped.
	assert.Contains(t, c.Features.Names, "Department_sales")
	assert.Contains(t, c.Features.Names, "salary_medium")
	assert.NotContains(t, c.Features.Names, "Department_IT")
	assert.NotContains(t, c.Features.Names, "salary_high")
	assert.NotContains(t, c.Features.Names, "left")

	r := c.Report(path)
	rep := r.Table("logistic_report")
	require.Equal(t, 5, rep.Len())
	assert.Equal(t, "accuracy", rep.Rows[2][0])
	assert.Nil(t, rep.Rows[2][1])
	assert.Equal(t, len(c.Split.Test), rep.Rows[2][4])
	assert.Equal(t, 4, r.Table("confusion_matrices").Len())
}

func TestClassify_BadTarget(t *testing.T) {
	path := writeCSV(t, "x,left\n1,0\n2,2\n")
	ds, err := dataset.Load(path)
	require.NoError(t, err)
	_, err = Classify(context.Background(), ds, testConfig(t, path))
	assert.True(t, errors.Is(err, dataset.ErrMalformedInput), "got %v", err)
}

// --- Runner ---

func TestRun_AllJobs(t *testing.T) {
	cfg := testConfig(t, writeCSV(t, hrCSV(60)))
	cfg.SQLitePath = filepath.Join(t.TempDir(), "reports.db")

	stats := Run(context.Background(), cfg, logging.NewNop(), Jobs()...)
	assert.True(t, stats.OK(), "%+v", stats)
	assert.Equal(t, 4, stats.Workbooks)
	assert.Equal(t, 6, stats.Images)
	assert.Positive(t, stats.Bytes)

	for _, wb := range []string{naming.ExploreWorkbook, naming.CorrelateWorkbook, naming.FactorsWorkbook, naming.ModelWorkbook} {
		assert.FileExists(t, naming.WorkbookPath(cfg.OutputDir, wb))
	}
	for _, img := range []string{naming.ScatterImage, naming.DistributionImage, naming.DeptBarImage,
		naming.SalaryBarImage, naming.LogisticCMImage, naming.ForestCMImage} {
		assert.FileExists(t, naming.ImagePath(cfg.OutputDir, img))
	}

	db, err := sql.Open("sqlite", cfg.SQLitePath)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "factors_department_attrition"`).Scan(&n))
	assert.Equal(t, 4, n)
}

func TestRun_FirstFailureStops(t *testing.T) {
	cfg := testConfig(t, writeCSV(t, "left,Department\n1,sales\n0,IT\n"))
	stats := Run(context.Background(), cfg, logging.NewNop(), Jobs()...)

	assert.False(t, stats.OK())
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.FileExists(t, naming.WorkbookPath(cfg.OutputDir, naming.ExploreWorkbook))
	assert.NoFileExists(t, naming.WorkbookPath(cfg.OutputDir, naming.FactorsWorkbook))
}

func TestRun_Canceled(t *testing.T) {
	cfg := testConfig(t, writeCSV(t, hrCSV(12)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := Run(ctx, cfg, logging.NewNop(), Jobs()...)
	assert.Equal(t, 0, stats.Completed)
	assert.False(t, stats.OK())
}

func TestLookup(t *testing.T) {
	for _, name := range []string{"explore", "correlate", "factors", "model"} {
		j, ok := Lookup(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, j.Name)
	}
	_, ok := Lookup("all")
	assert.False(t, ok)
}

func TestRequirements(t *testing.T) {
	reqs := Requirements(Jobs())
	require.Len(t, reqs, 4)
	assert.Equal(t, "correlate", reqs[1].Job)
	assert.Equal(t, []dataset.Field{dataset.Satisfaction, dataset.Hours, dataset.Left}, reqs[1].Required)
	assert.Contains(t, reqs[2].Optional, dataset.Department)
}
