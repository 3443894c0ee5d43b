package pipeline

import (
	"context"
	"sort"
	"strconv"

	"github.com/backmassage/attrition/internal/chart"
	"github.com/backmassage/attrition/internal/dataset"
	"github.com/backmassage/attrition/internal/display"
	"github.com/backmassage/attrition/internal/naming"
	"github.com/backmassage/attrition/internal/report"
	"github.com/backmassage/attrition/internal/stats"
)

const factorsName = "factors"

var factorsJob = Job{
	Name:     factorsName,
	Title:    "Q3 factor analysis",
	Workbook: naming.FactorsWorkbook,
	Required: []dataset.Field{dataset.Left},
	Optional: []dataset.Field{dataset.Satisfaction, dataset.Department, dataset.Salary, dataset.Promotion},
	run:      runFactors,
}

// Factors holds the attrition rate of each group. A group list is nil when
// its column is absent.
type Factors struct {
	SatisfactionByLeft []stats.Group
	Department         []stats.Group
	Salary             []stats.Group
	Promotion          []stats.Group
	DepartmentSalary   []stats.Group

	// Headers actually used, for sheet headers.
	deptCol, salaryCol, promoCol string
}

// AnalyzeFactors groups the target by department, salary tier and promotion.
func AnalyzeFactors(ds *dataset.Dataset) (*Factors, error) {
	left, err := ds.Floats(dataset.Left)
	if err != nil {
		return nil, err
	}
	leftKeys, _ := ds.Strings(dataset.Left)

	f := &Factors{
		deptCol:   string(dataset.Department),
		salaryCol: string(dataset.Salary),
		promoCol:  string(dataset.Promotion),
	}

	if sat, err := ds.Floats(dataset.Satisfaction); err == nil {
		f.SatisfactionByLeft = stats.GroupMean(sat, leftKeys)
	}

	dept, deptErr := ds.Strings(dataset.Department)
	if deptErr == nil {
		f.deptCol, _ = ds.Column(dataset.Department)
		f.Department = stats.GroupMean(left, dept)
		stats.SortByMeanDesc(f.Department)
	}

	salary, salErr := ds.Strings(dataset.Salary)
	if salErr == nil {
		f.salaryCol, _ = ds.Column(dataset.Salary)
		f.Salary = stats.GroupMean(left, salary)
		sort.SliceStable(f.Salary, func(i, j int) bool {
			return tierRank(f.Salary[i].Keys[0]) < tierRank(f.Salary[j].Keys[0])
		})
		stats.SortByMeanDesc(f.Salary)
	}

	if promo, err := ds.Strings(dataset.Promotion); err == nil {
		f.promoCol, _ = ds.Column(dataset.Promotion)
		f.Promotion = stats.GroupMean(left, promo)
	}

	if deptErr == nil && salErr == nil {
		f.DepartmentSalary = stats.GroupMean(left, dept, salary)
		stats.SortByMeanDesc(f.DepartmentSalary)
	}
	return f, nil
}

func tierRank(s string) int {
	t, _ := dataset.ParseSalaryTier(s)
	return t.Rank()
}

// Report lays the group rates out as sheets.
func (f *Factors) Report(source string) *report.Report {
	r := report.New(factorsName, source)
	groupTable(r, "satisfaction_by_left", []string{string(dataset.Left), "avg_satisfaction"}, f.SatisfactionByLeft)
	groupTable(r, "department_attrition", []string{f.deptCol, "attrition_rate"}, f.Department)
	groupTable(r, "salary_attrition", []string{f.salaryCol, "attrition_rate"}, f.Salary)
	groupTable(r, "promo_attrition", []string{f.promoCol, "attrition_rate"}, f.Promotion)
	groupTable(r, "dept_salary_attrition", []string{f.deptCol, f.salaryCol, "attrition_rate"}, f.DepartmentSalary)
	return r
}

func groupTable(r *report.Report, name string, header []string, groups []stats.Group) {
	t := r.Add(report.NewTable(name, header...))
	for _, g := range groups {
		row := make([]interface{}, 0, len(g.Keys)+1)
		for _, k := range g.Keys {
			row = append(row, keyCell(k))
		}
		t.Append(append(row, g.Mean)...)
	}
}

// keyCell writes integer-looking group keys as numbers.
func keyCell(k string) interface{} {
	if v, err := strconv.ParseFloat(k, 64); err == nil {
		return number(v)
	}
	return k
}

// Charts renders the department and salary bars. A chart whose column is
// absent is skipped and reported in skipped.
func (f *Factors) Charts(outputDir string) (images, skipped []string, err error) {
	bars := []struct {
		column string
		groups []stats.Group
		image  string
		fig    chart.Figure
		rotate bool
	}{
		{string(dataset.Department), f.Department, naming.DeptBarImage,
			figure("Department-wise Attrition Rate", "", "Attrition rate", 8, 4, 200), true},
		{string(dataset.Salary), f.Salary, naming.SalaryBarImage,
			figure("Salary-wise Attrition Rate", "", "Attrition rate", 6, 4, 200), false},
	}
	for _, b := range bars {
		if len(b.groups) == 0 {
			skipped = append(skipped, b.column)
			continue
		}
		labels := make([]string, len(b.groups))
		values := make([]float64, len(b.groups))
		for i, g := range b.groups {
			labels[i], values[i] = g.Keys[0], g.Mean
		}
		path := naming.ImagePath(outputDir, b.image)
		if err := chart.Bar(path, b.fig, labels, values, b.rotate); err != nil {
			return nil, nil, err
		}
		images = append(images, path)
	}
	return images, skipped, nil
}

func runFactors(_ context.Context, env *Env) (*Result, error) {
	f, err := AnalyzeFactors(env.Data)
	if err != nil {
		return nil, err
	}
	if len(f.Department) > 0 {
		top := f.Department[0]
		env.Log.Info("  Highest department attrition: %s (%s)", top.Keys[0], display.FormatPercent(top.Mean))
	}
	images, skipped, err := f.Charts(env.Cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	for _, c := range skipped {
		env.Log.Warn("  Column %s not found, skipping its chart", c)
	}
	return &Result{Report: f.Report(env.Data.Path), Images: images}, nil
}
