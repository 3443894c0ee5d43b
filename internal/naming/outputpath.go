package naming

import "path/filepath"

// Output subdirectories.
const (
	XLSXDir  = "xlsx_output"
	ImageDir = "image_output"
)

// Workbook file names, one per job.
const (
	ExploreWorkbook   = "q1_data_exploration.xlsx"
	CorrelateWorkbook = "q2_satisfaction_summary.xlsx"
	FactorsWorkbook   = "q3_factor_analysis.xlsx"
	ModelWorkbook     = "q4_model_results.xlsx"
)

// Image file names.
const (
	ScatterImage      = "q2_scatter_satisfaction_vs_hours.png"
	DistributionImage = "q2_distribution_satisfaction_left_vs_stayed.png"
	DeptBarImage      = "q3_dept_attrition_bar.png"
	SalaryBarImage    = "q3_salary_attrition_bar.png"
	LogisticCMImage   = "q4_confusion_logistic.png"
	ForestCMImage     = "q4_confusion_random_forest.png"
)

// WorkbookPath returns <outputDir>/xlsx_output/<name>.
func WorkbookPath(outputDir, name string) string {
	return filepath.Join(outputDir, XLSXDir, name)
}

// ImagePath returns <outputDir>/image_output/<name>.
func ImagePath(outputDir, name string) string {
	return filepath.Join(outputDir, ImageDir, name)
}

// Dirs lists the directories a run writes into.
func Dirs(outputDir string) []string {
	return []string{
		filepath.Join(outputDir, XLSXDir),
		filepath.Join(outputDir, ImageDir),
	}
}
