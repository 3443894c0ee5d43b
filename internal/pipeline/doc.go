// Package pipeline runs the report jobs: each job loads the dataset, computes
// its tables and charts, and writes its workbook (and, when configured, its
// SQLite tables). Jobs run one after another and the first failure stops the
// run.
//
// Jobs:
//   - explore   (explore.go): shape, dtypes, missing values, duplicates,
//     numeric summary and target distribution.
//   - correlate (correlate.go): satisfaction vs monthly hours, overall and
//     among leavers, with two charts.
//   - factors   (factors.go): attrition rate by department, salary tier and
//     promotion, with two bar charts.
//   - model     (model.go): logistic regression and random forest, with
//     metrics, feature importances and confusion-matrix charts.
package pipeline
