// Package naming owns the output layout: the two output subdirectories and
// the fixed file name of every workbook and image a job writes.
//
//	<output>/xlsx_output/q1_data_exploration.xlsx
//	<output>/xlsx_output/q2_satisfaction_summary.xlsx
//	<output>/image_output/q2_scatter_satisfaction_vs_hours.png
//	...
//
// Names never vary between runs, so each run overwrites the previous one.
package naming
