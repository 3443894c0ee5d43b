// Package report assembles labeled tables and writes them out: one sheet per
// table in an .xlsx workbook, and optionally one table per sheet in SQLite.
package report

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Table is one labeled sheet: a header row and data rows of string, int,
// int64 or float64 cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// NewTable starts an empty table.
func NewTable(name string, header ...string) *Table {
	return &Table{Name: name, Header: header}
}

// Append adds one row.
func (t *Table) Append(cells ...interface{}) {
	t.Rows = append(t.Rows, cells)
}

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Report is everything one job writes to its workbook.
type Report struct {
	Job         string
	Source      string
	RunID       uuid.UUID
	GeneratedAt time.Time
	Tables      []*Table
}

// New starts a report for job reading source.
func New(job, source string) *Report {
	return &Report{
		Job:         job,
		Source:      source,
		RunID:       uuid.New(),
		GeneratedAt: time.Now().UTC(),
	}
}

// Add appends t and returns it for chaining.
func (r *Report) Add(t *Table) *Table {
	r.Tables = append(r.Tables, t)
	return t
}

// Table returns the table called name, or nil.
func (r *Report) Table(name string) *Table {
	for _, t := range r.Tables {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// RunInfo is the trailing metadata table every output carries.
func (r *Report) RunInfo() *Table {
	t := NewTable("run_info", "key", "value")
	t.Append("run_id", r.RunID.String())
	t.Append("job", r.Job)
	t.Append("source", r.Source)
	t.Append("generated_at", r.GeneratedAt.Format(time.RFC3339))
	return t
}

// all returns the job tables followed by run_info.
func (r *Report) all() []*Table {
	return append(append([]*Table{}, r.Tables...), r.RunInfo())
}

// cellValue replaces non-finite floats with their text form; spreadsheet
// and SQLite numeric cells cannot hold NaN or Inf.
func cellValue(v interface{}) interface{} {
	switch f := v.(type) {
	case float64:
		switch {
		case math.IsNaN(f):
			return "nan"
		case math.IsInf(f, 1):
			return "inf"
		case math.IsInf(f, -1):
			return "-inf"
		}
	}
	return v
}
