package dataset

import (
	"bytes"
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// Sentinel errors. Callers test with errors.Is; every returned error wraps one.
var (
	ErrInputNotFound  = errors.New("input not found")
	ErrMalformedInput = errors.New("malformed input")
	ErrMissingColumn  = errors.New("missing column")
	ErrEmptyDataset   = errors.New("dataset has no rows")
)

// missingValues are the cell spellings treated as missing.
var missingValues = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

// Dataset is an immutable, loaded copy of the source CSV.
type Dataset struct {
	Path  string
	Frame dataframe.DataFrame
}

// ColumnInfo pairs a header with its inferred dtype.
type ColumnInfo struct {
	Name  string
	Dtype string
}

// ColumnCount pairs a header with a count.
type ColumnCount struct {
	Name  string
	Count int
}

// Load reads the comma-delimited file at path. A header row is required and
// column types are inferred per column (int64, float64, bool or object).
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrInputNotFound, "%s: %v", path, err)
	}

	r := csv.NewReader(bytes.NewReader(raw))
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedInput, "%s: %v", path, err)
	}
	if len(records) == 0 {
		return nil, errors.Wrapf(ErrMalformedInput, "%s: no header row", path)
	}
	if len(records) == 1 {
		return nil, errors.Wrap(ErrEmptyDataset, path)
	}
	for i, h := range records[0] {
		records[0][i] = strings.TrimSpace(h)
	}

	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.NaNValues(missingValues),
	)
	if df.Err != nil {
		return nil, errors.Wrapf(ErrMalformedInput, "%s: %v", path, df.Err)
	}
	return &Dataset{Path: path, Frame: df}, nil
}

// Nrow is the number of records.
func (d *Dataset) Nrow() int { return d.Frame.Nrow() }

// Ncol is the number of columns.
func (d *Dataset) Ncol() int { return d.Frame.Ncol() }

// Names returns the headers in file order.
func (d *Dataset) Names() []string { return d.Frame.Names() }

// Column returns the header used for f, if any.
func (d *Dataset) Column(f Field) (string, bool) {
	return pickColumn(d.Names(), f)
}

// Has reports whether f resolves to a column.
func (d *Dataset) Has(f Field) bool {
	_, ok := d.Column(f)
	return ok
}

// Require fails with ErrMissingColumn naming every field that does not resolve.
func (d *Dataset) Require(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if !d.Has(f) {
			missing = append(missing, string(f))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return errors.Wrapf(ErrMissingColumn, "%s (available: %s)",
		strings.Join(missing, ", "), strings.Join(d.Names(), ", "))
}

// Floats returns f as float64; missing or non-numeric cells are NaN.
func (d *Dataset) Floats(f Field) ([]float64, error) {
	name, ok := d.Column(f)
	if !ok {
		return nil, d.Require(f)
	}
	return d.ColumnFloats(name), nil
}

// Strings returns f as text; missing cells are "".
func (d *Dataset) Strings(f Field) ([]string, error) {
	name, ok := d.Column(f)
	if !ok {
		return nil, d.Require(f)
	}
	return d.ColumnStrings(name), nil
}

// Labels returns the target column, which must hold only 0 and 1.
func (d *Dataset) Labels() ([]int, error) {
	vals, err := d.Floats(Left)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(vals))
	for i, v := range vals {
		switch v {
		case 0:
			out[i] = 0
		case 1:
			out[i] = 1
		default:
			name, _ := d.Column(Left)
			return nil, errors.Wrapf(ErrMalformedInput, "%s row %d: target must be 0 or 1 (got %v)", name, i+1, v)
		}
	}
	return out, nil
}

// Dtypes lists every column with its inferred dtype.
func (d *Dataset) Dtypes() []ColumnInfo {
	names := d.Names()
	types := d.Frame.Types()
	out := make([]ColumnInfo, len(names))
	for i, n := range names {
		out[i] = ColumnInfo{Name: n, Dtype: dtypeName(types[i])}
	}
	return out
}

// IsNumeric reports whether the named column holds numbers or booleans.
func (d *Dataset) IsNumeric(name string) bool {
	switch d.Frame.Col(name).Type() {
	case series.Int, series.Float, series.Bool:
		return true
	}
	return false
}

// NumericColumns returns the headers of int and float columns, in file order.
func (d *Dataset) NumericColumns() []string {
	var out []string
	for _, c := range d.Dtypes() {
		if c.Dtype == "int64" || c.Dtype == "float64" {
			out = append(out, c.Name)
		}
	}
	return out
}

// ColumnFloats returns a column by header as float64 (NaN for missing).
func (d *Dataset) ColumnFloats(name string) []float64 {
	return d.Frame.Col(name).Float()
}

// ColumnStrings returns a column by header as text ("" for missing).
func (d *Dataset) ColumnStrings(name string) []string {
	s := d.Frame.Col(name)
	out := s.Records()
	for i, na := range s.IsNaN() {
		if na {
			out[i] = ""
		}
	}
	return out
}

// Missing counts missing cells per column.
func (d *Dataset) Missing() []ColumnCount {
	names := d.Names()
	out := make([]ColumnCount, len(names))
	for i, n := range names {
		c := 0
		for _, na := range d.Frame.Col(n).IsNaN() {
			if na {
				c++
			}
		}
		out[i] = ColumnCount{Name: n, Count: c}
	}
	return out
}

// DuplicateRows counts records identical to an earlier record. Float cells
// compare by value at full precision and missing cells equal each other.
func (d *Dataset) DuplicateRows() int {
	n := d.Nrow()
	if n <= 1 {
		return 0
	}
	keys := make([][]string, d.Ncol())
	for j, name := range d.Names() {
		keys[j] = cellKeys(d.Frame.Col(name))
	}
	seen := make(map[string]struct{}, n)
	row := make([]string, len(keys))
	dups := 0
	for i := 0; i < n; i++ {
		for j := range keys {
			row[j] = keys[j][i]
		}
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

// cellKeys renders a column for row comparison. gota prints floats with six
// decimals, so float cells are formatted from their values instead.
func cellKeys(s series.Series) []string {
	out := s.Records()
	var vals []float64
	if s.Type() == series.Float {
		vals = s.Float()
	}
	for i, na := range s.IsNaN() {
		switch {
		case na:
			out[i] = "\x00"
		case vals != nil:
			out[i] = strconv.FormatFloat(vals[i], 'g', -1, 64)
		}
	}
	return out
}

func dtypeName(t series.Type) string {
	switch t {
	case series.Int:
		return "int64"
	case series.Float:
		return "float64"
	case series.Bool:
		return "bool"
	}
	return "object"
}
