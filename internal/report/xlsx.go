package report

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// defaultSheet is the sheet excelize creates with a new file.
const defaultSheet = "Sheet1"

// WriteXLSX writes every table of r, then run_info, as one sheet each. An
// existing file at path is replaced. The write is not atomic: a failure part
// way through can leave a partial file.
func WriteXLSX(path string, r *Report) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create spreadsheet directory")
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close workbook")
		}
	}()

	for i, t := range r.all() {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, t.Name); err != nil {
				return errors.Wrapf(err, "name sheet %s", t.Name)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return errors.Wrapf(err, "add sheet %s", t.Name)
		}
		if err := writeSheet(f, t); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	return nil
}

func writeSheet(f *excelize.File, t *Table) error {
	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(t.Name, "A1", &header); err != nil {
		return errors.Wrapf(err, "write %s header", t.Name)
	}
	for i, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = cellValue(c)
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WithStack(err)
		}
		if err := f.SetSheetRow(t.Name, addr, &cells); err != nil {
			return errors.Wrapf(err, "write %s row %d", t.Name, i+1)
		}
	}
	return nil
}
