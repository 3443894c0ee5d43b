package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// WriteSQLite writes every table of r, then run_info, into the database at
// path as "<job>_<table>". Existing tables of the same name are replaced, all
// inside one transaction.
func WriteSQLite(ctx context.Context, path string, r *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create database directory")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	for _, t := range r.all() {
		if err := writeTable(ctx, tx, TableName(r.Job, t.Name), t); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// TableName is the SQLite table a report table is written to.
func TableName(job, table string) string {
	return job + "_" + table
}

func writeTable(ctx context.Context, tx *sql.Tx, name string, t *Table) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return errors.Wrapf(err, "drop %s", name)
	}

	cols := make([]string, len(t.Header))
	marks := make([]string, len(t.Header))
	for i, h := range t.Header {
		cols[i] = quoteIdent(h)
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return errors.Wrapf(err, "create %s", name)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)",
		quoteIdent(name), strings.Join(marks, ", ")))
	if err != nil {
		return errors.Wrapf(err, "prepare insert into %s", name)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		args := make([]interface{}, len(t.Header))
		for j := range args {
			if j < len(row) {
				args[j] = cellValue(row[j])
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.Wrapf(err, "insert row %d into %s", i+1, name)
		}
	}
	return nil
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
