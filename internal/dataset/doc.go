// Package dataset loads the HR employee CSV and resolves its columns.
//
// The file is read once per job into a gota data frame with type detection.
// Each employee record carries the fields declared as [Field] constants; a header may use
// any of a field's aliases (e.g. the widely shared "average_montly_hours"
// misspelling), and the first alias present wins. The frame is never mutated
// after Load.
//
// Errors are sentinels checked with errors.Is: ErrInputNotFound,
// ErrMalformedInput, ErrMissingColumn and ErrEmptyDataset.
package dataset
