// Package ml holds the classification workflow: feature encoding, the
// train/test split, logistic regression, a random forest, and the metrics
// the model report is built from. Everything is deterministic for a given
// seed.
package ml

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors. Callers test with errors.Is.
var (
	ErrEmptyPartition = errors.New("empty train or test partition")
	ErrMissingValue   = errors.New("missing feature value")
	ErrNotFitted      = errors.New("model is not fitted")
	ErrShape          = errors.New("dimension mismatch")
)

// ErrInvalidArgument is returned for a hyper-parameter outside its range.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string      // Name of the parameter, e.g. "eta"
	Value   interface{} // The invalid value that was provided
	Message string      // Why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %v is invalid for %q", err.Value, err.Name)
	}
	return fmt.Sprintf("value %v is invalid for %q; %s", err.Value, err.Name, err.Message)
}

func invalid(name string, value interface{}, msg string) error {
	return errors.WithStack(&ErrInvalidArgument{Name: name, Value: value, Message: msg})
}
