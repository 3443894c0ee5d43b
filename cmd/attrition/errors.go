package main

import "github.com/pkg/errors"

// These are returned after the failure has already been logged.
var (
	errCheckFailed = errors.New("preflight check failed")
	errRunFailed   = errors.New("run did not complete")
)
