// Command attrition runs the HR attrition reports: exploration, correlation,
// factor analysis and the attrition model. Each report is a subcommand; "all"
// runs them in order and "check" only verifies input and output.
package main

import (
	"os"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}
