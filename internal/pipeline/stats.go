package pipeline

// RunStats tracks counters and output totals across a run.
type RunStats struct {
	Total     int
	Current   int
	Completed int
	Failed    int
	Workbooks int
	Images    int
	Tables    int
	Bytes     int64 // Size of every file written.
}

// OK reports whether every scheduled job completed.
func (s *RunStats) OK() bool {
	return s.Failed == 0 && s.Completed == s.Total
}
