// Package usecase runs the per-timestamp SST workflows on top of the store,
// interpolation and rendering adapters.
package usecase

import (
	"fmt"
	"time"
)

// ProgressFunc is called after each timestamp with the number processed so
// far and the total.
type ProgressFunc func(done, total int)

// Failure records a timestamp that could not be processed.
type Failure struct {
	Time time.Time
	Err  error
}

// Report summarizes a batch run.
type Report struct {
	Total     int
	Succeeded int
	Outputs   []string // Files written, in processing order.
	Failures  []Failure
}

// Err returns nil when every timestamp succeeded and a summary error
// otherwise.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	first := r.Failures[0]
	return fmt.Errorf("%d of %d timestamps failed (first at %s: %w)",
		len(r.Failures), r.Total, first.Time.UTC().Format(time.RFC3339), first.Err)
}

func (r *Report) fail(t time.Time, err error) {
	r.Failures = append(r.Failures, Failure{Time: t, Err: err})
}
