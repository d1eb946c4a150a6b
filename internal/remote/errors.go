package remote

import (
	"fmt"
	"time"
)

// SubmitError is a terminal submission failure: a non-success transport status
// or a response missing the expected job identifier. Submission is never
// retried at this layer.
type SubmitError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *SubmitError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s submit failed: HTTP %d: %s", e.Service, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s submit failed: %s", e.Service, e.Body)
}

// TimeoutError indicates the poll loop exceeded its deadline before the job
// reached a terminal state. It is distinguishable from a remote-reported
// failure so callers can decide whether retrying the whole run is worthwhile.
type TimeoutError struct {
	JobID   string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("job %s did not finish within %s", e.JobID, e.Elapsed)
}
