// Package remote models asynchronous jobs on external rendering services.
// A job is submitted, identified by an opaque handle, and polled until it
// reaches a terminal state (finished or failed).
package remote

// State is the lifecycle state of a remote job as reported by the service.
type State string

const (
	StateSubmitted  State = "submitted"
	StateProcessing State = "processing"
	StateFinished   State = "finished"
	StateFailed     State = "failed"
)

// Terminal reports whether the state ends the job lifecycle. Any state other
// than finished or failed is treated as still in progress, so unknown values
// returned by a service keep the poll loop running.
func (s State) Terminal() bool {
	return s == StateFinished || s == StateFailed
}

// Job is a snapshot of a remote job. ResultURL is set only when the state is
// finished; Message carries the service's failure detail when available.
type Job struct {
	ID        string
	State     State
	ResultURL string
	Message   string
}

// Terminal reports whether the job has reached a terminal state.
func (j Job) Terminal() bool {
	return j.State.Terminal()
}
