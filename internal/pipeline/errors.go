package pipeline

import "fmt"

// ValidationError reports a missing required input field. It is terminal and
// raised before any remote call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return e.Field + " is required."
}

// SceneFailedError reports a scene generation job that the remote service
// terminated in the failed state. The scene id is included for traceability.
type SceneFailedError struct {
	SceneID string
	JobID   string
	Message string
}

func (e *SceneFailedError) Error() string {
	msg := fmt.Sprintf("scene %s generation failed (job %s)", e.SceneID, e.JobID)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// AssemblyFailedError reports a render job that the edit service terminated in
// the failed state.
type AssemblyFailedError struct {
	RenderID string
	Message  string
}

func (e *AssemblyFailedError) Error() string {
	msg := fmt.Sprintf("video assembly failed (render %s)", e.RenderID)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}
