// Package scenegen submits individual video scenes to the Vidgo generation
// service and polls them to completion.
package scenegen

import (
	"context"

	"github.com/promoforge/promoforge/internal/remote"
)

// Request describes one scene generation job.
type Request struct {
	Prompt         string
	Duration       int    // seconds; the service defaults to 8 when zero
	ReferenceImage string // URL or data URL; empty means text-to-video
	Resolution     string // "720p" or "1080p"
	AspectRatio    string // "16:9", "9:16" or "1:1"
}

// Client is the scene generation contract. Submit returns a job handle or a
// terminal *remote.SubmitError; Poll returns the current job snapshot without
// blocking internally — the wait loop belongs to the caller.
type Client interface {
	Submit(ctx context.Context, req Request) (remote.Job, error)
	Poll(ctx context.Context, jobID string) (remote.Job, error)
}
