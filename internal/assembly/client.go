// Package assembly submits ordered scene clips to the Shotstack edit API and
// polls the render to completion.
package assembly

import (
	"context"

	"github.com/promoforge/promoforge/internal/remote"
)

// Client is the assembly contract. Submit sends one render job built from the
// ordered clip list; Poll returns the current render state without blocking.
type Client interface {
	Submit(ctx context.Context, clips []Clip, out Output) (remote.Job, error)
	Poll(ctx context.Context, renderID string) (remote.Job, error)
}
