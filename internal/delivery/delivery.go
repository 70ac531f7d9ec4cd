// Package delivery holds the entry points that expose use cases to the outside world.
package delivery

import "context"

// Delivery is a long-running server started by the process entry point.
type Delivery interface {
	// Serve blocks until the server stops.
	Serve(ctx context.Context) error
}
