// Package delivery holds the transports that expose the user service.
package delivery

import "context"

// Delivery is a long-running transport started by the application. Serve
// blocks until the transport stops; a graceful shutdown returns nil.
type Delivery interface {
	Serve(ctx context.Context) error
}
