package core

import "context"

// HostedService is a background service bound to the application
// lifecycle.
type HostedService interface {
	// Start runs in its own goroutine and may block until ctx is cancelled
	// or Stop is called. A returned error shuts the application down.
	Start(ctx context.Context) error

	// Stop must honour ctx's deadline.
	Stop(ctx context.Context) error
}
