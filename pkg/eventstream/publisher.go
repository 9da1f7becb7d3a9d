package eventstream

import "context"

// Publisher delivers events to a stream. Implementations must be safe for
// concurrent use. Publish failures are reported, not retried; callers treat
// them as non-fatal.
type Publisher interface {
	// Publish delivers a single event.
	Publish(ctx context.Context, event Event) error

	// Close flushes and releases the underlying transport.
	Close() error
}
