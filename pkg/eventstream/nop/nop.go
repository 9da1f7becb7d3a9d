// Package nop implements a Publisher that discards every event. It is the
// default when no event stream is configured.
package nop

import (
	"context"

	"github.com/papercomputeco/lurker/pkg/eventstream"
)

// Publisher discards all events.
type Publisher struct{}

// NewPublisher creates a new discarding publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish discards the event.
func (p *Publisher) Publish(_ context.Context, _ eventstream.Event) error {
	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}

// Ensure Publisher implements eventstream.Publisher
var _ eventstream.Publisher = (*Publisher)(nil)
