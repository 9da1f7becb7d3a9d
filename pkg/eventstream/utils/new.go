// Package eventstreamutils provides factory functions for creating publishers.
package eventstreamutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/pkg/eventstream"
	"github.com/papercomputeco/lurker/pkg/eventstream/kafka"
	"github.com/papercomputeco/lurker/pkg/eventstream/nop"
)

// NewPublisherOpts holds the options for creating a publisher.
type NewPublisherOpts struct {
	// ProviderType selects the transport: "nop" or "kafka".
	ProviderType string

	// Brokers is the broker list, used by the kafka provider.
	Brokers []string

	// Topic is the destination topic, used by the kafka provider.
	Topic string

	// Logger is optional.
	Logger *zap.Logger
}

// NewPublisher creates a new publisher based on the given options.
func NewPublisher(opts NewPublisherOpts) (eventstream.Publisher, error) {
	switch opts.ProviderType {
	case "nop", "":
		return nop.NewPublisher(), nil
	case "kafka":
		return kafka.NewPublisher(kafka.Config{
			Brokers: opts.Brokers,
			Topic:   opts.Topic,
			Logger:  opts.Logger,
		})
	default:
		return nil, fmt.Errorf("unsupported event stream provider: %s", opts.ProviderType)
	}
}
