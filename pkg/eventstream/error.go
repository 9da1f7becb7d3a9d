package eventstream

import "errors"

// ErrPublish indicates an event could not be delivered to the stream.
var ErrPublish = errors.New("event publish failed")
