// Package eventstream defines the versioned events lurker publishes when
// collection or indexing runs complete, and the Publisher interface the
// transports implement.
package eventstream

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current event envelope version. Consumers should
// ignore events with a version they do not understand.
const SchemaVersion = 1

// Event types.
const (
	TypePostsCollected    = "lurker.posts.collected"
	TypeEmbeddingsIndexed = "lurker.embeddings.indexed"
)

// Event is the transport-neutral envelope published to the stream.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	SchemaVersion int             `json:"schema_version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// PostsCollectedPayload describes a completed collection run.
type PostsCollectedPayload struct {
	RunID      string   `json:"run_id,omitempty"`
	Subreddits []string `json:"subreddits"`
	Posts      int      `json:"posts"`
	Comments   int      `json:"comments"`
}

// EmbeddingsIndexedPayload describes a completed indexing run.
type EmbeddingsIndexedPayload struct {
	Model     string `json:"model"`
	Processed int    `json:"processed"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// NewPostsCollected builds a posts-collected event with a fresh id.
func NewPostsCollected(payload PostsCollectedPayload) (Event, error) {
	return newEvent(TypePostsCollected, payload)
}

// NewEmbeddingsIndexed builds an embeddings-indexed event with a fresh id.
func NewEmbeddingsIndexed(payload EmbeddingsIndexedPayload) (Event, error) {
	return newEvent(TypeEmbeddingsIndexed, payload)
}

func newEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshaling %s payload: %w", eventType, err)
	}

	return Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		Payload:       raw,
	}, nil
}
