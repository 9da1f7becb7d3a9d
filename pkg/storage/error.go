package storage

// NotFoundError is returned when a post doesn't exist in the store.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return "post not found"
	}

	return "post not found: " + e.ID
}
