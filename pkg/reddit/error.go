package reddit

import "errors"

var (
	// ErrNotFound is returned when a subreddit or post does not exist.
	ErrNotFound = errors.New("reddit resource not found")

	// ErrConnection is returned when the Reddit API cannot be reached.
	ErrConnection = errors.New("reddit connection failed")

	// ErrCredentials is returned when API credentials are missing or rejected.
	ErrCredentials = errors.New("reddit credentials invalid")
)
