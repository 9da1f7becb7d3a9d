// Package api provides an HTTP API server for querying collected posts and
// running semantic searches over them.
package api

import (
	"net/http"

	"github.com/papercomputeco/lurker/pkg/search"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Searcher answers GET /v1/search. Optional; without it the search
	// endpoint responds 503.
	Searcher *search.Searcher

	// MCP is mounted at POST /v1/mcp when set.
	MCP http.Handler
}

// ErrorResponse is the JSON body for error replies.
type ErrorResponse struct {
	Error string `json:"error"`
}
