package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/pkg/search"
)

var (
	searchToolName    = "search"
	searchDescription = "Search collected Reddit posts using semantic similarity. Returns the most relevant posts for the query text, with similarity scores, titles, bodies, and permalinks."
)

// SearchInput represents the input arguments for the search tool.
type SearchInput struct {
	Query     string `json:"query" jsonschema:"the search query text to find relevant posts"`
	Subreddit string `json:"subreddit,omitempty" jsonschema:"optional subreddit to restrict the search to"`
	TopK      int    `json:"top_k,omitempty" jsonschema:"number of results to return (default: 10)"`
}

// handleSearch processes a search request.
func (s *Server) handleSearch(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, search.Output, error) {
	logger := s.config.Logger

	logger.Debug("MCP search request",
		zap.String("query", input.Query),
		zap.String("subreddit", input.Subreddit),
		zap.Int("topK", input.TopK),
	)

	output, err := s.config.Searcher.Search(ctx, input.Query, search.Options{
		Subreddit: input.Subreddit,
		TopK:      input.TopK,
	})
	if err != nil {
		logger.Error("failed to search posts", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to search posts: %v", err)},
			},
		}, search.Output{}, nil
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal search output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize results: %v", err)},
			},
		}, search.Output{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
