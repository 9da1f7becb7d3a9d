package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	statusToolName    = "status"
	statusDescription = "Report the state of the collected corpus: how many posts and comments are stored, how many embeddings exist, how many posts still lack one, and post counts per subreddit."
)

// StatusInput represents the input arguments for the status tool.
type StatusInput struct{}

// StatusOutput represents the structured output of a status request.
type StatusOutput struct {
	Posts             int            `json:"posts"`
	Comments          int            `json:"comments"`
	Embeddings        int            `json:"embeddings"`
	MissingEmbeddings int            `json:"missing_embeddings"`
	BySubreddit       map[string]int `json:"by_subreddit"`
}

// handleStatus processes a status request via MCP.
func (s *Server) handleStatus(ctx context.Context, _ *mcp.CallToolRequest, _ StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
	store := s.config.Store

	posts, err := store.CountPosts(ctx, "")
	if err != nil {
		return statusError("count posts", err)
	}

	comments, err := store.CountComments(ctx)
	if err != nil {
		return statusError("count comments", err)
	}

	embeddings, err := store.CountEmbeddings(ctx)
	if err != nil {
		return statusError("count embeddings", err)
	}

	uncovered, err := store.PostsWithoutEmbeddings(ctx, "")
	if err != nil {
		return statusError("find uncovered posts", err)
	}

	bySubreddit, err := store.SubredditCounts(ctx)
	if err != nil {
		return statusError("count subreddits", err)
	}

	output := StatusOutput{
		Posts:             posts,
		Comments:          comments,
		Embeddings:        embeddings,
		MissingEmbeddings: len(uncovered),
		BySubreddit:       bySubreddit,
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return statusError("serialize status", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

func statusError(action string, err error) (*mcp.CallToolResult, StatusOutput, error) {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("Failed to %s: %v", action, err)},
		},
	}, StatusOutput{}, nil
}
