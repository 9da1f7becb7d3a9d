package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/lurker/pkg/storage"
)

const defaultPostsLimit = 25

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleStats returns corpus counts: posts, comments, embeddings, posts
// still missing an embedding, and per-subreddit post totals.
func (s *Server) handleStats(c *fiber.Ctx) error {
	ctx := c.Context()

	posts, err := s.store.CountPosts(ctx, "")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to count posts"})
	}

	embeddings, err := s.store.CountEmbeddings(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to count embeddings"})
	}

	comments, err := s.store.CountComments(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to count comments"})
	}

	uncovered, err := s.store.PostsWithoutEmbeddings(ctx, "")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to find uncovered posts"})
	}

	bySubreddit, err := s.store.SubredditCounts(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to count subreddits"})
	}

	stats := map[string]any{
		"posts":              posts,
		"comments":           comments,
		"embeddings":         embeddings,
		"missing_embeddings": len(uncovered),
		"by_subreddit":       bySubreddit,
	}

	return c.JSON(stats)
}

// handleGetPost returns a single post by its id.
func (s *Server) handleGetPost(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	post, err := s.store.GetPost(c.Context(), id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "post not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to load post"})
	}

	return c.JSON(post)
}

// handleRecentPosts returns recent posts, newest first.
// Query parameters:
//   - subreddit (optional): scope to one subreddit
//   - limit (optional, default 25): maximum posts to return
func (s *Server) handleRecentPosts(c *fiber.Ctx) error {
	limit := defaultPostsLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error: "limit must be a positive integer",
			})
		}
		limit = parsed
	}

	posts, err := s.store.RecentPosts(c.Context(), c.Query("subreddit"), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list posts"})
	}

	return c.JSON(map[string]any{
		"count": len(posts),
		"posts": posts,
	})
}
