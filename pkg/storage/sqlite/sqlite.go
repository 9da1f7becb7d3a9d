// Package sqlite implements storage.Store backed by a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/storage"
	"github.com/papercomputeco/lurker/pkg/vector"
)

// postColumns is the explicit post column list used by every post query.
// Selecting p.* would drag in inserted_at, which has no struct field.
const postColumns = `p.id, p.title, p.content, p.author, p.subreddit, p.score,
	p.num_comments, p.created_utc, p.url, p.permalink, p.is_self, p.upvote_ratio`

// Store implements storage.Store using SQLite as the storage backend.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Config holds configuration for the SQLite store.
type Config struct {
	// Path is a file path or ":memory:" for an in-memory database.
	Path string

	// Logger is optional; a nop logger is used when nil.
	Logger *zap.Logger
}

// NewStore opens (and migrates) a SQLite-backed store.
func NewStore(cfg Config) (*Store, error) {
	db, err := sqlx.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{db: db, logger: logger}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the necessary tables if they don't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT,
		author TEXT,
		subreddit TEXT NOT NULL,
		score INTEGER,
		num_comments INTEGER,
		created_utc TIMESTAMP NOT NULL,
		url TEXT,
		permalink TEXT,
		is_self BOOLEAN,
		upvote_ratio REAL,
		inserted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS embeddings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id TEXT NOT NULL REFERENCES posts(id),
		embedding TEXT NOT NULL,
		model_name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		post_id TEXT NOT NULL REFERENCES posts(id),
		author TEXT,
		body TEXT NOT NULL,
		score INTEGER,
		created_utc TIMESTAMP NOT NULL,
		parent_id TEXT,
		is_submitter BOOLEAN,
		inserted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_posts_subreddit ON posts(subreddit);
	CREATE INDEX IF NOT EXISTS idx_posts_created_utc ON posts(created_utc);
	CREATE INDEX IF NOT EXISTS idx_embeddings_post_id ON embeddings(post_id);
	CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments(post_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// InsertPosts upserts posts by id, replacing any existing row.
func (s *Store) InsertPosts(ctx context.Context, posts []reddit.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO posts
		(id, title, content, author, subreddit, score, num_comments,
		 created_utc, url, permalink, is_self, upvote_ratio)
		VALUES (:id, :title, :content, :author, :subreddit, :score, :num_comments,
		 :created_utc, :url, :permalink, :is_self, :upvote_ratio)`

	inserted := 0
	for _, post := range posts {
		if _, err := tx.NamedExecContext(ctx, query, post); err != nil {
			return 0, fmt.Errorf("failed to insert post %s: %w", post.ID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit posts: %w", err)
	}

	s.logger.Debug("inserted posts", zap.Int("count", inserted))
	return inserted, nil
}

// GetPost retrieves a post by its id.
func (s *Store) GetPost(ctx context.Context, id string) (*reddit.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = ?`

	var post reddit.Post
	err := s.db.GetContext(ctx, &post, query, id)
	switch {
	case err == sql.ErrNoRows:
		return nil, storage.NotFoundError{ID: id}
	case err != nil:
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

// RecentPosts returns up to limit posts, newest first.
func (s *Store) RecentPosts(ctx context.Context, subreddit string, limit int) ([]reddit.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p`
	args := []any{}

	if subreddit != "" {
		query += ` WHERE p.subreddit = ?`
		args = append(args, subreddit)
	}

	query += ` ORDER BY p.created_utc DESC LIMIT ?`
	args = append(args, limit)

	posts := []reddit.Post{}
	if err := s.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query recent posts: %w", err)
	}

	return posts, nil
}

// InsertEmbedding appends an embedding row. The vector is persisted as a JSON
// array so the database stays inspectable with the sqlite3 CLI.
func (s *Store) InsertEmbedding(ctx context.Context, embedding vector.Embedding) error {
	vectorJSON, err := json.Marshal(embedding.Vector)
	if err != nil {
		return fmt.Errorf("failed to marshal vector: %w", err)
	}

	createdAt := embedding.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	const query = `
		INSERT INTO embeddings (post_id, embedding, model_name, created_at)
		VALUES (?, ?, ?, ?)`

	if _, err := s.db.ExecContext(ctx, query, embedding.PostID, string(vectorJSON), embedding.ModelName, createdAt); err != nil {
		return fmt.Errorf("failed to insert embedding for %s: %w", embedding.PostID, err)
	}

	s.logger.Debug("inserted embedding",
		zap.String("post_id", embedding.PostID),
		zap.String("model", embedding.ModelName),
		zap.Int("dimensions", len(embedding.Vector)),
	)
	return nil
}

// InsertComments upserts comments by id.
func (s *Store) InsertComments(ctx context.Context, comments []reddit.Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO comments
		(id, post_id, author, body, score, created_utc, parent_id, is_submitter)
		VALUES (:id, :post_id, :author, :body, :score, :created_utc, :parent_id, :is_submitter)`

	inserted := 0
	for _, comment := range comments {
		if _, err := tx.NamedExecContext(ctx, query, comment); err != nil {
			return 0, fmt.Errorf("failed to insert comment %s: %w", comment.ID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit comments: %w", err)
	}

	s.logger.Debug("inserted comments", zap.Int("count", inserted))
	return inserted, nil
}

// PostsWithoutEmbeddings returns posts with no embedding row at all, newest
// first. Coverage is by post id alone: an embedding from any model counts.
func (s *Store) PostsWithoutEmbeddings(ctx context.Context, subreddit string) ([]reddit.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		LEFT JOIN embeddings e ON p.id = e.post_id
		WHERE e.post_id IS NULL`
	args := []any{}

	if subreddit != "" {
		query += ` AND p.subreddit = ?`
		args = append(args, subreddit)
	}

	query += ` ORDER BY p.created_utc DESC`

	posts := []reddit.Post{}
	if err := s.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query uncovered posts: %w", err)
	}

	s.logger.Debug("queried posts without embeddings", zap.Int("count", len(posts)))
	return posts, nil
}

// postEmbeddingRow is the flattened join row for PostsWithEmbeddings.
type postEmbeddingRow struct {
	reddit.Post
	EmbeddingJSON      string    `db:"embedding"`
	ModelName          string    `db:"model_name"`
	EmbeddingCreatedAt time.Time `db:"embedding_created_at"`
}

// PostsWithEmbeddings returns every (post, embedding) pair, newest post first.
func (s *Store) PostsWithEmbeddings(ctx context.Context, subreddit string) ([]storage.PostEmbedding, error) {
	query := `
		SELECT ` + postColumns + `,
			e.embedding, e.model_name, e.created_at AS embedding_created_at
		FROM posts p
		JOIN embeddings e ON p.id = e.post_id`
	args := []any{}

	if subreddit != "" {
		query += ` WHERE p.subreddit = ?`
		args = append(args, subreddit)
	}

	query += ` ORDER BY p.created_utc DESC`

	rows := []postEmbeddingRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query posts with embeddings: %w", err)
	}

	pairs := make([]storage.PostEmbedding, 0, len(rows))
	for _, row := range rows {
		var vec []float32
		if err := json.Unmarshal([]byte(row.EmbeddingJSON), &vec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vector for %s: %w", row.Post.ID, err)
		}

		pairs = append(pairs, storage.PostEmbedding{
			Post: row.Post,
			Embedding: vector.Embedding{
				PostID:    row.Post.ID,
				Vector:    vec,
				ModelName: row.ModelName,
				CreatedAt: row.EmbeddingCreatedAt,
			},
		})
	}

	s.logger.Debug("queried posts with embeddings", zap.Int("count", len(pairs)))
	return pairs, nil
}

// CountPosts returns the number of stored posts.
func (s *Store) CountPosts(ctx context.Context, subreddit string) (int, error) {
	query := `SELECT COUNT(*) FROM posts`
	args := []any{}

	if subreddit != "" {
		query += ` WHERE subreddit = ?`
		args = append(args, subreddit)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}

	return count, nil
}

// CountEmbeddings returns the number of stored embedding rows.
func (s *Store) CountEmbeddings(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM embeddings`); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}

	return count, nil
}

// CountComments returns the number of stored comments.
func (s *Store) CountComments(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM comments`); err != nil {
		return 0, fmt.Errorf("failed to count comments: %w", err)
	}

	return count, nil
}

// SubredditCounts returns the number of stored posts per subreddit.
func (s *Store) SubredditCounts(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT subreddit, COUNT(*) FROM posts GROUP BY subreddit`)
	if err != nil {
		return nil, fmt.Errorf("failed to count posts by subreddit: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var subreddit string
		var count int
		if err := rows.Scan(&subreddit, &count); err != nil {
			return nil, fmt.Errorf("failed to scan subreddit count: %w", err)
		}
		counts[subreddit] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subreddit counts: %w", err)
	}

	return counts, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)
