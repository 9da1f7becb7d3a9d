// Package indexer generates embeddings for posts that do not have one yet
// and persists them. Posts are processed in batches; within a batch,
// embedding requests fan out across a bounded worker pool and results are
// written back in the original post order once the pool drains, so reruns
// produce identical row order regardless of scheduling.
package indexer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/lurker/pkg/embeddings"
	"github.com/papercomputeco/lurker/pkg/eventstream"
	"github.com/papercomputeco/lurker/pkg/eventstream/nop"
	"github.com/papercomputeco/lurker/pkg/reddit"
	"github.com/papercomputeco/lurker/pkg/storage"
	"github.com/papercomputeco/lurker/pkg/vector"
)

const (
	// DefaultWorkers bounds concurrent embedding requests when
	// Options.Workers is unset.
	DefaultWorkers = 3

	// DefaultBatchSize bounds how many embeddings are held in memory
	// before being persisted when Options.BatchSize is unset.
	DefaultBatchSize = 10
)

// Indexer embeds uncovered posts and stores the resulting vectors.
type Indexer struct {
	store     storage.Store
	embedder  embeddings.Embedder
	model     string
	publisher eventstream.Publisher
	logger    *zap.Logger
}

// Config holds the dependencies for an Indexer.
type Config struct {
	// Store provides the posts to embed and receives the results.
	Store storage.Store

	// Embedder generates the vectors.
	Embedder embeddings.Embedder

	// Model is recorded on every stored embedding.
	Model string

	// Publisher receives an embeddings-indexed event after each run.
	// Optional; defaults to a discarding publisher.
	Publisher eventstream.Publisher

	// Logger is optional; defaults to a no-op logger.
	Logger *zap.Logger
}

// Options configures a single indexing run.
type Options struct {
	// Subreddit scopes the run; empty covers every subreddit.
	Subreddit string

	// Workers bounds concurrent embedding requests within a batch.
	// Defaults to DefaultWorkers.
	Workers int

	// BatchSize bounds how many posts are embedded before their vectors
	// are persisted. Defaults to DefaultBatchSize.
	BatchSize int

	// OnProgress, when set, is called after each post finishes embedding
	// with the running count and the total.
	OnProgress func(done, total int)
}

// Result summarizes an indexing run. Processed counts posts the run
// attempted; Succeeded and Failed partition it.
type Result struct {
	Processed int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Summary renders the result as a single human-readable line.
func (r Result) Summary() string {
	return fmt.Sprintf("processed %d posts: %d embedded, %d failed in %s",
		r.Processed, r.Succeeded, r.Failed, r.Duration.Round(time.Millisecond))
}

// New creates an Indexer from the given config.
func New(cfg Config) (*Indexer, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}

	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("model name is required")
	}

	publisher := cfg.Publisher
	if publisher == nil {
		publisher = nop.NewPublisher()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Indexer{
		store:     cfg.Store,
		embedder:  cfg.Embedder,
		model:     cfg.Model,
		publisher: publisher,
		logger:    logger,
	}, nil
}

type outcome struct {
	attempted bool
	vector    []float32
	err       error
}

// Run embeds every post without a stored embedding. A post that fails to
// embed or persist is counted and logged, never fatal to the run. When the
// context is cancelled mid-run the partial result is returned along with
// the context error.
func (ix *Indexer) Run(ctx context.Context, opts Options) (Result, error) {
	start := time.Now()

	posts, err := ix.store.PostsWithoutEmbeddings(ctx, opts.Subreddit)
	if err != nil {
		return Result{}, fmt.Errorf("failed to load posts without embeddings: %w", err)
	}

	if len(posts) == 0 {
		ix.logger.Info("no posts to index",
			zap.String("subreddit", opts.Subreddit),
		)
		return Result{Duration: time.Since(start)}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	ix.logger.Info("indexing posts",
		zap.Int("posts", len(posts)),
		zap.String("model", ix.model),
		zap.Int("workers", workers),
		zap.Int("batch_size", batchSize),
	)

	var progressMu sync.Mutex
	var done int
	reportProgress := func() {
		progressMu.Lock()
		done++
		if opts.OnProgress != nil {
			opts.OnProgress(done, len(posts))
		}
		progressMu.Unlock()
	}

	var result Result
	for lo := 0; lo < len(posts) && ctx.Err() == nil; lo += batchSize {
		hi := lo + batchSize
		if hi > len(posts) {
			hi = len(posts)
		}
		ix.runBatch(ctx, posts[lo:hi], workers, reportProgress, &result)
	}

	result.Duration = time.Since(start)

	if result.Processed > 0 {
		ix.publishResult(ctx, result)
	}

	ix.logger.Info("indexing run finished",
		zap.Int("processed", result.Processed),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.Duration),
	)

	if err := ctx.Err(); err != nil {
		return result, err
	}

	return result, nil
}

// runBatch embeds one batch of posts across the worker group and persists
// the outcomes in input order.
func (ix *Indexer) runBatch(ctx context.Context, batch []reddit.Post, workers int, reportProgress func(), result *Result) {
	if workers > len(batch) {
		workers = len(batch)
	}

	outcomes := make([]outcome, len(batch))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				vec, err := ix.embedder.Embed(ctx, batch[i].EmbeddingText())
				outcomes[i] = outcome{attempted: true, vector: vec, err: err}
				reportProgress()
			}
		}()
	}

feed:
	for i := range batch {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i := range batch {
		out := outcomes[i]
		if !out.attempted {
			continue
		}

		result.Processed++

		if out.err != nil {
			result.Failed++
			ix.logger.Warn("failed to embed post",
				zap.String("post_id", batch[i].ID),
				zap.Error(out.err),
			)
			continue
		}

		embedding := vector.Embedding{
			PostID:    batch[i].ID,
			Vector:    out.vector,
			ModelName: ix.model,
		}

		if err := ix.store.InsertEmbedding(ctx, embedding); err != nil {
			result.Failed++
			ix.logger.Warn("failed to store embedding",
				zap.String("post_id", batch[i].ID),
				zap.Error(err),
			)
			continue
		}

		result.Succeeded++
	}
}

func (ix *Indexer) publishResult(ctx context.Context, result Result) {
	event, err := eventstream.NewEmbeddingsIndexed(eventstream.EmbeddingsIndexedPayload{
		Model:     ix.model,
		Processed: result.Processed,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
	})
	if err != nil {
		ix.logger.Warn("failed to build embeddings indexed event", zap.Error(err))
		return
	}

	if err := ix.publisher.Publish(ctx, event); err != nil {
		ix.logger.Warn("failed to publish embeddings indexed event", zap.Error(err))
	}
}
