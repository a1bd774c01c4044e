package worker

import (
	"context"
	"strconv"
	"time"

	"forem-reader/internal/model"

	"go.uber.org/zap"
)

const popTimeout = time.Second

// Queue hands out article ids waiting to be prefetched.
type Queue interface {
	PopPrefetch(ctx context.Context, timeout time.Duration) (int, bool, error)
}

// Loader produces an article detail, filling the cache on the way.
type Loader interface {
	GetArticleDetail(ctx context.Context, id int) (model.Article, bool)
}

// Worker warms the detail cache from the prefetch queue.
type Worker struct {
	queue  Queue
	loader Loader
	logger *zap.Logger
	// backoff after a queue error
	backoff time.Duration
}

func NewWorker(queue Queue, loader Loader, logger *zap.Logger) *Worker {
	return &Worker{
		queue:   queue,
		loader:  loader,
		logger:  logger,
		backoff: time.Second,
	}
}

// Start runs the worker loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Prefetch worker started. Waiting for jobs...")

	for {
		if ctx.Err() != nil {
			w.logger.Info("Prefetch worker shutting down")
			return
		}

		id, ok, err := w.queue.PopPrefetch(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Prefetch worker shutting down")
				return
			}
			w.logger.Error("Queue error", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(w.backoff):
			}
			continue
		}
		if !ok {
			continue
		}

		w.processJob(ctx, id)
	}
}

func (w *Worker) processJob(ctx context.Context, id int) {
	logger := w.logger.With(zap.String("job_id", strconv.Itoa(id)))
	logger.Debug("Prefetch started")

	article, ok := w.loader.GetArticleDetail(ctx, id)
	if !ok {
		logger.Warn("Prefetch failed: article unavailable")
		return
	}

	logger.Info("Prefetch complete", zap.String("title", article.Title))
}
