package articles

import (
	"context"

	"forem-reader/internal/model"
	"forem-reader/internal/remote"
	"forem-reader/internal/store"

	"go.uber.org/zap"
)

// Service composes the remote API and the local detail cache.
type Service struct {
	remote remote.Source
	cache  store.Cache
	logger *zap.Logger
}

func NewService(source remote.Source, cache store.Cache, logger *zap.Logger) *Service {
	return &Service{remote: source, cache: cache, logger: logger}
}

// GetArticles fetches a page of summaries from the API. Lists are never
// cached and failures are returned to the caller.
func (s *Service) GetArticles(ctx context.Context, filter model.FilterParams) ([]model.Article, error) {
	filter = filter.Normalize()
	articles, err := s.remote.FetchList(ctx, filter)
	if err != nil {
		s.logger.Error("List fetch failed",
			zap.String("tag", filter.Tag),
			zap.Int("page", filter.Page),
			zap.Error(err))
		return nil, err
	}
	return articles, nil
}

// GetArticleDetail reads through the cache. ok is false when the article
// could not be produced; the reason is only logged.
func (s *Service) GetArticleDetail(ctx context.Context, id int) (article model.Article, ok bool) {
	logger := s.logger.With(zap.Int("article_id", id))

	if cached, hit := s.cache.TryRead(ctx, id); hit {
		logger.Debug("Cache hit")
		return cached, true
	}

	logger.Debug("Cache miss, fetching")
	fetched, err := s.remote.FetchDetail(ctx, id)
	if err != nil {
		logger.Warn("Detail fetch failed", zap.Bool("timeout", remote.IsTimeout(err)), zap.Error(err))
		return model.Article{}, false
	}

	if err := s.cache.Write(ctx, fetched); err != nil {
		logger.Warn("Cache write skipped", zap.Error(err))
	}
	return fetched, true
}
