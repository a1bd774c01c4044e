package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"forem-reader/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	favoritesListKey = "list:favorites"
	favoritesSetKey  = "set:favorites"
	recentListKey    = "list:recent"
	prefetchQueueKey = "queue:prefetch"

	recentLimit = 50
)

// SessionStore keeps per-user session data in Redis: favorites, recently
// viewed ids and the prefetch queue.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(ctx context.Context, redisAddr string) (*SessionStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &SessionStore{rdb: rdb}, nil
}

func (s *SessionStore) Close() error {
	return s.rdb.Close()
}

func favoriteKey(id int) string {
	return fmt.Sprintf("favorite:%d", id)
}

// SaveFavorite records article as a favorite. The body is dropped; only the
// card metadata is kept. Saving an existing favorite refreshes its metadata
// without moving it.
func (s *SessionStore) SaveFavorite(ctx context.Context, article model.Article) error {
	meta := article
	meta.BodyHTML = ""
	meta.BodyMarkdown = ""
	meta.Raw = nil

	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}

	added, err := s.rdb.SAdd(ctx, favoritesSetKey, article.ID).Result()
	if err != nil {
		return err
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, favoriteKey(article.ID), data, 0)
	if added == 1 {
		pipe.RPush(ctx, favoritesListKey, article.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// Favorites returns saved favorites in the order they were added.
func (s *SessionStore) Favorites(ctx context.Context) ([]model.Article, error) {
	ids, err := s.rdb.LRange(ctx, favoritesListKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var articles []model.Article
	for _, idStr := range ids {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		val, err := s.rdb.Get(ctx, favoriteKey(id)).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		} else if err != nil {
			return nil, err
		}

		var a model.Article
		if err := json.Unmarshal(val, &a); err == nil {
			articles = append(articles, a)
		}
	}
	return articles, nil
}

// TouchRecent moves id to the front of the recently viewed list.
func (s *SessionStore) TouchRecent(ctx context.Context, id int) error {
	pipe := s.rdb.Pipeline()
	pipe.LRem(ctx, recentListKey, 0, id)
	pipe.LPush(ctx, recentListKey, id)
	pipe.LTrim(ctx, recentListKey, 0, recentLimit-1) // Keep only last 50 items
	_, err := pipe.Exec(ctx)
	return err
}

// Recent returns up to limit recently viewed ids, newest first.
func (s *SessionStore) Recent(ctx context.Context, limit int) ([]int, error) {
	if limit <= 0 {
		return nil, nil
	}
	vals, err := s.rdb.LRange(ctx, recentListKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(vals))
	for _, v := range vals {
		if id, err := strconv.Atoi(v); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// EnqueuePrefetch queues article ids for the cache warmer.
func (s *SessionStore) EnqueuePrefetch(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	vals := make([]interface{}, len(ids))
	for i, id := range ids {
		vals[i] = id
	}
	return s.rdb.LPush(ctx, prefetchQueueKey, vals...).Err()
}

// PopPrefetch waits up to timeout for a queued id. ok is false when the
// wait ended without a job.
func (s *SessionStore) PopPrefetch(ctx context.Context, timeout time.Duration) (id int, ok bool, err error) {
	result, err := s.rdb.BRPop(ctx, timeout, prefetchQueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	id, err = strconv.Atoi(result[1])
	if err != nil {
		return 0, false, fmt.Errorf("invalid prefetch job %q: %w", result[1], err)
	}
	return id, true, nil
}
