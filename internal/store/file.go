package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"forem-reader/internal/model"

	"go.uber.org/zap"
)

const entryMode os.FileMode = 0o644

// FileCache keeps one JSON file per article: {dir}/article-{id}.json.
// Entries never expire unless a TTL is set.
type FileCache struct {
	dir    string
	ttl    time.Duration
	logger *zap.Logger
	clock  func() time.Time
}

func NewFileCache(dir string, ttl time.Duration, logger *zap.Logger) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &FileCache{dir: dir, ttl: ttl, logger: logger, clock: time.Now}, nil
}

// Path returns the cache file for id.
func (c *FileCache) Path(id int) string {
	return filepath.Join(c.dir, fmt.Sprintf("article-%d.json", id))
}

func (c *FileCache) TryRead(ctx context.Context, id int) (model.Article, bool) {
	if ctx.Err() != nil {
		return model.Article{}, false
	}
	logger := c.logger.With(zap.Int("article_id", id))
	path := c.Path(id)

	info, err := os.Stat(path)
	if err != nil {
		return model.Article{}, false
	}
	if c.ttl > 0 && c.clock().Sub(info.ModTime()) > c.ttl {
		logger.Debug("Cache entry expired", zap.Time("mtime", info.ModTime()))
		return model.Article{}, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("Cache entry unreadable", zap.Error(err))
		return model.Article{}, false
	}

	article, ok := decodeEntry(data)
	if !ok {
		logger.Debug("Cache entry invalid, treating as miss", zap.String("path", path))
		return model.Article{}, false
	}
	return article, true
}

// Write persists the raw detail payload. Summaries are rejected with
// ErrNotDetail so they can never replace a full entry.
func (c *FileCache) Write(ctx context.Context, article model.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := detailPayload(article)
	if err != nil {
		return fmt.Errorf("caching article %d: %w", article.ID, err)
	}

	tmp, err := os.CreateTemp(c.dir, ".article-*.tmp")
	if err != nil {
		return fmt.Errorf("caching article %d: %w", article.ID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("caching article %d: %w", article.ID, err)
	}
	// CreateTemp uses 0600; entries are plain world-readable JSON.
	if err := tmp.Chmod(entryMode); err != nil {
		tmp.Close()
		return fmt.Errorf("caching article %d: %w", article.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("caching article %d: %w", article.ID, err)
	}
	if err := os.Rename(tmp.Name(), c.Path(article.ID)); err != nil {
		return fmt.Errorf("caching article %d: %w", article.ID, err)
	}
	return nil
}

// Stats counts cache entries and their total size in bytes.
func (c *FileCache) Stats() (int, int64, error) {
	entries, err := c.entries()
	if err != nil {
		return 0, 0, err
	}
	var size int64
	for _, e := range entries {
		size += e.Size()
	}
	return len(entries), size, nil
}

// Prune deletes entries last written more than olderThan ago.
func (c *FileCache) Prune(olderThan time.Duration) (int, error) {
	entries, err := c.entries()
	if err != nil {
		return 0, err
	}
	cutoff := c.clock().Add(-olderThan)
	deleted := 0
	for _, e := range entries {
		if !e.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return deleted, fmt.Errorf("pruning %s: %w", e.Name(), err)
		}
		deleted++
	}
	return deleted, nil
}

func (c *FileCache) entries() ([]os.FileInfo, error) {
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("reading cache dir: %w", err)
	}
	var out []os.FileInfo
	for _, d := range dirEntries {
		name := d.Name()
		if d.IsDir() || !strings.HasPrefix(name, "article-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}
