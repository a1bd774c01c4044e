package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"forem-reader/internal/model"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

const (
	badgerKeyPrefix = "article:"
	gcInterval      = 5 * time.Minute
)

// BadgerCache is the alternative detail cache backend. Payloads are stored
// gzip-compressed under "article:<id>" and follow the same validity rules
// as FileCache.
type BadgerCache struct {
	db     *badger.DB
	ttl    time.Duration
	logger *zap.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

// OpenBadgerCache opens (or creates) the database at path. Pass an empty
// path for an in-memory database.
func OpenBadgerCache(path string, ttl time.Duration, logger *zap.Logger) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Silence default logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}
	return newBadgerCache(db, ttl, logger, path != ""), nil
}

func newBadgerCache(db *badger.DB, ttl time.Duration, logger *zap.Logger, runGC bool) *BadgerCache {
	c := &BadgerCache{db: db, ttl: ttl, logger: logger, stop: make(chan struct{})}
	if runGC {
		c.wg.Add(1)
		go c.gcLoop()
	}
	return c
}

func (c *BadgerCache) gcLoop() {
	defer c.wg.Done()
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			if err := c.db.RunValueLogGC(0.7); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				c.logger.Warn("Value log GC failed", zap.Error(err))
			}
		}
	}
}

// Close stops the GC loop and closes the database.
func (c *BadgerCache) Close() error {
	close(c.stop)
	c.wg.Wait()
	return c.db.Close()
}

func badgerKey(id int) []byte {
	return []byte(badgerKeyPrefix + strconv.Itoa(id))
}

func (c *BadgerCache) TryRead(ctx context.Context, id int) (model.Article, bool) {
	if ctx.Err() != nil {
		return model.Article{}, false
	}
	var compressed []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Debug("Cache read failed", zap.Int("article_id", id), zap.Error(err))
		}
		return model.Article{}, false
	}

	data, err := gunzip(compressed)
	if err != nil {
		c.logger.Debug("Cache entry corrupt", zap.Int("article_id", id), zap.Error(err))
		return model.Article{}, false
	}
	return decodeEntry(data)
}

func (c *BadgerCache) Write(ctx context.Context, article model.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := detailPayload(article)
	if err != nil {
		return fmt.Errorf("caching article %d: %w", article.ID, err)
	}

	var compressed bytes.Buffer
	gzipWriter := gzip.NewWriter(&compressed)
	if _, err := gzipWriter.Write(data); err != nil {
		return fmt.Errorf("compressing article %d: %w", article.ID, err)
	}
	if err := gzipWriter.Close(); err != nil {
		return fmt.Errorf("compressing article %d: %w", article.ID, err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(badgerKey(article.ID), compressed.Bytes())
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Stats counts stored articles and their compressed size.
func (c *BadgerCache) Stats() (int, int64, error) {
	var (
		count int
		size  int64
	)
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
			size += it.Item().ValueSize()
		}
		return nil
	})
	return count, size, err
}

func gunzip(compressed []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
