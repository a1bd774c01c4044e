package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"forem-reader/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const detailJSON = `{"id":42,"title":"X","body_html":"<p>Y</p>"}`

func testFileCache(t *testing.T) *FileCache {
	t.Helper()
	c, err := NewFileCache(t.TempDir(), 0, zap.NewNop())
	require.NoError(t, err)
	return c
}

func mustDecode(t *testing.T, payload string) model.Article {
	t.Helper()
	a, err := model.DecodeArticle([]byte(payload))
	require.NoError(t, err)
	return a
}

func TestFileCache_WriteThenRead(t *testing.T) {
	c := testFileCache(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, mustDecode(t, detailJSON)))

	raw, err := os.ReadFile(filepath.Join(c.dir, "article-42.json"))
	require.NoError(t, err)
	assert.Equal(t, detailJSON, string(raw), "file must hold the exact payload")

	got, ok := c.TryRead(ctx, 42)
	require.True(t, ok)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, "<p>Y</p>", got.BodyHTML)
}

func TestFileCache_EntriesAreWorldReadable(t *testing.T) {
	c := testFileCache(t)
	require.NoError(t, c.Write(context.Background(), mustDecode(t, detailJSON)))

	info, err := os.Stat(c.Path(42))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestFileCache_MissingEntry(t *testing.T) {
	c := testFileCache(t)
	_, ok := c.TryRead(context.Background(), 7)
	assert.False(t, ok)
}

func TestFileCache_CorruptEntriesAreMisses(t *testing.T) {
	tests := map[string]string{
		"malformed":  `{"id":7,"title":`,
		"missing id": `{"title":"no id","body_html":"<p></p>"}`,
		"not object": `[1,2,3]`,
		"empty":      ``,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			c := testFileCache(t)
			require.NoError(t, os.WriteFile(c.Path(7), []byte(content), 0o644))

			_, ok := c.TryRead(context.Background(), 7)
			assert.False(t, ok)
		})
	}
}

func TestFileCache_SummaryNeverOverwritesDetail(t *testing.T) {
	c := testFileCache(t)
	ctx := context.Background()
	require.NoError(t, c.Write(ctx, mustDecode(t, detailJSON)))

	summary := mustDecode(t, `{"id":42,"title":"summary only"}`)
	err := c.Write(ctx, summary)
	assert.True(t, errors.Is(err, ErrNotDetail))

	raw, err := os.ReadFile(c.Path(42))
	require.NoError(t, err)
	assert.Equal(t, detailJSON, string(raw))
}

func TestFileCache_RejectsPayloadWithoutID(t *testing.T) {
	c := testFileCache(t)
	err := c.Write(context.Background(), mustDecode(t, `{"title":"x","body_html":"<p></p>"}`))
	assert.True(t, errors.Is(err, ErrNotDetail))

	count, _, err := c.Stats()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestFileCache_WriteWithoutRawEncodes(t *testing.T) {
	c := testFileCache(t)
	ctx := context.Background()

	require.NoError(t, c.Write(ctx, model.Article{ID: 5, Title: "built", BodyHTML: "<p>b</p>"}))
	got, ok := c.TryRead(ctx, 5)
	require.True(t, ok)
	assert.Equal(t, "built", got.Title)
}

func TestFileCache_TTL(t *testing.T) {
	c, err := NewFileCache(t.TempDir(), time.Hour, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, c.Write(ctx, mustDecode(t, detailJSON)))

	_, ok := c.TryRead(ctx, 42)
	assert.True(t, ok)

	c.clock = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, ok = c.TryRead(ctx, 42)
	assert.False(t, ok, "expired entry should be a miss")
}

func TestFileCache_StatsAndPrune(t *testing.T) {
	c := testFileCache(t)
	ctx := context.Background()
	require.NoError(t, c.Write(ctx, mustDecode(t, detailJSON)))
	require.NoError(t, c.Write(ctx, mustDecode(t, `{"id":43,"body_html":""}`)))
	require.NoError(t, os.WriteFile(filepath.Join(c.dir, "notes.txt"), []byte("ignored"), 0o644))

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(c.Path(43), old, old))

	count, size, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Positive(t, size)

	deleted, err := c.Prune(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, ok := c.TryRead(ctx, 42)
	assert.True(t, ok)
	_, ok = c.TryRead(ctx, 43)
	assert.False(t, ok)
}

func TestNewFileCache_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub", "deep")
	_, err := NewFileCache(dir, 0, zap.NewNop())
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
