package saga

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"forem-reader/internal/model"
	"forem-reader/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memoryFavorites struct {
	mu      sync.Mutex
	saved   []model.Article
	saveErr error
}

func (m *memoryFavorites) SaveFavorite(ctx context.Context, article model.Article) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, article)
	return nil
}

func (m *memoryFavorites) Favorites(ctx context.Context) ([]model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Article(nil), m.saved...), nil
}

func TestLoadFavorites(t *testing.T) {
	repo := &memoryFavorites{saved: []model.Article{{ID: 1}, {ID: 2}}}
	st := state.NewStore(state.Initial(), zap.NewNop())

	require.NoError(t, LoadFavorites(context.Background(), st, repo))
	assert.True(t, st.State().IsFavorite(1))
	assert.True(t, st.State().IsFavorite(2))
}

func TestPersistFavorites(t *testing.T) {
	repo := &memoryFavorites{}
	st := state.NewStore(state.Initial(), zap.NewNop())
	unsubscribe := PersistFavorites(st, repo, zap.NewNop())

	st.Dispatch(state.FavoriteRequested{Article: model.Article{ID: 7, Title: "Seven"}})
	st.Dispatch(state.ListRequested{})
	unsubscribe()
	st.Dispatch(state.FavoriteRequested{Article: model.Article{ID: 8}})

	saved, _ := repo.Favorites(context.Background())
	require.Len(t, saved, 1)
	assert.Equal(t, 7, saved[0].ID)
	assert.True(t, st.State().IsFavorite(8))
}

func TestPersistFavorites_WriteFailureKeepsFavorite(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := &memoryFavorites{saveErr: errors.New("redis down")}
	st := state.NewStore(state.Initial(), zap.NewNop())
	PersistFavorites(st, repo, zap.New(core))

	st.Dispatch(state.FavoriteRequested{Article: model.Article{ID: 7}})

	assert.True(t, st.State().IsFavorite(7))
	assert.Equal(t, 1, logs.FilterMessage("Failed to persist favorite").Len())
}

type blockingFavorites struct {
	memoryFavorites
	entered chan struct{}
	release chan struct{}
}

func (b *blockingFavorites) SaveFavorite(ctx context.Context, article model.Article) error {
	close(b.entered)
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	return b.memoryFavorites.SaveFavorite(ctx, article)
}

func TestPersistFavorites_SlowRepositoryDoesNotStallDispatch(t *testing.T) {
	repo := &blockingFavorites{entered: make(chan struct{}), release: make(chan struct{})}
	st := state.NewStore(state.Initial(), zap.NewNop())
	PersistFavorites(st, repo, zap.NewNop())

	saved := make(chan struct{})
	go func() {
		st.Dispatch(state.FavoriteRequested{Article: model.Article{ID: 7}})
		close(saved)
	}()
	<-repo.entered

	start := time.Now()
	st.Dispatch(state.ListRequested{})
	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.True(t, st.State().Loading)

	close(repo.release)
	<-saved
	favorites, _ := repo.Favorites(context.Background())
	require.Len(t, favorites, 1)
	assert.Equal(t, 7, favorites[0].ID)
}
