package saga

import (
	"context"
	"time"

	"forem-reader/internal/model"
	"forem-reader/internal/state"

	"go.uber.org/zap"
)

const favoriteWriteTimeout = 2 * time.Second

// FavoriteRepository persists favorites across runs.
type FavoriteRepository interface {
	SaveFavorite(ctx context.Context, article model.Article) error
	Favorites(ctx context.Context) ([]model.Article, error)
}

// LoadFavorites seeds the store with the persisted favorites.
func LoadFavorites(ctx context.Context, st *state.Store, repo FavoriteRepository) error {
	favorites, err := repo.Favorites(ctx)
	if err != nil {
		return err
	}
	if len(favorites) > 0 {
		st.Dispatch(state.FavoritesLoaded{Articles: favorites})
	}
	return nil
}

// PersistFavorites saves every favorite intent to repo. Write failures are
// logged; the in-memory favorite stays.
func PersistFavorites(st *state.Store, repo FavoriteRepository, logger *zap.Logger) (unsubscribe func()) {
	return st.Subscribe(func(action state.Action, _ state.State) {
		fav, ok := action.(state.FavoriteRequested)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), favoriteWriteTimeout)
		defer cancel()
		if err := repo.SaveFavorite(ctx, fav.Article); err != nil {
			logger.Warn("Failed to persist favorite",
				zap.Int("article_id", fav.Article.ID),
				zap.Error(err))
		}
	})
}
