package state

import (
	"forem-reader/internal/model"

	"github.com/google/uuid"
)

// Action is a message applied to the store. Request actions are produced by
// the presentation layer; result actions by the orchestrator.
type Action interface {
	Type() string
}

const (
	TypeListRequested     = "articles/getArticlesRequest"
	TypeListSucceeded     = "articles/getArticlesSuccess"
	TypeListFailed        = "articles/getArticlesFailure"
	TypeDetailRequested   = "articles/getArticleDetailRequest"
	TypeDetailSucceeded   = "articles/getArticleDetailSuccess"
	TypeDetailFailed      = "articles/getArticleDetailFailure"
	TypeFavoriteRequested = "user/favoriteItemRequest"
	TypeFavoritesLoaded   = "user/favoritesLoaded"
)

type ListRequested struct {
	Filter model.FilterParams
	// Token is stamped by the orchestrator before the action is applied.
	Token uuid.UUID
}

type ListSucceeded struct {
	Filter   model.FilterParams
	Articles []model.Article
	Token    uuid.UUID
}

type ListFailed struct {
	Filter  model.FilterParams
	Message string
	Token   uuid.UUID
}

type DetailRequested struct {
	ID    int
	Token uuid.UUID
}

// DetailSucceeded is emitted for every finished detail request. Found is
// false when the article could not be loaded.
type DetailSucceeded struct {
	ID      int
	Article model.Article
	Found   bool
	Token   uuid.UUID
}

// DetailFailed is handled by the reducer but never emitted by the
// orchestrator; detail failures surface as DetailSucceeded{Found: false}.
type DetailFailed struct {
	ID      int
	Message string
	Token   uuid.UUID
}

type FavoriteRequested struct {
	Article model.Article
}

// FavoritesLoaded seeds the favorites from the session store at startup.
type FavoritesLoaded struct {
	Articles []model.Article
}

func (ListRequested) Type() string     { return TypeListRequested }
func (ListSucceeded) Type() string     { return TypeListSucceeded }
func (ListFailed) Type() string        { return TypeListFailed }
func (DetailRequested) Type() string   { return TypeDetailRequested }
func (DetailSucceeded) Type() string   { return TypeDetailSucceeded }
func (DetailFailed) Type() string      { return TypeDetailFailed }
func (FavoriteRequested) Type() string { return TypeFavoriteRequested }
func (FavoritesLoaded) Type() string   { return TypeFavoritesLoaded }
