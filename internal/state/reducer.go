package state

import "forem-reader/internal/model"

// State is the client's view of articles, request progress and favorites.
type State struct {
	Filter   model.FilterParams
	Articles []model.Article
	Loading  bool
	Error    string

	DetailID      int
	Detail        *model.Article
	DetailLoading bool
	// DetailMissing is set when the last detail request produced nothing.
	DetailMissing bool

	Favorites []model.Article
}

// Initial returns the state before any request was made.
func Initial() State {
	return State{Filter: model.FilterParams{}.Normalize()}
}

// IsFavorite reports whether an article with id is in the favorites.
func (s State) IsFavorite(id int) bool {
	for _, f := range s.Favorites {
		if f.ID == id {
			return true
		}
	}
	return false
}

// Reduce returns the state that results from applying action to s. It does
// not modify s or anything s references.
func Reduce(s State, action Action) State {
	switch a := action.(type) {
	case ListRequested:
		s.Filter = a.Filter.Normalize()
		s.Loading = true
		s.Error = ""

	case ListSucceeded:
		s.Filter = a.Filter.Normalize()
		s.Articles = append([]model.Article(nil), a.Articles...)
		s.Loading = false
		s.Error = ""

	case ListFailed:
		s.Filter = a.Filter.Normalize()
		s.Articles = nil
		s.Loading = false
		s.Error = a.Message

	case DetailRequested:
		if s.DetailID != a.ID {
			s.Detail = nil
		}
		s.DetailID = a.ID
		s.DetailLoading = true
		s.DetailMissing = false

	case DetailSucceeded:
		s.DetailID = a.ID
		s.DetailLoading = false
		if a.Found {
			article := a.Article
			s.Detail = &article
			s.DetailMissing = false
		} else {
			s.Detail = nil
			s.DetailMissing = true
		}

	case DetailFailed:
		s.DetailID = a.ID
		s.DetailLoading = false
		s.Detail = nil
		s.DetailMissing = true

	case FavoriteRequested:
		if !s.IsFavorite(a.Article.ID) {
			s.Favorites = appendCopy(s.Favorites, a.Article)
		}

	case FavoritesLoaded:
		for _, article := range a.Articles {
			if !s.IsFavorite(article.ID) {
				s.Favorites = appendCopy(s.Favorites, article)
			}
		}
	}
	return s
}

// appendCopy appends to a fresh backing array so earlier states keep theirs.
func appendCopy(list []model.Article, article model.Article) []model.Article {
	out := make([]model.Article, len(list), len(list)+1)
	copy(out, list)
	return append(out, article)
}
