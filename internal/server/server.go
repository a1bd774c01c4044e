package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"sync"
	"time"

	"forem-reader/internal/model"
	"forem-reader/internal/render"
	"forem-reader/internal/state"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

//go:embed templates static
var assets embed.FS

const defaultWait = 10 * time.Second

// RecentTracker records which articles were opened.
type RecentTracker interface {
	TouchRecent(ctx context.Context, id int) error
}

type Server struct {
	store  *state.Store
	recent RecentTracker
	logger *zap.Logger
	router *mux.Router

	mu     sync.Mutex
	server *http.Server
	pages  map[string]*template.Template
	flash  *flashes

	defaultTag string
	// wait bounds how long a handler waits for the store to settle.
	wait time.Duration
}

// NewServer builds the HTML front end over st. recent may be nil.
func NewServer(st *state.Store, recent RecentTracker, logger *zap.Logger) *Server {
	s := &Server{
		store:  st,
		recent: recent,
		logger: logger,
		router: mux.NewRouter(),
		pages:  parsePages(),
		flash:  newFlashes(),
		wait:   defaultWait,
	}
	s.routes()
	return s
}

func parsePages() map[string]*template.Template {
	funcs := template.FuncMap{"tagLink": render.TagLink}
	page := func(files ...string) *template.Template {
		files = append([]string{"templates/layout.html"}, files...)
		return template.Must(template.New("layout").Funcs(funcs).ParseFS(assets, files...))
	}
	return map[string]*template.Template{
		"index":     page("templates/index.html", "templates/partials/card.html"),
		"favorites": page("templates/favorites.html", "templates/partials/card.html"),
		"detail":    page("templates/detail.html"),
	}
}

func (s *Server) routes() {
	static, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	s.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	s.router.HandleFunc("/", s.handleIndex).Methods("GET")
	s.router.HandleFunc("/favorites", s.handleFavorites).Methods("GET")
	s.router.HandleFunc("/articles/{id:[0-9]+}", s.handleDetail).Methods("GET")
	s.router.HandleFunc("/articles/{id:[0-9]+}/favorite", s.handleFavorite).Methods("POST")
}

// WithDefaultTag sets the tag listed when a request names none.
func (s *Server) WithDefaultTag(tag string) *Server {
	s.defaultTag = tag
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("Web server listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

type pageData struct {
	Title         string
	Flash         string
	Error         string
	Tag           string
	Page          int
	PrevPage      int
	NextPage      int
	FavoriteCount int
	Cards         []render.CardView
	Detail        *render.DetailView
}

func (s *Server) newPage(r *http.Request, title string, st state.State) pageData {
	return pageData{
		Title:         title,
		Flash:         s.flash.pop(r),
		Tag:           st.Filter.Tag,
		Page:          st.Filter.Page,
		FavoriteCount: len(st.Favorites),
	}
}

func (s *Server) await(r *http.Request, pred func(state.State) bool) (state.State, error) {
	ctx, cancel := context.WithTimeout(r.Context(), s.wait)
	defer cancel()
	return s.store.Await(ctx, pred)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	filter := model.FilterParams{Tag: r.URL.Query().Get("tag")}
	if filter.Tag == "" {
		filter.Tag = s.defaultTag
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		filter.Page = page
	}
	filter = filter.Normalize()

	s.store.Dispatch(state.ListRequested{Filter: filter})
	st, err := s.await(r, func(st state.State) bool {
		return !st.Loading && st.Filter == filter
	})

	data := s.newPage(r, "#"+filter.Tag, st)
	data.Tag = filter.Tag
	data.Page = filter.Page
	data.PrevPage = filter.Page - 1
	data.NextPage = filter.Page + 1

	status := http.StatusOK
	switch {
	case err != nil:
		s.logger.Warn("List did not settle", zap.String("filter", filter.Key()), zap.Error(err))
		data.Error = "The article list is taking too long to load. Please try again."
		status = http.StatusGatewayTimeout
	case st.Error != "":
		data.Error = fmt.Sprintf("Could not load articles: %s", st.Error)
		status = http.StatusBadGateway
	default:
		data.Cards = render.NewCardViews(st.Articles, st.IsFavorite)
	}
	s.render(w, "index", status, data)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	st, err := s.loadDetail(r, id)
	if err != nil {
		s.logger.Warn("Detail did not settle", zap.Int("article_id", id), zap.Error(err))
		http.Error(w, "Article is taking too long to load", http.StatusGatewayTimeout)
		return
	}
	if st.Detail == nil {
		http.NotFound(w, r)
		return
	}

	if s.recent != nil {
		if err := s.recent.TouchRecent(r.Context(), id); err != nil {
			s.logger.Warn("Failed to record recent article", zap.Int("article_id", id), zap.Error(err))
		}
	}

	view := render.NewDetailView(*st.Detail, st.IsFavorite(id))
	data := s.newPage(r, st.Detail.Title, st)
	data.Detail = &view
	s.render(w, "detail", http.StatusOK, data)
}

func (s *Server) loadDetail(r *http.Request, id int) (state.State, error) {
	s.store.Dispatch(state.DetailRequested{ID: id})
	return s.await(r, func(st state.State) bool {
		return st.DetailID == id && !st.DetailLoading
	})
}

func (s *Server) handleFavorite(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	article, ok := findArticle(s.store.State(), id)
	if !ok {
		st, err := s.loadDetail(r, id)
		if err != nil || st.Detail == nil {
			http.NotFound(w, r)
			return
		}
		article = *st.Detail
	}

	s.store.Dispatch(state.FavoriteRequested{Article: article})
	s.flash.set(r, render.FavoriteMessage(s.store.State().IsFavorite(id)))
	http.Redirect(w, r, fmt.Sprintf("/articles/%d", id), http.StatusSeeOther)
}

// findArticle looks for id in the loaded detail, then in the list.
func findArticle(st state.State, id int) (model.Article, bool) {
	if st.Detail != nil && st.Detail.ID == id {
		return *st.Detail, true
	}
	for _, a := range st.Articles {
		if a.ID == id {
			return a, true
		}
	}
	return model.Article{}, false
}

func (s *Server) handleFavorites(w http.ResponseWriter, r *http.Request) {
	st := s.store.State()
	data := s.newPage(r, "Favorites", st)
	data.Cards = render.NewCardViews(st.Favorites, st.IsFavorite)
	s.render(w, "favorites", http.StatusOK, data)
}

func (s *Server) render(w http.ResponseWriter, page string, status int, data pageData) {
	tmpl, ok := s.pages[page]
	if !ok {
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.logger.Error("Template error", zap.String("page", page), zap.Error(err))
	}
}
