package render

import (
	"html/template"
	"math"
	"net/url"
	"strings"
	"time"

	"forem-reader/internal/model"

	"github.com/go-shiori/go-readability"
)

const (
	// DetailDateLayout renders as e.g. "03/14/2024 Thursday 09:26".
	DetailDateLayout = "01/02/2006 Monday 15:04"
	CardDateLayout   = "Jan 02, 2006"

	PlaceholderImage = "/static/placeholder.svg"

	wordsPerMinute = 200
	excerptLength  = 200
)

// Tags returns the article's tags, preferring tag_list over tags.
func Tags(article model.Article) []string {
	if len(article.TagList) > 0 {
		return []string(article.TagList)
	}
	return []string(article.Tags)
}

func ImageURL(article model.Article) string {
	switch {
	case article.CoverImage != "":
		return article.CoverImage
	case article.SocialImage != "":
		return article.SocialImage
	default:
		return PlaceholderImage
	}
}

// FormatDate formats t with layout, or DetailDateLayout when layout is empty.
// The zero time renders as an empty string.
func FormatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return ""
	}
	if layout == "" {
		layout = DetailDateLayout
	}
	return t.Format(layout)
}

// TagLink points at the list page filtered by tag.
func TagLink(tag string) string {
	return "/?" + url.Values{"tag": {tag}}.Encode()
}

// Stats summarises an article body for display.
type Stats struct {
	Excerpt string
	Words   int
	Minutes int
}

// ReadingStats extracts the readable text of bodyHTML and estimates how long
// it takes to read. An empty or unparseable body yields zero Stats.
func ReadingStats(bodyHTML string, pageURL *url.URL) Stats {
	if strings.TrimSpace(bodyHTML) == "" {
		return Stats{}
	}
	if pageURL == nil {
		pageURL = &url.URL{Scheme: "https", Host: "dev.to"}
	}

	parsed, err := readability.FromReader(strings.NewReader(bodyHTML), pageURL)
	if err != nil {
		return Stats{}
	}

	text := parsed.TextContent
	words := len(strings.Fields(text))
	excerpt := strings.TrimSpace(parsed.Excerpt)
	if excerpt == "" {
		excerpt = truncate(strings.Join(strings.Fields(text), " "), excerptLength)
	}

	return Stats{
		Excerpt: excerpt,
		Words:   words,
		Minutes: int(math.Ceil(float64(words) / wordsPerMinute)),
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

// CardView is the list-page shape of an article.
type CardView struct {
	ID          int
	Title       string
	Description string
	Author      string
	Avatar      string
	Image       string
	Date        string
	Tags        []string
	Reactions   int
	Comments    int
	Favorite    bool
}

func NewCardView(article model.Article, favorite bool) CardView {
	return CardView{
		ID:          article.ID,
		Title:       article.Title,
		Description: article.Description,
		Author:      article.User.Name,
		Avatar:      article.User.ProfileImage90,
		Image:       ImageURL(article),
		Date:        FormatDate(article.PublishedAt, CardDateLayout),
		Tags:        Tags(article),
		Reactions:   article.PositiveReactions,
		Comments:    article.CommentsCount,
		Favorite:    favorite,
	}
}

// NewCardViews builds cards for list, marking those isFavorite reports.
func NewCardViews(list []model.Article, isFavorite func(int) bool) []CardView {
	cards := make([]CardView, 0, len(list))
	for _, a := range list {
		cards = append(cards, NewCardView(a, isFavorite != nil && isFavorite(a.ID)))
	}
	return cards
}

// DetailView is the detail-page shape of an article.
type DetailView struct {
	ID          int
	Title       string
	Description string
	Subheader   string
	Author      string
	Avatar      string
	Image       string
	OriginalURL string
	// Body is the API's rendered HTML, trusted as-is.
	Body     template.HTML
	Tags     []string
	Stats    Stats
	Favorite bool
}

func NewDetailView(article model.Article, favorite bool) DetailView {
	var pageURL *url.URL
	if u, err := url.Parse(article.URL); err == nil && u.Host != "" {
		pageURL = u
	}

	subheader := article.User.Name
	if date := FormatDate(article.PublishedAt, DetailDateLayout); date != "" {
		subheader += " - " + date
	}

	return DetailView{
		ID:          article.ID,
		Title:       article.Title,
		Description: article.Description,
		Subheader:   subheader,
		Author:      article.User.Name,
		Avatar:      article.User.ProfileImage90,
		Image:       ImageURL(article),
		OriginalURL: article.URL,
		Body:        template.HTML(article.BodyHTML),
		Tags:        Tags(article),
		Stats:       ReadingStats(article.BodyHTML, pageURL),
		Favorite:    favorite,
	}
}

// FavoriteMessage is the toaster text shown after a favorite intent.
func FavoriteMessage(favorite bool) string {
	if favorite {
		return "This article added to your favorites"
	}
	return "This article removed from your favorites"
}
