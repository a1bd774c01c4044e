package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Author is the user sub-record attached to every article.
type Author struct {
	Name           string `json:"name"`
	Username       string `json:"username"`
	ProfileImage   string `json:"profile_image"`
	ProfileImage90 string `json:"profile_image_90"`
}

// Article is a record returned by the article API. List results are
// summaries; detail results also carry BodyHTML.
type Article struct {
	ID                  int       `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	BodyHTML            string    `json:"body_html,omitempty"`
	BodyMarkdown        string    `json:"body_markdown,omitempty"`
	URL                 string    `json:"url"`
	Path                string    `json:"path"`
	CoverImage          string    `json:"cover_image"`
	SocialImage         string    `json:"social_image"`
	PublishedAt         time.Time `json:"published_at"`
	ReadablePublishDate string    `json:"readable_publish_date"`
	ReadingTimeMinutes  int       `json:"reading_time_minutes"`
	PositiveReactions   int       `json:"positive_reactions_count"`
	CommentsCount       int       `json:"comments_count"`
	TagList             TagList   `json:"tag_list"`
	Tags                TagList   `json:"tags"`
	User                Author    `json:"user"`

	// Raw is the exact payload the article was decoded from.
	Raw json.RawMessage `json:"-"`
}

// HasBody reports whether the article is a full detail record.
func (a Article) HasBody() bool {
	return a.BodyHTML != ""
}

// DecodeArticle parses a single article payload and keeps a copy of it in Raw.
func DecodeArticle(data []byte) (Article, error) {
	var a Article
	if err := json.Unmarshal(data, &a); err != nil {
		return Article{}, err
	}
	a.Raw = append(json.RawMessage(nil), data...)
	return a, nil
}

// DecodeArticles parses a list payload. Each element keeps its own raw bytes.
func DecodeArticles(data []byte) ([]Article, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(raws))
	for i, raw := range raws {
		a, err := DecodeArticle(raw)
		if err != nil {
			return nil, fmt.Errorf("article %d: %w", i, err)
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// Payload returns the bytes the article should be persisted as: the raw
// payload when present, a fresh encoding otherwise.
func (a Article) Payload() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	return json.Marshal(a)
}

// TagList decodes both shapes the API uses for tag_list and tags. The list
// endpoint sends tag_list as an array and tags as a string; the detail
// endpoint swaps them.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = nil
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = SplitTags(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tag_list: %w", err)
	}
	*t = list
	return nil
}

// SplitTags splits a delimited tag string, dropping empty items.
func SplitTags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}
