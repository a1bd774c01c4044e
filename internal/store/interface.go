package store

import (
	"context"
	"encoding/json"
	"errors"

	"forem-reader/internal/model"
)

var (
	ErrNotFound = errors.New("article not found")
	// ErrNotDetail rejects payloads that lack an id or a body_html field.
	ErrNotDetail = errors.New("payload is not a full article detail")
)

// Cache is the local tier for article detail payloads. TryRead never
// fails: anything it cannot use is reported as a miss.
type Cache interface {
	TryRead(ctx context.Context, id int) (model.Article, bool)
	Write(ctx context.Context, article model.Article) error
}

// decodeEntry accepts a stored payload only if it is a JSON object with an id.
func decodeEntry(data []byte) (model.Article, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return model.Article{}, false
	}
	if _, ok := fields["id"]; !ok {
		return model.Article{}, false
	}
	article, err := model.DecodeArticle(data)
	if err != nil {
		return model.Article{}, false
	}
	return article, true
}

// detailPayload returns the bytes to persist for article, or ErrNotDetail
// when the payload does not carry both an id and a body_html field.
func detailPayload(article model.Article) ([]byte, error) {
	data, err := article.Payload()
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, ErrNotDetail
	}
	if _, ok := fields["id"]; !ok {
		return nil, ErrNotDetail
	}
	if _, ok := fields["body_html"]; !ok {
		return nil, ErrNotDetail
	}
	return data, nil
}
