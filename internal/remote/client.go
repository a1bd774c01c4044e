package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"forem-reader/internal/model"

	"go.uber.org/zap"
)

const (
	DefaultTimeout = 4999 * time.Millisecond
	DefaultPerPage = 15

	acceptHeader = "application/vnd.forem.api-v1+json"

	// Detail payloads with long bodies stay well under this.
	maxBodyBytes = 8 << 20
)

// Source is the remote tier as seen by the data access layer.
type Source interface {
	FetchList(ctx context.Context, filter model.FilterParams) ([]model.Article, error)
	FetchDetail(ctx context.Context, id int) (model.Article, error)
}

type Options struct {
	BaseURL string
	PerPage int
	Timeout time.Duration
	APIKey  string
	// HTTPClient overrides the transport; tests point it at httptest servers.
	HTTPClient *http.Client
}

// Client talks to the Forem article API. It never retries.
type Client struct {
	base    *url.URL
	perPage int
	timeout time.Duration
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(opts Options, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(opts.BaseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", opts.BaseURL)
	}

	c := &Client{
		base:    base,
		perPage: opts.PerPage,
		timeout: opts.Timeout,
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
		logger:  logger,
	}
	if c.perPage <= 0 {
		c.perPage = DefaultPerPage
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c, nil
}

// FetchList returns one page of article summaries exactly as the API sent them.
func (c *Client) FetchList(ctx context.Context, filter model.FilterParams) ([]model.Article, error) {
	filter = filter.Normalize()
	query := url.Values{}
	query.Set("tag", filter.Tag)
	query.Set("page", strconv.Itoa(filter.Page))
	query.Set("per_page", strconv.Itoa(c.perPage))

	body, err := c.get(ctx, "list articles", "articles", query)
	if err != nil {
		return nil, err
	}

	articles, err := model.DecodeArticles(body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Op: "list articles", Err: err}
	}
	return articles, nil
}

// FetchDetail returns the full article, including its raw payload.
func (c *Client) FetchDetail(ctx context.Context, id int) (model.Article, error) {
	op := fmt.Sprintf("get article %d", id)
	body, err := c.get(ctx, op, "articles/"+strconv.Itoa(id), nil)
	if err != nil {
		return model.Article{}, err
	}

	article, err := model.DecodeArticle(body)
	if err != nil {
		return model.Article{}, &Error{Kind: KindDecode, Op: op, Err: err}
	}
	return article, nil
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.base.ResolveReference(&url.URL{Path: path})
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", acceptHeader)
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classify(ctx, op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("API call",
		zap.String("op", op),
		zap.String("url", endpoint.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &Error{Kind: KindHTTP, Op: op, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classify(ctx, op, err)
	}
	return body, nil
}

func classify(ctx context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	}
	return &Error{Kind: KindNetwork, Op: op, Err: err}
}
