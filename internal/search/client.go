package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rebeliceyang/lazysearch/internal/filter"
	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

const defaultAPIVersion = "2024-07-01"

var (
	// ErrInvalidFilter is returned when a filter fails validation before being sent
	ErrInvalidFilter = errors.New("invalid filter expression")
	// ErrIncompleteConfig is returned when endpoint, index or key is missing
	ErrIncompleteConfig = errors.New("search service configuration is incomplete")
)

// APIError is an error response from the search service
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("search service returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("search service returned %d: %s", e.StatusCode, e.Message)
}

// Query holds the parameters of one search request
type Query struct {
	Search  string
	Filter  string
	OrderBy string
	Select  []string
	Top     int
	Skip    int
	Count   bool
}

// Result is one matching document
type Result struct {
	Score    float64                `json:"score"`
	Document map[string]interface{} `json:"document"`
}

// Page is one page of search results
type Page struct {
	Count   int64 // -1 when the service did not report a count
	Results []Result
}

// Client sends queries to a search service index
type Client struct {
	cfg        models.ServiceConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request logging
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithTimeout sets the request timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the configured service and index
func NewClient(cfg models.ServiceConfig, opts ...Option) (*Client, error) {
	if !cfg.IsComplete() {
		return nil, ErrIncompleteConfig
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Search runs one query. The filter is validated first and forwarded verbatim.
func (c *Client) Search(ctx context.Context, q Query) (*Page, error) {
	if q.Filter != "" {
		if result := filter.Validate(q.Filter); !result.IsValid {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFilter, strings.Join(result.Issues, "; "))
		}
	}

	body, err := requestBody(q)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)

	start := time.Now()
	c.logger.Debug("search request",
		zap.String("index", c.cfg.IndexName),
		zap.String("filter", q.Filter),
		zap.Int("top", q.Top),
		zap.Int("skip", q.Skip),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := parseError(resp.StatusCode, data)
		c.logger.Warn("search request rejected",
			zap.String("index", c.cfg.IndexName),
			zap.Int("status", resp.StatusCode),
			zap.String("code", apiErr.Code),
		)
		return nil, apiErr
	}

	page, err := parsePage(data)
	if err != nil {
		return nil, err
	}

	c.logger.Info("search completed",
		zap.String("index", c.cfg.IndexName),
		zap.Int("results", len(page.Results)),
		zap.Int64("count", page.Count),
		zap.Duration("elapsed", time.Since(start)),
	)
	return page, nil
}

// Paginate fetches consecutive pages using top/skip until a short page is
// returned or maxPages pages have been read
func (c *Client) Paginate(ctx context.Context, q Query, maxPages int) ([]Result, error) {
	if q.Top <= 0 {
		q.Top = 50
	}
	if maxPages <= 0 {
		maxPages = 1
	}

	var all []Result
	for i := 0; i < maxPages; i++ {
		page, err := c.Search(ctx, q)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", i+1, err)
		}
		all = append(all, page.Results...)
		if len(page.Results) < q.Top {
			break
		}
		q.Skip += q.Top
	}
	return all, nil
}

func (c *Client) searchURL() string {
	endpoint := strings.TrimRight(c.cfg.Endpoint, "/")
	return fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s",
		endpoint, url.PathEscape(c.cfg.IndexName), url.QueryEscape(c.cfg.APIVersion))
}

func requestBody(q Query) ([]byte, error) {
	search := q.Search
	if search == "" {
		search = "*"
	}

	body, err := sjson.SetBytes([]byte(`{}`), "search", search)
	if err != nil {
		return nil, err
	}

	sets := []struct {
		path  string
		value interface{}
		when  bool
	}{
		{"filter", q.Filter, q.Filter != ""},
		{"orderby", q.OrderBy, q.OrderBy != ""},
		{"select", strings.Join(q.Select, ","), len(q.Select) > 0},
		{"top", q.Top, q.Top > 0},
		{"skip", q.Skip, q.Skip > 0},
		{"count", true, q.Count},
	}
	for _, s := range sets {
		if !s.when {
			continue
		}
		if body, err = sjson.SetBytes(body, s.path, s.value); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func parsePage(data []byte) (*Page, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("search service returned malformed JSON")
	}

	root := gjson.ParseBytes(data)
	page := &Page{Count: -1}
	if count := root.Get(`@odata\.count`); count.Exists() {
		page.Count = count.Int()
	}

	root.Get("value").ForEach(func(_, doc gjson.Result) bool {
		r := Result{
			Score:    doc.Get(`@search\.score`).Float(),
			Document: map[string]interface{}{},
		}
		doc.ForEach(func(key, value gjson.Result) bool {
			if !strings.HasPrefix(key.String(), "@search.") {
				r.Document[key.String()] = value.Value()
			}
			return true
		})
		page.Results = append(page.Results, r)
		return true
	})

	return page, nil
}

func parseError(status int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if gjson.ValidBytes(data) {
		root := gjson.ParseBytes(data)
		apiErr.Code = root.Get("error.code").String()
		apiErr.Message = root.Get("error.message").String()
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
