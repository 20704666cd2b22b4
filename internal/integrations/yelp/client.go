package yelp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"business-recommender/internal/domain"
)

const defaultBaseURL = "https://api.yelp.com"

// searchResponse is the subset of the Business Search response we keep.
type searchResponse struct {
	Businesses []business `json:"businesses"`
}

type business struct {
	Name        string            `json:"name"`
	ReviewCount int               `json:"review_count"`
	Rating      float64           `json:"rating"`
	Location    domain.Location   `json:"location"`
	Phone       string            `json:"phone"`
	Categories  []domain.Category `json:"categories"`
}

// tokenPayload is the optional JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("yelp: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client searches businesses through the Yelp Fusion API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	getter     Getter
	tokenParam string
	limit      int
	logger     *slog.Logger
	now        func() time.Time

	tokenMu sync.Mutex
	token   string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLimit caps the number of businesses requested per search. Zero leaves
// the API default.
func WithLimit(limit int) Option {
	return func(c *Client) {
		c.limit = limit
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a Client whose bearer token is read from the SSM
// parameter tokenParam on first use.
func NewClient(ps Getter, tokenParam string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("yelp: paramstore getter must not be nil")
	}
	tokenParam = strings.TrimSpace(tokenParam)
	if tokenParam == "" {
		return nil, errors.New("yelp: token parameter name must not be empty")
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		getter:     ps,
		tokenParam: tokenParam,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limit < 0 {
		return nil, errors.New("yelp: limit must not be negative")
	}
	return c, nil
}

// resolveToken returns the cached token, fetching it when no fetch has
// succeeded yet.
func (c *Client) resolveToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	token, err := fetchTokenFromParamStore(ctx, c.getter, c.tokenParam)
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func searchURL(baseURL, term, location string, limit int) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	if !strings.HasSuffix(base, "/v3") {
		base += "/v3"
	}
	params := url.Values{}
	params.Set("term", term)
	params.Set("location", location)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return base + "/businesses/search?" + params.Encode()
}

// SearchBusinesses looks up term near location. Every returned record is
// stamped as created and updated today with no visits.
func (c *Client) SearchBusinesses(ctx context.Context, term, location string) ([]domain.BusinessRecord, error) {
	if strings.TrimSpace(term) == "" {
		return nil, errors.New("yelp: term must not be empty")
	}
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("yelp: location must not be empty")
	}

	token, err := c.resolveToken(ctx)
	if err != nil {
		return nil, err
	}

	url := searchURL(c.baseURL, term, location, c.limit)
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if reqErr != nil {
		return nil, fmt.Errorf("yelp: create request: %w", reqErr)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	raw, err := c.doJSONRequest(req, url)
	if err != nil {
		return nil, fmt.Errorf("yelp: request failed: %w", err)
	}

	var payload searchResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return nil, fmt.Errorf("yelp: decode response: %w", decErr)
	}

	today := domain.DateOf(c.now())
	return lo.Map(payload.Businesses, func(b business, _ int) domain.BusinessRecord {
		return domain.BusinessRecord{
			Name:        b.Name,
			ReviewCount: b.ReviewCount,
			Rating:      b.Rating,
			Location:    b.Location,
			Phone:       b.Phone,
			Categories:  b.Categories,
			DateCreated: today,
			DateUpdated: today,
		}
	}), nil
}

// Search is SearchBusinesses with failures logged and replaced by an empty
// result.
func (c *Client) Search(ctx context.Context, term, location string) []domain.BusinessRecord {
	records, err := c.SearchBusinesses(ctx, term, location)
	if err != nil {
		c.logger.ErrorContext(ctx, "business search failed", "term", term, "location", location, "err", err)
		return []domain.BusinessRecord{}
	}
	return records
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

// fetchTokenFromParamStore accepts either the bare token or {"token": "..."}.
func fetchTokenFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("yelp: paramstore getter is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("yelp: token parameter name is empty")
	}

	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("yelp: fetch token from paramstore: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var tp tokenPayload
		if err := json.Unmarshal([]byte(raw), &tp); err != nil {
			return "", fmt.Errorf("yelp: unmarshal paramstore token value as JSON: %w", err)
		}
		raw = strings.TrimSpace(tp.Token)
	}
	if raw == "" {
		return "", errors.New("yelp: API token is empty")
	}
	return raw, nil
}
