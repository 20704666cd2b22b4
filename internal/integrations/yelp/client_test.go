package yelp

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeGetter is a minimal paramstore.Getter stub for use within this package.
type fakeGetter struct {
	val    string
	err    error
	onCall func()
}

func (f *fakeGetter) GetParameter(_ context.Context, _ string) (string, error) {
	if f.onCall != nil {
		f.onCall()
	}
	return f.val, f.err
}

var fixedNow = time.Date(2026, 10, 17, 15, 4, 5, 0, time.UTC)

const searchBody = `{
	"total": 1,
	"businesses": [{
		"id": "abc",
		"name": "Pizza Place",
		"review_count": 120,
		"rating": 4.5,
		"phone": "+12175550100",
		"location": {
			"address1": "1 Main St",
			"address2": null,
			"city": "Springfield",
			"zip_code": "62701",
			"state": "IL",
			"display_address": ["1 Main St", "Springfield, IL 62701"]
		},
		"categories": [{"alias": "pizza", "title": "Pizza"}, {"alias": "italian", "title": "Italian"}]
	}]
}`

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{
		WithBaseURL(srv.URL),
		WithHTTPClient(&http.Client{Timeout: 2 * time.Second}),
	}, opts...)
	c, err := NewClient(&fakeGetter{val: `{"token":"yelp-test"}`}, "/yelp/token", opts...)
	require.NoError(t, err)
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestSearchURL(t *testing.T) {
	cases := []struct {
		base  string
		limit int
		want  string
	}{
		{"https://api.yelp.com", 0, "https://api.yelp.com/v3/businesses/search?location=Springfield+IL&term=pizza"},
		{"https://api.yelp.com/v3/", 0, "https://api.yelp.com/v3/businesses/search?location=Springfield+IL&term=pizza"},
		{"", 5, "https://api.yelp.com/v3/businesses/search?limit=5&location=Springfield+IL&term=pizza"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, searchURL(tc.base, "pizza", "Springfield IL", tc.limit), "base=%q", tc.base)
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(nil, "/yelp/token")
	require.ErrorContains(t, err, "nil")

	_, err = NewClient(&fakeGetter{}, " ")
	require.ErrorContains(t, err, "must not be empty")

	_, err = NewClient(&fakeGetter{}, "/yelp/token", WithLimit(-1))
	require.ErrorContains(t, err, "limit")

	c, err := NewClient(&fakeGetter{}, "/yelp/token")
	require.NoError(t, err)
	require.Equal(t, defaultBaseURL, c.baseURL)
}

func TestSearchBusinesses_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v3/businesses/search", r.URL.Path)
		require.Equal(t, "pizza", r.URL.Query().Get("term"))
		require.Equal(t, "Springfield IL 62701", r.URL.Query().Get("location"))
		require.Equal(t, "3", r.URL.Query().Get("limit"))
		require.Equal(t, "Bearer yelp-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, WithLimit(3))
	records, err := c.SearchBusinesses(context.Background(), "pizza", "Springfield IL 62701")
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	require.Equal(t, "Pizza Place", r.Name)
	require.Equal(t, 120, r.ReviewCount)
	require.InDelta(t, 4.5, r.Rating, 1e-9)
	require.Equal(t, "1 Main St", r.Location.Address1)
	require.Equal(t, "Springfield", r.Location.City)
	require.Equal(t, "+12175550100", r.Phone)
	require.Len(t, r.Categories, 2)
	require.Equal(t, "italian", r.Categories[1].Alias)
	require.Zero(t, r.NumVisited)
	require.Equal(t, "20261017", r.DateCreated.String())
	require.Equal(t, "20261017", r.DateUpdated.String())
}

func TestSearchBusinesses_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"TOKEN_INVALID"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.SearchBusinesses(context.Background(), "pizza", "Springfield")
	require.Error(t, err)
	var statusErr *HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusUnauthorized, statusErr.HTTPStatusCode())
	require.Contains(t, err.Error(), "TOKEN_INVALID")
}

func TestSearchBusinesses_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not-json`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.SearchBusinesses(context.Background(), "pizza", "Springfield")
	require.ErrorContains(t, err, "decode response")
}

func TestSearchBusinesses_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total":0,"businesses":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	records, err := c.SearchBusinesses(context.Background(), "pizza", "Springfield")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestSearchBusinesses_Validation(t *testing.T) {
	c, err := NewClient(&fakeGetter{val: "t"}, "/yelp/token")
	require.NoError(t, err)
	_, err = c.SearchBusinesses(context.Background(), " ", "Springfield")
	require.ErrorContains(t, err, "term")
	_, err = c.SearchBusinesses(context.Background(), "pizza", "")
	require.ErrorContains(t, err, "location")
}

func TestSearchBusinesses_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"businesses":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}
	_, err := c.SearchBusinesses(context.Background(), "pizza", "Springfield")
	require.ErrorContains(t, err, "request failed")
}

func TestSearch_FailureYieldsEmptyAndLogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var logs bytes.Buffer
	c := newTestClient(t, srv, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	records := c.Search(context.Background(), "pizza", "Springfield")
	require.NotNil(t, records)
	require.Empty(t, records)
	require.Contains(t, logs.String(), "business search failed")
	require.Contains(t, logs.String(), "500")
}

func TestSearch_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	records := c.Search(context.Background(), "pizza", "Springfield")
	require.Len(t, records, 1)
}

func TestResolveToken_CachedAfterSuccess(t *testing.T) {
	calls := 0
	g := &fakeGetter{val: "plain-token"}
	g.onCall = func() { calls++ }
	c, err := NewClient(g, "/yelp/token")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		tok, err := c.resolveToken(context.Background())
		require.NoError(t, err)
		require.Equal(t, "plain-token", tok)
	}
	require.Equal(t, 1, calls)
}

func TestResolveToken_RetriesAfterFailure(t *testing.T) {
	g := &fakeGetter{err: errors.New("ssm unavailable")}
	c, err := NewClient(g, "/yelp/token")
	require.NoError(t, err)

	_, err = c.resolveToken(context.Background())
	require.ErrorContains(t, err, "ssm unavailable")

	g.err = nil
	g.val = `{"token":"recovered"}`
	tok, err := c.resolveToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "recovered", tok)
}

func TestFetchToken(t *testing.T) {
	cases := []struct {
		name    string
		val     string
		want    string
		errPart string
	}{
		{name: "plain", val: " tok ", want: "tok"},
		{name: "json", val: `{"token":"tok"}`, want: "tok"},
		{name: "json missing field", val: `{"other":"v"}`, errPart: "API token is empty"},
		{name: "malformed json", val: `{"broken`, errPart: "unmarshal"},
		{name: "blank", val: "  ", errPart: "API token is empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tok, err := fetchTokenFromParamStore(context.Background(), &fakeGetter{val: tc.val}, "/yelp/token")
			if tc.errPart != "" {
				require.ErrorContains(t, err, tc.errPart)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, tok)
		})
	}
}

func TestFetchToken_NilGetterAndEmptyName(t *testing.T) {
	_, err := fetchTokenFromParamStore(context.Background(), nil, "/yelp/token")
	require.ErrorContains(t, err, "nil")
	_, err = fetchTokenFromParamStore(context.Background(), &fakeGetter{val: "t"}, " ")
	require.ErrorContains(t, err, "empty")
}
