package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rebeliceyang/lazysearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func testConfig(endpoint string) models.ServiceConfig {
	return models.ServiceConfig{
		Endpoint:  endpoint,
		IndexName: "hotels",
		APIKey:    "secret",
	}
}

func TestNewClientRequiresConfig(t *testing.T) {
	_, err := NewClient(models.ServiceConfig{Endpoint: "https://x.search.windows.net"})
	assert.ErrorIs(t, err, ErrIncompleteConfig)
}

func TestSearchSendsRequest(t *testing.T) {
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/indexes/hotels/docs/search", r.URL.Path)
		assert.Equal(t, "2024-07-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		body, _ = io.ReadAll(r.Body)

		_, _ = io.WriteString(w, `{
			"@odata.count": 2,
			"value": [
				{"@search.score": 2.5, "id": "1", "name": "Ocean View", "tags": ["premium"]},
				{"@search.score": 1.5, "id": "2", "name": "Budget Inn"}
			]
		}`)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL + "/"))
	require.NoError(t, err)

	page, err := c.Search(context.Background(), Query{
		Filter:  "tags/any(item: item eq 'premium')",
		OrderBy: "rating desc",
		Select:  []string{"id", "name"},
		Top:     10,
		Count:   true,
	})
	require.NoError(t, err)

	parsed := gjson.ParseBytes(body)
	assert.Equal(t, "*", parsed.Get("search").String())
	assert.Equal(t, "tags/any(item: item eq 'premium')", parsed.Get("filter").String())
	assert.Equal(t, "rating desc", parsed.Get("orderby").String())
	assert.Equal(t, "id,name", parsed.Get("select").String())
	assert.Equal(t, int64(10), parsed.Get("top").Int())
	assert.False(t, parsed.Get("skip").Exists())
	assert.True(t, parsed.Get("count").Bool())

	assert.Equal(t, int64(2), page.Count)
	require.Len(t, page.Results, 2)
	assert.Equal(t, 2.5, page.Results[0].Score)
	assert.Equal(t, "Ocean View", page.Results[0].Document["name"])
	assert.NotContains(t, page.Results[0].Document, "@search.score")
}

func TestSearchRejectsInvalidFilter(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), Query{Filter: "(rating gt 3"})
	require.ErrorIs(t, err, ErrInvalidFilter)
	assert.Contains(t, err.Error(), "parentheses")
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":"InvalidRequestParameter","message":"Invalid expression: Could not find a property named 'nope'"}}`)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), Query{Filter: "nope eq 1"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "InvalidRequestParameter", apiErr.Code)
	assert.Contains(t, apiErr.Message, "nope")
}

func TestPaginate(t *testing.T) {
	const total = 5
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		req := gjson.ParseBytes(raw)
		skip, top := int(req.Get("skip").Int()), int(req.Get("top").Int())

		var docs []string
		for i := skip; i < total && i < skip+top; i++ {
			docs = append(docs, fmt.Sprintf(`{"@search.score": %d, "id": "%d"}`, i+1, i))
		}
		_, _ = fmt.Fprintf(w, `{"value":[%s]}`, strings.Join(docs, ","))
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL))
	require.NoError(t, err)

	results, err := c.Paginate(context.Background(), Query{Top: 2}, 10)
	require.NoError(t, err)
	require.Len(t, results, total)
	assert.Equal(t, "4", results[4].Document["id"])

	results, err = c.Paginate(context.Background(), Query{Top: 2}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 4)
}

func TestAnalyzeScores(t *testing.T) {
	assert.Equal(t, ScoreSummary{}, AnalyzeScores(nil))

	s := AnalyzeScores([]Result{{Score: 2}, {Score: 4}, {Score: 4}, {Score: 4}, {Score: 5}, {Score: 5}, {Score: 7}, {Score: 9}})
	assert.Equal(t, 8, s.Count)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.Equal(t, 5.0, s.Mean)
	assert.InDelta(t, 2.0, s.StdDev, 1e-9)
}
