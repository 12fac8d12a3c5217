package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubbedGitHubService points the client at a local test server
func newStubbedGitHubService(t *testing.T, server *httptest.Server) *GitHubService {
	t.Helper()

	service := NewGitHubService("", 30, 0)
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	service.client.BaseURL = baseURL

	return service
}

func searchResult(issues ...*github.Issue) *github.IssuesSearchResult {
	return &github.IssuesSearchResult{
		Total:  github.Int(len(issues)),
		Issues: issues,
	}
}

func TestSearchIssuesByDateRange(t *testing.T) {
	t.Run("Long ranges are partitioned into day slices clamped at the end", func(t *testing.T) {
		var queries []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			queries = append(queries, r.URL.Query().Get("q"))
			w.Header().Set("X-Ratelimit-Remaining", "5000")
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(searchResult(&github.Issue{Number: github.Int(1)}))
		}))
		defer server.Close()

		service := newStubbedGitHubService(t, server)
		since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		until := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)

		items, err := service.SearchIssuesByDateRange(context.Background(), "org:acme is:pr", since, until, "created")

		require.NoError(t, err)
		assert.Len(t, items, 3)
		require.Len(t, queries, 3)
		assert.Equal(t, "org:acme is:pr created:2025-01-01..2025-01-31", queries[0])
		assert.Equal(t, "org:acme is:pr created:2025-01-31..2025-03-02", queries[1])
		assert.Equal(t, "org:acme is:pr created:2025-03-02..2025-03-07", queries[2])
	})

	t.Run("A full page follows pagination and a short page ends the slice", func(t *testing.T) {
		var serverURL string
		var pages []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page := r.URL.Query().Get("page")
			if page == "" {
				page = "1"
			}
			pages = append(pages, page)

			w.Header().Set("X-Ratelimit-Remaining", "5000")
			w.Header().Set("Content-Type", "application/json")

			if page == "2" {
				json.NewEncoder(w).Encode(searchResult(&github.Issue{Number: github.Int(101)}))
				return
			}

			w.Header().Set("Link", fmt.Sprintf(`<%s/search/issues?page=2>; rel="next"`, serverURL))
			full := make([]*github.Issue, perPage)
			for i := range full {
				full[i] = &github.Issue{Number: github.Int(i + 1)}
			}
			json.NewEncoder(w).Encode(searchResult(full...))
		}))
		serverURL = server.URL
		defer server.Close()

		service := newStubbedGitHubService(t, server)
		since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		until := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

		items, err := service.SearchIssuesByDateRange(context.Background(), "org:acme is:pr", since, until, "created")

		require.NoError(t, err)
		assert.Len(t, items, perPage+1)
		assert.Equal(t, []string{"1", "2"}, pages)
	})

	t.Run("Items repeated across slice boundaries are all returned", func(t *testing.T) {
		// The date qualifiers of adjacent slices share a boundary day, so an
		// event on that day comes back twice; collapsing it is the
		// deduplication engine's job, not the client's
		requests := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.Header().Set("X-Ratelimit-Remaining", "5000")
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(searchResult(&github.Issue{
				Number:  github.Int(7),
				HTMLURL: github.String("https://github.com/acme/widgets/pull/7"),
			}))
		}))
		defer server.Close()

		service := newStubbedGitHubService(t, server)
		since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		until := time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)

		items, err := service.SearchIssuesByDateRange(context.Background(), "org:acme is:pr", since, until, "created")

		require.NoError(t, err)
		assert.Equal(t, 2, requests)
		require.Len(t, items, 2)
		assert.Equal(t, items[0].GetHTMLURL(), items[1].GetHTMLURL())
	})
}

func TestQuotaDelay(t *testing.T) {
	testCases := []struct {
		name      string
		remaining int
		expected  time.Duration
	}{
		{name: "Plenty of quota", remaining: 4000, expected: 500 * time.Millisecond},
		{name: "Just above the high mark", remaining: 501, expected: 500 * time.Millisecond},
		{name: "Medium quota", remaining: 500, expected: time.Second},
		{name: "Just above the low mark", remaining: 101, expected: time.Second},
		{name: "Low quota", remaining: 100, expected: 3 * time.Second},
		{name: "Exhausted", remaining: 0, expected: 3 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, quotaDelay(tc.remaining))
		})
	}
}

func TestNewGitHubServiceDefaults(t *testing.T) {
	service := NewGitHubService("", 0, time.Second)

	assert.Equal(t, 30, service.searchWindowDays)
	assert.NotNil(t, service.client)
}
