package github

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/LiangquanLi930/weeklybot/internal/config"
    "github.com/LiangquanLi930/weeklybot/internal/domain"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
    t.Helper()
    srv := httptest.NewServer(handler)
    t.Cleanup(srv.Close)
    saved := baseURL
    baseURL = srv.URL
    t.Cleanup(func() { baseURL = saved })
    return NewClient(config.Config{
        GitHubToken:    "token",
        GitHubUsername: "dev",
        HTTPTimeout:    5 * time.Second,
    }, zerolog.Nop())
}

const authoredBody = `{"items": [
    {"title": "add feature", "html_url": "https://github.com/org/repo/pull/1",
     "created_at": "2024-01-02T00:00:00Z", "updated_at": "2024-01-03T00:00:00Z",
     "state": "open", "repository_url": "https://api.github.com/repos/org/repo"}
]}`

const reviewedBody = `{"items": [
    {"title": "add feature", "html_url": "https://github.com/org/repo/pull/1",
     "created_at": "2024-01-02T00:00:00Z", "updated_at": "2024-01-03T00:00:00Z",
     "state": "open", "repository_url": "https://api.github.com/repos/org/repo"},
    {"title": "review me", "html_url": "https://github.com/org/other/pull/2",
     "created_at": "2024-01-04T00:00:00Z", "updated_at": "2024-01-05T00:00:00Z",
     "state": "closed", "repository_url": "https://api.github.com/repos/org/other"}
]}`

func TestWeeklyActivitiesDedupesByURL(t *testing.T) {
    c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        assert.Equal(t, "/search/issues", r.URL.Path)
        assert.Equal(t, "token token", r.Header.Get("Authorization"))
        q := r.URL.Query().Get("q")
        if strings.Contains(q, "reviewed-by:dev") {
            _, _ = w.Write([]byte(reviewedBody))
            return
        }
        assert.Contains(t, q, "author:dev")
        _, _ = w.Write([]byte(authoredBody))
    }))

    start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
    end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
    out := c.WeeklyActivities(context.Background(), start, end)

    // the PR present in both result sets keeps its authored entry only
    require.Len(t, out, 2)
    assert.Equal(t, domain.KindPullRequest, out[0].Kind)
    assert.Equal(t, "repo", out[0].Repo)
    assert.Equal(t, "add feature", out[0].Title)
    assert.Equal(t, "2024-01-02T00:00:00Z", out[0].Date)
    assert.Equal(t, domain.KindReview, out[1].Kind)
    assert.Equal(t, "other", out[1].Repo)
    // reviews carry the update time, not the creation time
    assert.Equal(t, "2024-01-05T00:00:00Z", out[1].Date)
}

func TestWeeklyActivitiesAuthoredFetchFails(t *testing.T) {
    c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, "rate limited", http.StatusForbidden)
    }))
    out := c.WeeklyActivities(context.Background(), time.Now().AddDate(0, 0, -14), time.Now())
    assert.Empty(t, out)
}

func TestWeeklyActivitiesReviewFetchFailureKeepsAuthored(t *testing.T) {
    c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if strings.Contains(r.URL.Query().Get("q"), "reviewed-by:dev") {
            http.Error(w, "boom", http.StatusBadGateway)
            return
        }
        _, _ = w.Write([]byte(authoredBody))
    }))
    out := c.WeeklyActivities(context.Background(), time.Now().AddDate(0, 0, -14), time.Now())
    require.Len(t, out, 1)
    assert.Equal(t, domain.KindPullRequest, out[0].Kind)
}

func TestSearchWindowInQuery(t *testing.T) {
    var queries []string
    c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        queries = append(queries, r.URL.Query().Get("q"))
        _, _ = w.Write([]byte(`{"items": []}`))
    }))
    start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
    end := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
    c.WeeklyActivities(context.Background(), start, end)

    require.Len(t, queries, 2)
    assert.Contains(t, queries[0], "updated:2024-01-01..2024-01-15")
    assert.Contains(t, queries[1], "updated:2024-01-01..2024-01-15")
}
