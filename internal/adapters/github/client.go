/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package github

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/LiangquanLi930/weeklybot/internal/config"
    "github.com/LiangquanLi930/weeklybot/internal/domain"
    "github.com/rs/zerolog"
)

// baseURL is a var so tests can point the client at a httptest server.
var baseURL = "https://api.github.com"

type Client struct {
    token    string
    username string
    http     *http.Client
    log      zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        token:    cfg.GitHubToken,
        username: cfg.GitHubUsername,
        http:     &http.Client{ Timeout: cfg.HTTPTimeout },
        log:      log,
    }
}

func (c *Client) get(ctx context.Context, u string, out any) error {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
    if err != nil { return err }
    req.Header.Set("Authorization", "token "+c.token)
    req.Header.Set("Accept", "application/vnd.github.v3+json")
    req.Header.Set("User-Agent", "weeklybot")
    resp, err := c.http.Do(req)
    if err != nil { return err }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        b, _ := io.ReadAll(resp.Body)
        return fmt.Errorf("github api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
    }
    return json.NewDecoder(resp.Body).Decode(out)
}

type searchResponse struct {
    Items []searchItem `json:"items"`
}

type searchItem struct {
    Title         string `json:"title"`
    HTMLURL       string `json:"html_url"`
    CreatedAt     string `json:"created_at"`
    UpdatedAt     string `json:"updated_at"`
    State         string `json:"state"`
    RepositoryURL string `json:"repository_url"`
}

func (i searchItem) repo() string {
    parts := strings.Split(i.RepositoryURL, "/")
    return parts[len(parts)-1]
}

func (c *Client) searchIssues(ctx context.Context, query string) ([]searchItem, error) {
    q := url.Values{}
    q.Set("q", query)
    q.Set("sort", "updated")
    q.Set("order", "desc")
    var out searchResponse
    if err := c.get(ctx, baseURL+"/search/issues?"+q.Encode(), &out); err != nil { return nil, err }
    return out.Items, nil
}

// WeeklyActivities is the search-based strategy: one query for PRs the
// user authored in the window and one for PRs they reviewed. A PR showing
// up in both lists keeps its authored entry only, deduplicated by URL.
// Fail-soft: any failure degrades to an empty slice.
func (c *Client) WeeklyActivities(ctx context.Context, start, end time.Time) []domain.RawGitHubEvent {
    window := fmt.Sprintf("%s..%s", start.Format("2006-01-02"), end.Format("2006-01-02"))

    authored, err := c.searchIssues(ctx, fmt.Sprintf("type:pr author:%s updated:%s", c.username, window))
    if err != nil {
        c.log.Error().Err(err).Msg("github fetch failed")
        return nil
    }
    var activities []domain.RawGitHubEvent
    seen := map[string]struct{}{}
    for _, pr := range authored {
        activities = append(activities, domain.RawGitHubEvent{
            Kind:  domain.KindPullRequest,
            Repo:  pr.repo(),
            Date:  pr.CreatedAt,
            Title: pr.Title,
            State: pr.State,
            URL:   pr.HTMLURL,
        })
        seen[pr.HTMLURL] = struct{}{}
    }

    reviewed, err := c.searchIssues(ctx, fmt.Sprintf("type:pr reviewed-by:%s updated:%s", c.username, window))
    if err != nil {
        // reviews are additive; keep what we have
        c.log.Error().Err(err).Msg("github review fetch failed")
        return activities
    }
    for _, pr := range reviewed {
        if _, ok := seen[pr.HTMLURL]; ok { continue }
        activities = append(activities, domain.RawGitHubEvent{
            Kind:  domain.KindReview,
            Repo:  pr.repo(),
            Date:  pr.UpdatedAt,
            Title: pr.Title,
            State: pr.State,
            URL:   pr.HTMLURL,
        })
    }
    c.log.Info().Int("count", len(activities)).Msg("github activities fetched")
    return activities
}
