/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
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

const searchMaxResults = 100

type Client struct {
    baseURL string
    token   string
    user    string
    qaField string
    http    *http.Client
    log     zerolog.Logger
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: cfg.JiraServer,
        token:   cfg.JiraAPIToken,
        user:    cfg.JiraEmail,
        qaField: cfg.JiraQAContactField,
        http:    &http.Client{ Timeout: cfg.HTTPTimeout },
        log:     log,
    }
}

type searchResponse struct {
    Issues []issue `json:"issues"`
}

type issue struct {
    Key    string          `json:"key"`
    Fields json.RawMessage `json:"fields"`
}

type issueFields struct {
    Summary   string `json:"summary"`
    Status    name   `json:"status"`
    IssueType name   `json:"issuetype"`
    Updated   string `json:"updated"`
    Assignee  *user  `json:"assignee"`
}

type name struct {
    Name string `json:"name"`
}

type user struct {
    EmailAddress string `json:"emailAddress"`
    Email        string `json:"email"`
    Name         string `json:"name"`
}

// email resolves a user reference best-effort, the way the Jira UI would:
// emailAddress first, then email, then the bare username.
func (u *user) email() string {
    if u == nil { return "" }
    if u.EmailAddress != "" { return u.EmailAddress }
    if u.Email != "" { return u.Email }
    return u.Name
}

func (c *Client) apiURL(path string, q url.Values) string {
    base := strings.TrimRight(c.baseURL, "/")
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := base + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body, out any) error {
    if c.baseURL == "" { return errors.New("jira: empty baseURL") }
    var payload []byte
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return err }
        payload = b
    }
    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        var r io.Reader
        if payload != nil { r = bytes.NewReader(payload) }
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return err }
        if payload != nil { req.Header.Set("Content-Type", "application/json") }
        req.Header.Set("Authorization", "Bearer "+c.token)
        resp, err := c.http.Do(req)
        if err != nil { lastErr = err } else {
            func() {
                defer resp.Body.Close()
                if resp.StatusCode >= 300 {
                    b, _ := io.ReadAll(resp.Body)
                    err = fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
                    // retry on 429/5xx only
                    if resp.StatusCode == 429 || resp.StatusCode >= 500 { lastErr = err; err = nil }
                    return
                }
                lastErr = nil
                err = json.NewDecoder(resp.Body).Decode(out)
            }()
            if err != nil { return err }
            if lastErr == nil { return nil }
        }
        time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
    }
    return lastErr
}

// Search issues one JQL call capped at searchMaxResults. No pagination:
// a window with more than 100 updated issues gets truncated, which is an
// accepted scale limit for a single-user report.
func (c *Client) Search(ctx context.Context, jql string) ([]issue, error) {
    if jql == "" { return nil, errors.New("jira: empty jql") }
    q := url.Values{}
    q.Set("jql", jql)
    q.Set("maxResults", fmt.Sprint(searchMaxResults))
    u := c.apiURL("/rest/api/2/search", q)
    var out searchResponse
    if err := c.doJSON(ctx, http.MethodGet, u, nil, &out); err != nil { return nil, err }
    return out.Issues, nil
}

func (c *Client) weeklyJQL(start, end time.Time) string {
    return fmt.Sprintf(`updated >= "%s" AND updated <= "%s" AND (assignee = "%s" OR "QA Contact" = "%s")`,
        start.Format("2006-01-02"), end.Format("2006-01-02"), c.user, c.user)
}

// WeeklyActivities fetches the user's issues updated in [start, end].
// Fail-soft: a report must stay producible when Jira is unreachable, so
// transport and decode failures degrade to an empty slice. A failure on
// one issue skips only that issue.
func (c *Client) WeeklyActivities(ctx context.Context, start, end time.Time) []domain.RawJiraIssue {
    jql := c.weeklyJQL(start, end)
    c.log.Debug().Str("jql", jql).Msg("jira search")
    issues, err := c.Search(ctx, jql)
    if err != nil {
        c.log.Error().Err(err).Msg("jira fetch failed")
        return nil
    }
    out := make([]domain.RawJiraIssue, 0, len(issues))
    for _, is := range issues {
        raw, err := c.extractIssue(is)
        if err != nil {
            c.log.Error().Err(err).Str("key", is.Key).Msg("skipping jira issue")
            continue
        }
        out = append(out, raw)
    }
    c.log.Info().Int("count", len(out)).Msg("jira activities fetched")
    return out
}

func (c *Client) extractIssue(is issue) (domain.RawJiraIssue, error) {
    var f issueFields
    if err := json.Unmarshal(is.Fields, &f); err != nil {
        return domain.RawJiraIssue{}, err
    }
    raw := domain.RawJiraIssue{
        Key:           is.Key,
        Summary:       f.Summary,
        Status:        f.Status.Name,
        Updated:       f.Updated,
        Type:          f.IssueType.Name,
        AssigneeEmail: f.Assignee.email(),
    }
    // QA Contact lives in an instance-specific custom field; absence or a
    // malformed value is legitimate and leaves the email empty.
    var fields map[string]json.RawMessage
    if err := json.Unmarshal(is.Fields, &fields); err == nil {
        if v, ok := fields[c.qaField]; ok {
            var qa user
            if err := json.Unmarshal(v, &qa); err == nil { raw.QAContactEmail = qa.email() }
        }
    }
    return raw, nil
}
