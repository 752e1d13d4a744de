package github

import (
    "context"
    "encoding/json"
    "strings"
    "time"

    "github.com/LiangquanLi930/weeklybot/internal/config"
    "github.com/LiangquanLi930/weeklybot/internal/domain"
    "github.com/rs/zerolog"
)

// EventsClient is the event-feed strategy: one fetch of the user's public
// event feed, filtered client-side to the window. Alternative to Client,
// never composed with it.
type EventsClient struct {
    c *Client
}

func NewEventsClient(cfg config.Config, log zerolog.Logger) *EventsClient {
    return &EventsClient{c: NewClient(cfg, log)}
}

type feedEvent struct {
    Type string `json:"type"`
    Repo struct {
        Name string `json:"name"`
    } `json:"repo"`
    CreatedAt string          `json:"created_at"`
    Payload   json.RawMessage `json:"payload"`
}

func (e feedEvent) repo() string {
    parts := strings.Split(e.Repo.Name, "/")
    return parts[len(parts)-1]
}

type pushPayload struct {
    Commits []struct {
        Message string `json:"message"`
        URL     string `json:"url"`
    } `json:"commits"`
}

type pullRequestPayload struct {
    PullRequest struct {
        Title   string `json:"title"`
        HTMLURL string `json:"html_url"`
        State   string `json:"state"`
    } `json:"pull_request"`
}

type reviewPayload struct {
    PullRequest struct {
        Title   string `json:"title"`
        HTMLURL string `json:"html_url"`
    } `json:"pull_request"`
    Review struct {
        State string `json:"state"`
    } `json:"review"`
}

type commentPayload struct {
    Issue struct {
        Title string `json:"title"`
    } `json:"issue"`
    Comment struct {
        HTMLURL string `json:"html_url"`
    } `json:"comment"`
}

// WeeklyActivities fetches the public event feed and keeps events inside
// [start, end]. The feed is most-recent-first and carries no server-side
// date filter. Fail-soft like the search strategy.
func (ec *EventsClient) WeeklyActivities(ctx context.Context, start, end time.Time) []domain.RawGitHubEvent {
    c := ec.c
    var feed []feedEvent
    if err := c.get(ctx, baseURL+"/users/"+c.username+"/events?per_page=100", &feed); err != nil {
        c.log.Error().Err(err).Msg("github event feed fetch failed")
        return nil
    }
    var activities []domain.RawGitHubEvent
    unrecognized := 0
    for _, ev := range feed {
        at, err := time.Parse(time.RFC3339, ev.CreatedAt)
        if err != nil || at.Before(start) || at.After(end) { continue }
        decoded, ok := decodeEvent(ev)
        if !ok {
            unrecognized++
            continue
        }
        activities = append(activities, decoded...)
    }
    if unrecognized > 0 {
        c.log.Debug().Int("count", unrecognized).Msg("unrecognized github events skipped")
    }
    c.log.Info().Int("count", len(activities)).Msg("github activities fetched")
    return activities
}

// decodeEvent dispatches one feed event over the closed set of known
// shapes. Anything outside the set, or with a payload missing the fields
// that shape requires, reports ok=false so callers can count the gap.
func decodeEvent(ev feedEvent) ([]domain.RawGitHubEvent, bool) {
    switch ev.Type {
    case "PushEvent":
        var p pushPayload
        if err := json.Unmarshal(ev.Payload, &p); err != nil || len(p.Commits) == 0 { return nil, false }
        out := make([]domain.RawGitHubEvent, 0, len(p.Commits))
        for _, cm := range p.Commits {
            if cm.Message == "" { continue }
            out = append(out, domain.RawGitHubEvent{
                Kind:  domain.KindCommit,
                Repo:  ev.repo(),
                Date:  ev.CreatedAt,
                Title: cm.Message,
                URL:   cm.URL,
            })
        }
        if len(out) == 0 { return nil, false }
        return out, true
    case "PullRequestEvent":
        var p pullRequestPayload
        if err := json.Unmarshal(ev.Payload, &p); err != nil || p.PullRequest.Title == "" { return nil, false }
        return []domain.RawGitHubEvent{{
            Kind:  domain.KindPullRequest,
            Repo:  ev.repo(),
            Date:  ev.CreatedAt,
            Title: p.PullRequest.Title,
            State: p.PullRequest.State,
            URL:   p.PullRequest.HTMLURL,
        }}, true
    case "PullRequestReviewEvent":
        var p reviewPayload
        if err := json.Unmarshal(ev.Payload, &p); err != nil || p.PullRequest.Title == "" { return nil, false }
        return []domain.RawGitHubEvent{{
            Kind:  domain.KindReview,
            Repo:  ev.repo(),
            Date:  ev.CreatedAt,
            Title: p.PullRequest.Title,
            State: p.Review.State,
            URL:   p.PullRequest.HTMLURL,
        }}, true
    case "IssueCommentEvent":
        var p commentPayload
        if err := json.Unmarshal(ev.Payload, &p); err != nil || p.Issue.Title == "" { return nil, false }
        return []domain.RawGitHubEvent{{
            Kind:  domain.KindComment,
            Repo:  ev.repo(),
            Date:  ev.CreatedAt,
            Title: p.Issue.Title,
            URL:   p.Comment.HTMLURL,
        }}, true
    default:
        return nil, false
    }
}
