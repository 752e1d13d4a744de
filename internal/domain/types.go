package domain

import "time"

// Source identifies which external system an activity came from.
type Source string

const (
    SourceJira   Source = "jira"
    SourceGitHub Source = "github"
)

// Activity is one normalized unit of tracked work. Date is always
// timezone-aware; adapters hand over raw strings and the assembler
// coerces zoneless timestamps to UTC. Never mutated after creation.
type Activity struct {
    Source  Source    `json:"type"`
    Date    time.Time `json:"date"`
    Content string    `json:"content"`
}

// RawJiraIssue carries the per-issue fields extracted from one JQL search
// result. User lookups are best-effort: either email may be empty.
type RawJiraIssue struct {
    Key            string
    Summary        string
    Status         string
    Updated        string
    Type           string
    AssigneeEmail  string
    QAContactEmail string
}

// EventKind is the closed set of GitHub event shapes we understand.
// KindUnrecognized marks events that did not decode into a known shape,
// so gaps show up in counters instead of vanishing.
type EventKind string

const (
    KindCommit       EventKind = "commit"
    KindPullRequest  EventKind = "pull_request"
    KindReview       EventKind = "review"
    KindComment      EventKind = "comment"
    KindUnrecognized EventKind = "unrecognized"
)

// RawGitHubEvent is one GitHub activity record, tagged by Kind.
// Title holds the commit message for commits and the PR/issue title otherwise.
type RawGitHubEvent struct {
    Kind  EventKind
    Repo  string
    Date  string
    Title string
    State string
    URL   string
}

// Summary holds the per-source counters stamped into a report.
type Summary struct {
    TotalJiraTasks        int `json:"total_jira_tasks"`
    TotalGitHubActivities int `json:"total_github_activities"`
    TotalActivities       int `json:"total_activities"`
}

// Report is the assembled weekly report. Activities is sorted by date
// descending and TotalActivities always equals len(Activities).
type Report struct {
    ID          string     `json:"id"`
    GeneratedAt time.Time  `json:"generated_at"`
    Summary     Summary    `json:"summary"`
    Activities  []Activity `json:"activities"`
    AIReport    string     `json:"ai_report,omitempty"`
}
