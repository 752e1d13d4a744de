/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
    "context"
    "fmt"
    "sort"
    "sync"
    "time"

    "github.com/LiangquanLi930/weeklybot/internal/chain"
    "github.com/LiangquanLi930/weeklybot/internal/config"
    "github.com/LiangquanLi930/weeklybot/internal/domain"
    "github.com/LiangquanLi930/weeklybot/internal/repo"
    "github.com/google/uuid"
    "github.com/rs/zerolog"
)

type JiraFetcher interface {
    WeeklyActivities(ctx context.Context, start, end time.Time) []domain.RawJiraIssue
}

type GitHubFetcher interface {
    WeeklyActivities(ctx context.Context, start, end time.Time) []domain.RawGitHubEvent
}

type Completer interface {
    Complete(ctx context.Context, prompt string) (string, error)
}

type Service struct {
    cfg    config.Config
    log    zerolog.Logger
    jira   JiraFetcher
    github GitHubFetcher
    llm    Completer
    qa     *chain.Chain
    repo   *repo.Repository
}

// New wires the report service. repo may be nil, in which case run
// bookkeeping is skipped.
func New(cfg config.Config, log zerolog.Logger, jira JiraFetcher, github GitHubFetcher, llm Completer, r *repo.Repository) (*Service, error) {
    if err := cfg.Validate(); err != nil { return nil, err }
    return &Service{
        cfg:    cfg,
        log:    log,
        jira:   jira,
        github: github,
        llm:    llm,
        qa:     chain.New(llm, log),
        repo:   r,
    }, nil
}

// GenerateReport runs the full pipeline: fetch both sources for the
// configured window, assemble, then add the AI prose summary. The two
// fetches share no state and run concurrently; each one is fail-soft on
// its own, so a dead source still yields a report from the other.
func (s *Service) GenerateReport(ctx context.Context) (domain.Report, error) {
    end := time.Now()
    start := end.AddDate(0, 0, -s.cfg.ReportWindowDays)
    s.log.Info().Time("start", start).Time("end", end).Msg("report generation started")

    runID := s.recordStart(ctx)

    var jiraData []domain.RawJiraIssue
    var githubData []domain.RawGitHubEvent
    var wg sync.WaitGroup
    wg.Add(2)
    go func(){ defer wg.Done(); jiraData = s.jira.WeeklyActivities(ctx, start, end) }()
    go func(){ defer wg.Done(); githubData = s.github.WeeklyActivities(ctx, start, end) }()
    wg.Wait()

    report := s.Assemble(jiraData, githubData)

    aiReport, err := s.Summarize(ctx, report.Activities)
    if err != nil {
        s.recordFinish(ctx, runID, report.Summary, err)
        return domain.Report{}, fmt.Errorf("ai report generation: %w", err)
    }
    report.AIReport = aiReport

    s.recordFinish(ctx, runID, report.Summary, nil)
    s.log.Info().Int("total", report.Summary.TotalActivities).Msg("report generated")
    return report, nil
}

// Ask exposes the question-refinement + structured-QA chain.
func (s *Service) Ask(ctx context.Context, question string) (chain.QAOutput, error) {
    return s.qa.Answer(ctx, question)
}

func (s *Service) GetLastRun(ctx context.Context) (*repo.LastRun, error) {
    if s.repo == nil { return nil, fmt.Errorf("run bookkeeping disabled (DB_DSN not set)") }
    return s.repo.GetLastRun(ctx)
}

func (s *Service) recordStart(ctx context.Context) int64 {
    if s.repo == nil { return 0 }
    id, err := s.repo.StartRun(ctx)
    if err != nil { s.log.Error().Err(err).Msg("start run record failed") }
    return id
}

func (s *Service) recordFinish(ctx context.Context, runID int64, sum domain.Summary, genErr error) {
    if s.repo == nil || runID == 0 { return }
    errStr := ""
    if genErr != nil { errStr = genErr.Error() }
    if err := s.repo.FinishRun(ctx, runID, sum.TotalJiraTasks, sum.TotalGitHubActivities, sum.TotalActivities, genErr == nil, errStr); err != nil {
        s.log.Error().Err(err).Msg("finish run record failed")
    }
}

// Assemble merges both normalized sequences into one report, newest
// first. An item whose date cannot be parsed is logged and dropped; the
// report is lossy by design rather than failing outright.
func (s *Service) Assemble(jiraData []domain.RawJiraIssue, githubData []domain.RawGitHubEvent) domain.Report {
    activities := make([]domain.Activity, 0, len(jiraData)+len(githubData))
    for _, it := range jiraData {
        at := parseTimeUTC(it.Updated)
        if at == nil {
            s.log.Error().Str("key", it.Key).Str("updated", it.Updated).Msg("dropping jira activity with unparseable date")
            continue
        }
        activities = append(activities, domain.Activity{
            Source:  domain.SourceJira,
            Date:    *at,
            Content: fmt.Sprintf("%s: %s - %s (%s)", it.Type, it.Key, it.Summary, it.Status),
        })
    }
    for _, ev := range githubData {
        at := parseTimeUTC(ev.Date)
        if at == nil {
            s.log.Error().Str("url", ev.URL).Str("date", ev.Date).Msg("dropping github activity with unparseable date")
            continue
        }
        activities = append(activities, domain.Activity{
            Source:  domain.SourceGitHub,
            Date:    *at,
            Content: fmt.Sprintf("%s: %s - %s", ev.Kind, ev.Repo, ev.Title),
        })
    }
    sort.Slice(activities, func(i, j int) bool { return activities[i].Date.After(activities[j].Date) })
    return domain.Report{
        ID:          uuid.NewString(),
        GeneratedAt: time.Now().UTC(),
        Summary: domain.Summary{
            TotalJiraTasks:        len(jiraData),
            TotalGitHubActivities: len(githubData),
            TotalActivities:       len(activities),
        },
        Activities: activities,
    }
}

// parseTimeUTC parses the timestamp formats the two sources emit and
// normalizes to UTC. Zoneless layouts are read as UTC, never local time.
func parseTimeUTC(s string) *time.Time {
    if s == "" { return nil }
    layouts := []string{
        time.RFC3339Nano,
        time.RFC3339,
        "2006-01-02T15:04:05.000-0700",
        "2006-01-02T15:04:05-0700",
        "2006-01-02T15:04:05",
        "2006-01-02",
    }
    for _, l := range layouts {
        if t, err := time.Parse(l, s); err == nil {
            tt := t.UTC()
            return &tt
        }
    }
    return nil
}
