package services

import (
    "context"
    "fmt"
    "regexp"
    "strings"
    "time"

    "github.com/LiangquanLi930/weeklybot/internal/domain"
)

const reportPrompt = `Please generate a concise weekly report based on the following activity data, including Jira tasks and GitHub activities.
Please organize the content in English following this format (do not include other content):

This Week's Work:
- Completed Tasks
  1. xxxxx
  2. xxxxx
  ...

- In Progress
  1. xxxxx
  2. xxxxx
  ...

Notes:
1. Keep it concise
2. Use clear and simple language
3. Highlight important work items
4. Avoid technical details

Activity Data:
%s`

// Reasoning models wrap their chain of thought in <think> tags; the
// report should carry only what follows.
var thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Summarize turns the merged activities into a short prose report via a
// single completion call. The output is free text and never parsed.
func (s *Service) Summarize(ctx context.Context, activities []domain.Activity) (string, error) {
    prompt := fmt.Sprintf(reportPrompt, formatActivities(activities))
    raw, err := s.llm.Complete(ctx, prompt)
    if err != nil { return "", err }
    return StripThink(raw), nil
}

func formatActivities(activities []domain.Activity) string {
    lines := make([]string, 0, len(activities))
    for _, a := range activities {
        lines = append(lines, fmt.Sprintf("- %s (%s)", a.Content, a.Date.Format(time.RFC3339)))
    }
    return strings.Join(lines, "\n")
}

// StripThink removes any <think>...</think> reasoning block and trims
// the remainder.
func StripThink(s string) string {
    return strings.TrimSpace(thinkRe.ReplaceAllString(s, ""))
}
