/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
    "errors"
    "os"
    "strconv"
    "strings"
    "time"
)

// GitHubMode selects which adapter strategy serves the GitHub fetch
// contract. The two are alternatives, never composed.
const (
    GitHubModeSearch = "search"
    GitHubModeEvents = "events"
)

type Config struct {
    AppEnv   string
    TZ       string
    HTTPAddr string

    DBDSN string

    JiraServer         string
    JiraAPIToken       string
    JiraEmail          string
    JiraQAContactField string

    GitHubToken    string
    GitHubUsername string
    GitHubMode     string

    OllamaBaseURL string
    OllamaModel   string
    OllamaTimeout time.Duration

    ReportWindowDays int
    ReportCron       string
    HTTPTimeout      time.Duration
}

func getenv(key, def string) string {
    v := os.Getenv(key)
    if v == "" { return def }
    return v
}

func atoi(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    i, err := strconv.Atoi(v)
    if err != nil { return def }
    return i
}

func dur(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil { return def }
    return d
}

func Load() Config {
    cfg := Config{
        AppEnv:   getenv("APP_ENV", "dev"),
        TZ:       getenv("APP_TZ", "UTC"),
        HTTPAddr: getenv("HTTP_ADDR", ":8080"),

        DBDSN: getenv("DB_DSN", ""),

        JiraServer:         getenv("JIRA_SERVER", ""),
        JiraAPIToken:       getenv("JIRA_API_TOKEN", ""),
        JiraEmail:          getenv("JIRA_EMAIL", ""),
        JiraQAContactField: getenv("JIRA_QA_CONTACT_FIELD", "customfield_12310243"),

        GitHubToken:    getenv("GITHUB_TOKEN", ""),
        GitHubUsername: getenv("GITHUB_USERNAME", ""),
        GitHubMode:     getenv("GITHUB_MODE", GitHubModeSearch),

        OllamaBaseURL: getenv("OLLAMA_API_URL", "http://localhost:11434"),
        OllamaModel:   getenv("OLLAMA_MODEL", "deepseek-r1:7b"),
        OllamaTimeout: dur("OLLAMA_TIMEOUT", 120*time.Second),

        ReportWindowDays: atoi("REPORT_WINDOW_DAYS", 14),
        ReportCron:       getenv("REPORT_CRON", "0 10 * * FRI"),
        HTTPTimeout:      dur("HTTP_TIMEOUT", 15*time.Second),
    }

    if loc, err := time.LoadLocation(cfg.TZ); err == nil {
        time.Local = loc
    }
    return cfg
}

// Validate checks the credentials required at construction time. Missing
// config is fail-fast: the service must not start serving reports with a
// half-configured source.
func (c Config) Validate() error {
    var missing []string
    if c.JiraServer == "" { missing = append(missing, "JIRA_SERVER") }
    if c.JiraAPIToken == "" { missing = append(missing, "JIRA_API_TOKEN") }
    if c.JiraEmail == "" { missing = append(missing, "JIRA_EMAIL") }
    if c.GitHubToken == "" { missing = append(missing, "GITHUB_TOKEN") }
    if c.GitHubUsername == "" { missing = append(missing, "GITHUB_USERNAME") }
    if len(missing) > 0 {
        return errors.New("missing required configuration: " + strings.Join(missing, ", "))
    }
    if c.GitHubMode != GitHubModeSearch && c.GitHubMode != GitHubModeEvents {
        return errors.New("GITHUB_MODE must be \"search\" or \"events\", got " + strconv.Quote(c.GitHubMode))
    }
    return nil
}
