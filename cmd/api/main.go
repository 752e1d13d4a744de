/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
    "context"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/LiangquanLi930/weeklybot/internal/adapters/github"
    "github.com/LiangquanLi930/weeklybot/internal/adapters/jira"
    "github.com/LiangquanLi930/weeklybot/internal/adapters/llm"
    "github.com/LiangquanLi930/weeklybot/internal/config"
    httpx "github.com/LiangquanLi930/weeklybot/internal/http"
    "github.com/LiangquanLi930/weeklybot/internal/jobs"
    "github.com/LiangquanLi930/weeklybot/internal/logger"
    "github.com/LiangquanLi930/weeklybot/internal/repo"
    "github.com/LiangquanLi930/weeklybot/internal/services"
)

func main() {
    cfg := config.Load()
    log := logger.New(cfg)
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // DB is optional: without DB_DSN the app still serves reports, it just
    // skips run bookkeeping and the cron advisory lock.
    var repository *repo.Repository
    if cfg.DBDSN != "" {
        db, err := repo.Open(ctx, cfg, log)
        if err != nil {
            log.Error().Err(err).Msg("db connect failed; continuing without run bookkeeping")
        } else {
            defer db.Close()
            if err := db.Migrate(ctx); err != nil { log.Error().Err(err).Msg("db migrate failed") }
            repository = repo.NewRepository(db, log)
        }
    }

    // Adapters
    jc := jira.NewClient(cfg, log)
    var gh services.GitHubFetcher
    if cfg.GitHubMode == config.GitHubModeEvents {
        gh = github.NewEventsClient(cfg, log)
    } else {
        gh = github.NewClient(cfg, log)
    }
    lc := llm.NewClient(cfg, log)

    // Service; a config error here keeps the server up and turns the
    // report endpoints into 503s.
    svc, initErr := services.New(cfg, log, jc, gh, lc, repository)
    if initErr != nil { log.Error().Err(initErr).Msg("service init failed") }

    router := httpx.NewRouter(cfg, log, svc, initErr)

    var cr *jobs.Cron
    if initErr == nil && cfg.ReportCron != "" {
        cr = jobs.NewCron(cfg, log, func(ctx context.Context) error {
            _, err := svc.GenerateReport(ctx)
            return err
        }, repository)
        cr.Start()
        defer cr.Stop()
    }

    errCh := make(chan error, 1)
    go func() { errCh <- router.Run(cfg.HTTPAddr) }()

    sigCh := make(chan os.Signal, 1)
    signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

    select {
    case <-sigCh:
        log.Info().Msg("shutting down...")
    case err := <-errCh:
        if err != nil { log.Error().Err(err).Msg("http server error") }
    }

    time.Sleep(500 * time.Millisecond)
}
