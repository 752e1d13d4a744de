package jobs

import (
    "context"
    "time"

    "github.com/LiangquanLi930/weeklybot/internal/config"
    "github.com/LiangquanLi930/weeklybot/internal/repo"
    "github.com/robfig/cron/v3"
    "github.com/rs/zerolog"
)

type Cron struct {
    cfg  config.Config
    log  zerolog.Logger
    run  func(ctx context.Context) error
    repo *repo.Repository
    c    *cron.Cron
}

// NewCron schedules the weekly report. repo may be nil; without a database
// there is no cross-instance lock and the schedule runs unguarded.
func NewCron(cfg config.Config, log zerolog.Logger, run func(ctx context.Context) error, r *repo.Repository) *Cron {
    loc, _ := time.LoadLocation(cfg.TZ)
    c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
    cr := &Cron{cfg: cfg, log: log, run: run, repo: r, c: c}
    _, _ = c.AddFunc(cfg.ReportCron, cr.weekly)
    return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) weekly() {
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute); defer cancel()
    const lockKey int64 = 731731
    if cr.repo != nil {
        ok, err := cr.repo.TryAdvisoryLock(ctx, lockKey)
        if err != nil { cr.log.Error().Err(err).Msg("cron: lock error"); return }
        if !ok { cr.log.Info().Msg("cron: already running elsewhere"); return }
        defer func(){ _ = cr.repo.AdvisoryUnlock(context.Background(), lockKey) }()
    }
    cr.log.Info().Msg("cron: weekly report")
    if err := cr.run(ctx); err != nil { cr.log.Error().Err(err).Msg("cron: report failed") }
}
