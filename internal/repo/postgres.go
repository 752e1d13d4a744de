package repo

import (
    "context"
    "errors"
    "time"

    "github.com/LiangquanLi930/weeklybot/internal/config"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/rs/zerolog"
)

type DB struct {
    Pool *pgxpool.Pool
    log  zerolog.Logger
}

// Open connects and pings. Reports are never persisted; the database only
// carries report_runs bookkeeping and the cron advisory lock.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*DB, error) {
    pool, err := pgxpool.New(ctx, cfg.DBDSN)
    if err != nil { return nil, err }
    ctx2, cancel := context.WithTimeout(ctx, 10*time.Second); defer cancel()
    if err := pool.Ping(ctx2); err != nil { pool.Close(); return nil, err }
    return &DB{Pool: pool, log: log}, nil
}

func (d *DB) Close() { d.Pool.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
    id            BIGSERIAL PRIMARY KEY,
    started_at    TIMESTAMPTZ NOT NULL,
    finished_at   TIMESTAMPTZ,
    jira_tasks    INT,
    github_items  INT,
    total_items   INT,
    success       BOOLEAN,
    error         TEXT
)`

func (d *DB) Migrate(ctx context.Context) error {
    _, err := d.Pool.Exec(ctx, schema)
    return err
}

type Repository struct {
    db  *DB
    log zerolog.Logger
}

func NewRepository(d *DB, log zerolog.Logger) *Repository { return &Repository{db: d, log: log} }

func (r *Repository) TryAdvisoryLock(ctx context.Context, key int64) (bool, error) {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok)
    return ok, err
}

func (r *Repository) AdvisoryUnlock(ctx context.Context, key int64) error {
    var ok bool
    err := r.db.Pool.QueryRow(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
    if !ok && err == nil { return errors.New("advisory unlock returned false") }
    return err
}

func (r *Repository) StartRun(ctx context.Context) (int64, error) {
    const q = `INSERT INTO report_runs(started_at, success) VALUES(now(), false) RETURNING id`
    var id int64
    if err := r.db.Pool.QueryRow(ctx, q).Scan(&id); err != nil { return 0, err }
    return id, nil
}

func (r *Repository) FinishRun(ctx context.Context, id int64, jiraTasks, githubItems, totalItems int, success bool, errStr string) error {
    const q = `UPDATE report_runs SET finished_at=now(), jira_tasks=$2, github_items=$3, total_items=$4, success=$5, error=$6 WHERE id=$1`
    _, err := r.db.Pool.Exec(ctx, q, id, jiraTasks, githubItems, totalItems, success, errStr)
    return err
}

type LastRun struct {
    StartedAt   time.Time  `json:"started_at"`
    FinishedAt  *time.Time `json:"finished_at"`
    JiraTasks   int        `json:"jira_tasks"`
    GitHubItems int        `json:"github_items"`
    TotalItems  int        `json:"total_items"`
    Success     bool       `json:"success"`
    Error       string     `json:"error"`
}

func (r *Repository) GetLastRun(ctx context.Context) (*LastRun, error) {
    const q = `SELECT started_at, finished_at,
        coalesce(jira_tasks,0), coalesce(github_items,0), coalesce(total_items,0),
        coalesce(success,false), coalesce(error,'')
        FROM report_runs ORDER BY id DESC LIMIT 1`
    row := r.db.Pool.QueryRow(ctx, q)
    lr := &LastRun{}
    if err := row.Scan(&lr.StartedAt, &lr.FinishedAt, &lr.JiraTasks, &lr.GitHubItems, &lr.TotalItems, &lr.Success, &lr.Error); err != nil {
        return nil, err
    }
    return lr, nil
}
