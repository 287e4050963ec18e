package store

import (
    "context"
    "database/sql"
    "errors"
    "time"

    _ "github.com/jackc/pgx/v5/stdlib"
)

// Store persists admin settings: the saved API credential plus feed tuning.
// Photos themselves are never persisted; the result list lives in memory only.
type Store struct{ DB *sql.DB }

var ErrNoSettings = errors.New("no settings saved")

func Open(dsn string) (*Store, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil { return nil, err }
    db.SetMaxOpenConns(10)
    db.SetMaxIdleConns(5)
    db.SetConnMaxLifetime(30 * time.Minute)
    return &Store{DB: db}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.DB.PingContext(ctx) }

func (s *Store) Migrate(ctx context.Context) error {
    stmts := []string{
        `CREATE TABLE IF NOT EXISTS feed_settings (
            id            SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
            access_key    TEXT NOT NULL,
            per_page      INTEGER NOT NULL DEFAULT 30,
            column_count  INTEGER NOT NULL DEFAULT 3,
            updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
        );`,
    }
    for _, q := range stmts {
        if _, err := s.DB.ExecContext(ctx, q); err != nil { return err }
    }
    return nil
}

type Settings struct {
    AccessKey   string
    PerPage     int
    ColumnCount int
    UpdatedAt   time.Time
}

// SaveSettings upserts the singleton settings row. Zero tuning values keep
// the column defaults on insert and the stored values on update.
func (s *Store) SaveSettings(ctx context.Context, in Settings) error {
    if s.DB == nil { return errors.New("nil db") }
    if in.PerPage <= 0 { in.PerPage = 30 }
    if in.ColumnCount <= 0 { in.ColumnCount = 3 }
    _, err := s.DB.ExecContext(ctx, `
        INSERT INTO feed_settings (id, access_key, per_page, column_count, updated_at)
        VALUES (1, $1, $2, $3, now())
        ON CONFLICT (id)
        DO UPDATE SET access_key=EXCLUDED.access_key, per_page=EXCLUDED.per_page, column_count=EXCLUDED.column_count, updated_at=now()`,
        in.AccessKey, in.PerPage, in.ColumnCount,
    )
    return err
}

func (s *Store) LoadSettings(ctx context.Context) (Settings, error) {
    var out Settings
    if s.DB == nil { return out, errors.New("nil db") }
    err := s.DB.QueryRowContext(ctx,
        `SELECT access_key, per_page, column_count, updated_at FROM feed_settings WHERE id = 1`,
    ).Scan(&out.AccessKey, &out.PerPage, &out.ColumnCount, &out.UpdatedAt)
    if errors.Is(err, sql.ErrNoRows) { return out, ErrNoSettings }
    if err != nil { return out, err }
    return out, nil
}
