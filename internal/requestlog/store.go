package requestlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/loqalabs/loqa-speech/internal/config"
	_ "modernc.org/sqlite"
)

// Record is the outcome of one synthesis request. Only request metadata
// is stored, never audio.
type Record struct {
	ID         string
	Voice      string
	TextChars  int
	DurationMS int64
	Status     string
	ErrorCode  string
	CreatedAt  time.Time
}

// Store wraps a SQLite-backed synthesis request log.
type Store struct {
	db    *sql.DB
	cfg   config.RequestLogConfig
	log   *slog.Logger
	clock func() time.Time
}

// Open initializes the request log according to config. A disabled log
// returns a no-op store.
func Open(ctx context.Context, cfg config.RequestLogConfig, log *slog.Logger) (*Store, error) {
	if !cfg.Enabled {
		return &Store{cfg: cfg, log: log, clock: time.Now}, nil
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, cfg: cfg, log: log, clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := s.Prune(ctx); err != nil {
		log.Warn("request log prune on start failed", slog.String("error", err.Error()))
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS requests (
    id TEXT PRIMARY KEY,
    voice TEXT NOT NULL,
    text_chars INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    status TEXT NOT NULL,
    error_code TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_requests_created ON requests(created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append writes one request record. No-op when the log is disabled.
func (s *Store) Append(ctx context.Context, rec Record) error {
	if !s.cfg.Enabled || s.db == nil {
		return nil
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requests(id, voice, text_chars, duration_ms, status, error_code, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Voice, rec.TextChars, rec.DurationMS, rec.Status, rec.ErrorCode, rec.CreatedAt)
	return err
}

// ListRecent retrieves up to limit records, most recent first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if !s.cfg.Enabled || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, voice, text_chars, duration_ms, status, error_code, created_at
		 FROM requests ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var created string
		var code sql.NullString
		if err := rows.Scan(&r.ID, &r.Voice, &r.TextChars, &r.DurationMS, &r.Status, &code, &created); err != nil {
			return nil, err
		}
		r.ErrorCode = code.String
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = ts
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Prune applies configured retention: drop records older than the
// retention window, then cap the table at max_requests newest rows.
func (s *Store) Prune(ctx context.Context) error {
	if !s.cfg.Enabled || s.db == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if s.cfg.RetentionDays > 0 {
		cutoff := s.clock().Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour)
		if _, err = tx.ExecContext(ctx, `DELETE FROM requests WHERE created_at < ?`, cutoff.UTC()); err != nil {
			return err
		}
	}
	if s.cfg.MaxRequests > 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM requests WHERE id IN (
			SELECT id FROM requests ORDER BY created_at DESC LIMIT -1 OFFSET ?
		)`, s.cfg.MaxRequests)
		if err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}
