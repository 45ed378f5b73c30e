// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // Pure Go driver
)

const sqliteSchemaVersion = 1

// SQLiteConfig defines SQLite operational parameters for the session store.
type SQLiteConfig struct {
	BusyTimeout     time.Duration
	MaxOpenConns    int
	CleanupInterval time.Duration // how often expired rows are purged; 0 disables
}

// DefaultSQLiteConfig returns the recommended configuration.
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		BusyTimeout:     5 * time.Second,
		MaxOpenConns:    8,
		CleanupInterval: time.Minute,
	}
}

// SQLiteStore implements Store on a single SQLite table.
type SQLiteStore struct {
	db      *sql.DB
	logger  zerolog.Logger
	now     func() time.Time
	janitor *janitor
}

// openSQLite initializes a connection pool with the mandatory PRAGMAs applied to every
// connection through the DSN.
func openSQLite(dbPath string, cfg SQLiteConfig) (*sql.DB, error) {
	// _txlock=immediate takes the write lock at BEGIN, so read-modify-write transactions
	// wait on busy_timeout instead of failing when they upgrade.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)&_txlock=immediate",
		dbPath, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}
	return db, nil
}

// NewSQLiteStore opens (and migrates) the session database at dbPath.
func NewSQLiteStore(dbPath string, cfg SQLiteConfig, logger zerolog.Logger) (*SQLiteStore, error) {
	db, err := openSQLite(dbPath, cfg)
	if err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session store: migration failed: %w", err)
	}

	s.janitor = startJanitor(cfg.CleanupInterval, func() {
		n, err := s.Sweep(context.Background())
		if err != nil {
			s.logger.Warn().Err(err).Str("event", "session.sweep_failed").Msg("expired session purge failed")
			return
		}
		if n > 0 {
			s.logger.Debug().Int64("removed", n).Str("event", "session.swept").Msg("purged expired session entries")
		}
	})
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	var currentVersion int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&currentVersion); err != nil {
		return err
	}
	if currentVersion >= sqliteSchemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS session_kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		expires_at_ms INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_session_kv_expires ON session_kv(expires_at_ms);
	`
	if _, err := tx.Exec(schema); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqliteSchemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// expires_at_ms = 0 means no expiry.
func (s *SQLiteStore) expiresAt(ttl time.Duration) int64 {
	t := expiryFor(s.now(), ttl)
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func (s *SQLiteStore) live(expiresAtMs int64) bool {
	return expiresAtMs == 0 || expiresAtMs > s.now().UnixMilli()
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at_ms FROM session_kv WHERE key = ?", key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite get: %w", err)
	}
	if !s.live(expiresAt) {
		return nil, false, nil
	}
	return value, true, nil
}

// Set implements Store.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
	INSERT INTO session_kv (key, value, expires_at_ms) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		expires_at_ms = excluded.expires_at_ms
	`, key, value, s.expiresAt(ttl))
	if err != nil {
		return fmt.Errorf("sqlite set: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM session_kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("sqlite delete: %w", err)
	}
	return nil
}

// Take implements Store. DELETE ... RETURNING makes the read and the removal one statement.
func (s *SQLiteStore) Take(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value     []byte
		expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"DELETE FROM session_kv WHERE key = ? RETURNING value, expires_at_ms", key).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlite take: %w", err)
	}
	if !s.live(expiresAt) {
		return nil, false, nil
	}
	return value, true, nil
}

// Update implements Store inside one immediate transaction.
func (s *SQLiteStore) Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite update: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		current   []byte
		expiresAt int64
	)
	found := true
	err = tx.QueryRowContext(ctx,
		"SELECT value, expires_at_ms FROM session_kv WHERE key = ?", key).Scan(&current, &expiresAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		found = false
	case err != nil:
		return fmt.Errorf("sqlite update: read: %w", err)
	case !s.live(expiresAt):
		current, found = nil, false
	}

	next, err := fn(current, found)
	if err != nil {
		return fmt.Errorf("sqlite update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
	INSERT INTO session_kv (key, value, expires_at_ms) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		value = excluded.value,
		expires_at_ms = excluded.expires_at_ms
	`, key, next, s.expiresAt(ttl)); err != nil {
		return fmt.Errorf("sqlite update: write: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite update: commit: %w", err)
	}
	return nil
}

// Sweep deletes expired rows and returns how many were removed.
func (s *SQLiteStore) Sweep(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM session_kv WHERE expires_at_ms != 0 AND expires_at_ms <= ?", s.now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close stops the purge loop and closes the database.
func (s *SQLiteStore) Close() error {
	s.janitor.Stop()
	return s.db.Close()
}
