// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/fairshare/internal/models"
	"github.com/mmynk/fairshare/internal/storage"
)

// DefaultDSN is a shared in-memory database: sessions end with the process.
const DefaultDSN = "file:fairshare?mode=memory&cache=shared"

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new SQLiteStore for the given DSN or database path.
// For a plain file path it creates the parent directories. Migrations run
// automatically.
func New(dsn string) (*SQLiteStore, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession stores bill under a new session id.
func (s *SQLiteStore) CreateSession(ctx context.Context, bill models.Bill, ttl time.Duration) (*storage.Session, error) {
	data, err := json.Marshal(bill)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bill: %w", err)
	}

	now := s.now()
	session := &storage.Session{
		ID:        uuid.New().String(),
		Bill:      bill.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, bill, ttl_ms, created_at, updated_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)",
		session.ID, string(data), ttl.Milliseconds(), now.UnixMilli(), now.UnixMilli(), session.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}

	return session, nil
}

// GetSession retrieves a live session by id.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*storage.Session, error) {
	var (
		data                            string
		createdAt, updatedAt, expiresAt int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT bill, created_at, updated_at, expires_at FROM sessions WHERE id = ? AND expires_at > ?",
		id, s.now().UnixMilli(),
	).Scan(&data, &createdAt, &updatedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session := &storage.Session{
		ID:        id,
		CreatedAt: time.UnixMilli(createdAt),
		UpdatedAt: time.UnixMilli(updatedAt),
		ExpiresAt: time.UnixMilli(expiresAt),
	}
	if err := json.Unmarshal([]byte(data), &session.Bill); err != nil {
		return nil, fmt.Errorf("failed to decode bill: %w", err)
	}
	return session, nil
}

// SaveBill replaces the session's bill and pushes its expiry forward by the
// session's ttl.
func (s *SQLiteStore) SaveBill(ctx context.Context, id string, bill models.Bill) (*storage.Session, error) {
	data, err := json.Marshal(bill)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bill: %w", err)
	}

	now := s.now().UnixMilli()
	result, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET bill = ?, updated_at = ?, expires_at = ? + ttl_ms WHERE id = ? AND expires_at > ?",
		string(data), now, now, id, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if err := expectOne(result, id); err != nil {
		return nil, err
	}

	return s.GetSession(ctx, id)
}

// DeleteSession removes a session.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return expectOne(result, id)
}

// PurgeExpired removes sessions whose expiry is not after now.
func (s *SQLiteStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged sessions: %w", err)
	}
	return n, nil
}

// CountSessions returns the number of sessions that have not expired.
func (s *SQLiteStore) CountSessions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sessions WHERE expires_at > ?", s.now().UnixMilli(),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return n, nil
}

func expectOne(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", storage.ErrNotFound, id)
	}
	return nil
}
