// Package storage provides abstractions for session storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/fairshare/internal/models"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is one editing session and the bill it holds.
type Session struct {
	ID        string
	Bill      models.Bill
	CreatedAt time.Time
	UpdatedAt time.Time

	// ExpiresAt moves forward every time the bill is saved.
	ExpiresAt time.Time
}

// Store defines the interface for session storage operations.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	// CreateSession stores bill under a new session that expires after ttl
	// of inactivity.
	CreateSession(ctx context.Context, bill models.Bill, ttl time.Duration) (*Session, error)

	// GetSession retrieves a live session.
	// Returns ErrNotFound if it does not exist or has expired.
	GetSession(ctx context.Context, id string) (*Session, error)

	// SaveBill replaces the session's bill and extends its expiry.
	// Returns ErrNotFound if the session does not exist or has expired.
	SaveBill(ctx context.Context, id string, bill models.Bill) (*Session, error)

	// DeleteSession removes a session. Deleting a missing session returns ErrNotFound.
	DeleteSession(ctx context.Context, id string) error

	// PurgeExpired removes every session that expired before now and returns
	// how many were removed.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)

	// CountSessions returns the number of live sessions.
	CountSessions(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
