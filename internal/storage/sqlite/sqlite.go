// Package sqlite provides an in-memory SQLite implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billzy/internal/models"
	"github.com/mmynk/billzy/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// memoryDSN is a private in-memory database. It lives only as long as the
// connection that opened it, so the pool is pinned to one connection.
const memoryDSN = ":memory:"

// SQLiteStore implements storage.Store using an in-memory SQLite database.
// Nothing is written to disk and all state is lost when the store is closed.
//
// The single connection serialises every operation. Queries must be fully
// drained before the next one is issued, and code running inside a
// transaction must only use the transaction.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// New creates a new in-memory SQLiteStore and runs migrations.
func New() (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Closing the only connection would drop the database
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close closes the database connection, discarding all sessions.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateSession inserts an empty session.
func (s *SQLiteStore) CreateSession(ctx context.Context) (*models.Session, error) {
	session := &models.Session{
		ID:        uuid.New().String(),
		CreatedAt: s.now().Unix(),
		Receipts:  []models.Receipt{},
		People:    []models.Person{},
		Items:     []models.Item{},
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, created_at) VALUES (?, ?)",
		session.ID, session.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSession retrieves a session by ID, including receipts, people, items and
// assignments.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	session := &models.Session{}
	err = tx.QueryRowContext(ctx,
		"SELECT id, created_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&session.ID, &session.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Receipts, err = loadReceipts(ctx, tx, sessionID); err != nil {
		return nil, err
	}
	if session.People, err = loadPeople(ctx, tx, sessionID); err != nil {
		return nil, err
	}
	if session.Items, err = loadItems(ctx, tx, sessionID); err != nil {
		return nil, err
	}

	return session, nil
}

// DeleteSession removes a session. Receipts, people, items and assignments go
// with it through the cascading foreign keys.
func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return expectAffected(res, "session", sessionID)
}

// PurgeSessions deletes every session created before the cutoff.
func (s *SQLiteStore) PurgeSessions(ctx context.Context, createdBefore time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE created_at < ?",
		createdBefore.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged sessions: %w", err)
	}
	return n, nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ensureSession returns storage.ErrNotFound when the session does not exist.
func ensureSession(ctx context.Context, q queryer, sessionID string) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	return nil
}

// expectAffected maps an update or delete that touched no rows to
// storage.ErrNotFound.
func expectAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
