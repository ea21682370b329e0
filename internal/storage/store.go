// Package storage provides abstractions for session workspace storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/billzy/internal/models"
)

// ErrNotFound is returned when a session, or an entity within a session, does
// not exist. Entities are only visible through the session that owns them.
var ErrNotFound = errors.New("not found")

// ErrLimitReached is returned when adding to a collection that is full.
var ErrLimitReached = errors.New("limit reached")

// Store defines the interface for session workspace operations.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	// CreateSession starts an empty workspace.
	CreateSession(ctx context.Context) (*models.Session, error)

	// GetSession loads a session with all its receipts, people and items.
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)

	// DeleteSession removes a session and everything in it.
	DeleteSession(ctx context.Context, sessionID string) error

	// PurgeSessions deletes sessions created before the cutoff and returns how
	// many were removed.
	PurgeSessions(ctx context.Context, createdBefore time.Time) (int64, error)

	// AddReceipts stores a batch of receipts with their parsed items in one
	// transaction: on error nothing from the batch is kept. IDs are assigned
	// to the receipts and the items. A receipt without a name is labelled
	// "Receipt N", where N counts every receipt ever added to the session.
	AddReceipts(ctx context.Context, sessionID string, uploads []models.ReceiptUpload) error

	// RemoveReceipt deletes a receipt together with its items.
	RemoveReceipt(ctx context.Context, sessionID, receiptID string) error

	// AddPerson appends a person to the roster. When limit is positive and the
	// roster already holds limit people, it returns ErrLimitReached.
	AddPerson(ctx context.Context, sessionID, name string, limit int) (*models.Person, error)

	RenamePerson(ctx context.Context, sessionID, personID, name string) error

	// RemovePerson deletes a person and strips them from every assignment.
	RemovePerson(ctx context.Context, sessionID, personID string) error

	CountPeople(ctx context.Context, sessionID string) (int, error)

	// AddItem appends a manual item named "New item" with price 0.
	AddItem(ctx context.Context, sessionID string) (*models.Item, error)

	// UpdateItem applies an edit. Setting a price clears the uncertain flag.
	UpdateItem(ctx context.Context, sessionID, itemID string, update models.ItemUpdate) (*models.Item, error)

	RemoveItem(ctx context.Context, sessionID, itemID string) error

	// SetAssignment adds or removes a person from an item's assignees.
	// It is idempotent in both directions.
	SetAssignment(ctx context.Context, sessionID, itemID, personID string, assigned bool) error

	// Close releases any resources held by the store.
	Close() error
}
