package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/billzy/internal/models"
	"github.com/mmynk/billzy/internal/storage"
)

// AddPerson inserts a new person at the end of the roster.
func (s *SQLiteStore) AddPerson(ctx context.Context, sessionID, name string, limit int) (*models.Person, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := countPeople(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && n >= limit {
		return nil, fmt.Errorf("session %s has %d people: %w", sessionID, n, storage.ErrLimitReached)
	}

	person := &models.Person{
		ID:   uuid.New().String(),
		Name: strings.TrimSpace(name),
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO people (id, session_id, name) VALUES (?, ?, ?)",
		person.ID, sessionID, person.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create person: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return person, nil
}

// RenamePerson sets a person's display name. A blank name is allowed.
func (s *SQLiteStore) RenamePerson(ctx context.Context, sessionID, personID, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE people SET name = ? WHERE id = ? AND session_id = ?",
		strings.TrimSpace(name), personID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename person: %w", err)
	}
	return expectAffected(res, "person", personID)
}

// RemovePerson deletes a person. Their assignments cascade.
func (s *SQLiteStore) RemovePerson(ctx context.Context, sessionID, personID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM people WHERE id = ? AND session_id = ?",
		personID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove person: %w", err)
	}
	return expectAffected(res, "person", personID)
}

// CountPeople returns the roster size.
func (s *SQLiteStore) CountPeople(ctx context.Context, sessionID string) (int, error) {
	return countPeople(ctx, s.db, sessionID)
}

func countPeople(ctx context.Context, q queryer, sessionID string) (int, error) {
	if err := ensureSession(ctx, q, sessionID); err != nil {
		return 0, err
	}

	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM people WHERE session_id = ?", sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count people: %w", err)
	}
	return n, nil
}

func loadPeople(ctx context.Context, q queryer, sessionID string) ([]models.Person, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name FROM people WHERE session_id = ? ORDER BY rowid",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get people: %w", err)
	}
	defer rows.Close()

	people := []models.Person{}
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate people: %w", err)
	}

	return people, nil
}
