package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/billzy/internal/models"
	"github.com/mmynk/billzy/internal/storage"
)

// newItemName is the placeholder name of a manually added row.
const newItemName = "New item"

// AddItem inserts a manual item that is not tied to any receipt.
func (s *SQLiteStore) AddItem(ctx context.Context, sessionID string) (*models.Item, error) {
	if err := ensureSession(ctx, s.db, sessionID); err != nil {
		return nil, err
	}

	item := &models.Item{
		Name:        newItemName,
		Price:       0,
		Quantity:    1,
		AssigneeIDs: []string{},
	}
	if err := insertItem(ctx, s.db, sessionID, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem edits an item's name and price. A blank name is ignored. Setting
// a price marks the item as no longer uncertain.
func (s *SQLiteStore) UpdateItem(ctx context.Context, sessionID, itemID string, update models.ItemUpdate) (*models.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if update.Name != nil {
		if name := strings.TrimSpace(*update.Name); name != "" {
			res, err := tx.ExecContext(ctx,
				"UPDATE items SET name = ? WHERE id = ? AND session_id = ?",
				name, itemID, sessionID,
			)
			if err != nil {
				return nil, fmt.Errorf("failed to update item name: %w", err)
			}
			if err := expectAffected(res, "item", itemID); err != nil {
				return nil, err
			}
		}
	}

	if update.Price != nil {
		res, err := tx.ExecContext(ctx,
			"UPDATE items SET price = ?, uncertain = 0 WHERE id = ? AND session_id = ?",
			*update.Price, itemID, sessionID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update item price: %w", err)
		}
		if err := expectAffected(res, "item", itemID); err != nil {
			return nil, err
		}
	}

	item, err := getItem(ctx, tx, sessionID, itemID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return item, nil
}

// RemoveItem deletes an item and its assignments.
func (s *SQLiteStore) RemoveItem(ctx context.Context, sessionID, itemID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM items WHERE id = ? AND session_id = ?",
		itemID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove item: %w", err)
	}
	return expectAffected(res, "item", itemID)
}

// SetAssignment toggles whether a person shares an item. Both must belong to
// the session.
func (s *SQLiteStore) SetAssignment(ctx context.Context, sessionID, itemID, personID string, assigned bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureOwned(ctx, tx, "items", sessionID, itemID); err != nil {
		return err
	}
	if err := ensureOwned(ctx, tx, "people", sessionID, personID); err != nil {
		return err
	}

	if assigned {
		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO item_assignments (item_id, person_id) VALUES (?, ?)",
			itemID, personID,
		)
	} else {
		_, err = tx.ExecContext(ctx,
			"DELETE FROM item_assignments WHERE item_id = ? AND person_id = ?",
			itemID, personID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to set assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertItem(ctx context.Context, q queryer, sessionID string, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if item.AssigneeIDs == nil {
		item.AssigneeIDs = []string{}
	}

	_, err := q.ExecContext(ctx,
		"INSERT INTO items (id, session_id, receipt_id, name, price, quantity, uncertain) VALUES (?, ?, ?, ?, ?, ?, ?)",
		item.ID, sessionID, nullString(item.ReceiptID), item.Name, item.Price, item.Quantity, item.Uncertain,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	for _, personID := range item.AssigneeIDs {
		_, err = q.ExecContext(ctx,
			"INSERT OR IGNORE INTO item_assignments (item_id, person_id) VALUES (?, ?)",
			item.ID, personID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item assignment: %w", err)
		}
	}

	return nil
}

const itemColumns = "id, COALESCE(receipt_id, ''), name, price, quantity, uncertain"

func scanItem(row interface{ Scan(...any) error }) (models.Item, error) {
	var item models.Item
	err := row.Scan(&item.ID, &item.ReceiptID, &item.Name, &item.Price, &item.Quantity, &item.Uncertain)
	item.AssigneeIDs = []string{}
	return item, err
}

func getItem(ctx context.Context, q queryer, sessionID, itemID string) (*models.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE id = ? AND session_id = ?",
		itemID, sessionID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		"SELECT person_id FROM item_assignments WHERE item_id = ? ORDER BY rowid",
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var personID string
		if err := rows.Scan(&personID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		item.AssigneeIDs = append(item.AssigneeIDs, personID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return &item, nil
}

// loadItems reads all items of a session, then all assignments in a second
// query, since the single connection cannot serve nested result sets.
func loadItems(ctx context.Context, q queryer, sessionID string) ([]models.Item, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM items WHERE session_id = ? ORDER BY rowid",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	index := make(map[string]int)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		index[item.ID] = len(items)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	rows.Close()

	assignRows, err := q.QueryContext(ctx,
		`SELECT a.item_id, a.person_id FROM item_assignments a
		 JOIN items i ON i.id = a.item_id
		 WHERE i.session_id = ? ORDER BY a.rowid`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get item assignments: %w", err)
	}
	defer assignRows.Close()

	for assignRows.Next() {
		var itemID, personID string
		if err := assignRows.Scan(&itemID, &personID); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if i, ok := index[itemID]; ok {
			items[i].AssigneeIDs = append(items[i].AssigneeIDs, personID)
		}
	}
	if err := assignRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assignments: %w", err)
	}

	return items, nil
}

// ensureOwned returns storage.ErrNotFound unless the row exists in the
// session. table is always a constant from this package.
func ensureOwned(ctx context.Context, q queryer, table, sessionID, id string) error {
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM "+table+" WHERE id = ? AND session_id = ?",
		id, sessionID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", strings.TrimSuffix(table, "s"), id, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", table, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
