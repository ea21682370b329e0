package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/billzy/internal/models"
)

// AddReceipts persists a batch of receipts, their warnings and their items in
// one transaction. Either every receipt is stored or none is.
func (s *SQLiteStore) AddReceipts(ctx context.Context, sessionID string, uploads []models.ReceiptUpload) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ensureSession(ctx, tx, sessionID); err != nil {
		return err
	}

	for _, u := range uploads {
		if err := s.insertReceipt(ctx, tx, sessionID, u.Receipt, u.Items); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *SQLiteStore) insertReceipt(ctx context.Context, tx *sql.Tx, sessionID string, receipt *models.Receipt, items []models.Item) error {
	seq, err := nextReceiptSeq(ctx, tx, sessionID)
	if err != nil {
		return err
	}

	// Generate fields if not set
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = s.now().Unix()
	}
	receipt.Name = strings.TrimSpace(receipt.Name)
	if receipt.Name == "" {
		receipt.Name = generateReceiptName(seq)
	}

	// Insert receipt
	_, err = tx.ExecContext(ctx,
		"INSERT INTO receipts (id, session_id, name, total, tax, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		receipt.ID, sessionID, receipt.Name, nullFloat(receipt.Total), nullFloat(receipt.Tax), receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	// Insert warnings
	for i, w := range receipt.Warnings {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO receipt_warnings (receipt_id, position, message) VALUES (?, ?, ?)",
			receipt.ID, i, w,
		)
		if err != nil {
			return fmt.Errorf("failed to insert warning: %w", err)
		}
	}

	// Insert items
	for i := range items {
		item := &items[i]
		item.ReceiptID = receipt.ID
		if err := insertItem(ctx, tx, sessionID, item); err != nil {
			return err
		}
	}

	return nil
}

// nextReceiptSeq bumps and returns the session's receipt counter.
func nextReceiptSeq(ctx context.Context, tx *sql.Tx, sessionID string) (int, error) {
	if _, err := tx.ExecContext(ctx,
		"UPDATE sessions SET receipt_seq = receipt_seq + 1 WHERE id = ?", sessionID,
	); err != nil {
		return 0, fmt.Errorf("failed to bump receipt counter: %w", err)
	}
	var seq int
	if err := tx.QueryRowContext(ctx,
		"SELECT receipt_seq FROM sessions WHERE id = ?", sessionID,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to read receipt counter: %w", err)
	}
	return seq, nil
}

// RemoveReceipt deletes a receipt. Its items and warnings cascade.
func (s *SQLiteStore) RemoveReceipt(ctx context.Context, sessionID, receiptID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM receipts WHERE id = ? AND session_id = ?",
		receiptID, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove receipt: %w", err)
	}
	return expectAffected(res, "receipt", receiptID)
}

func loadReceipts(ctx context.Context, q queryer, sessionID string) ([]models.Receipt, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT id, name, total, tax, created_at FROM receipts WHERE session_id = ? ORDER BY rowid",
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get receipts: %w", err)
	}
	defer rows.Close()

	receipts := []models.Receipt{}
	index := make(map[string]int)
	for rows.Next() {
		var (
			r          models.Receipt
			total, tax sql.NullFloat64
		)
		if err := rows.Scan(&r.ID, &r.Name, &total, &tax, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		r.Total = floatPtr(total)
		r.Tax = floatPtr(tax)
		r.Warnings = []string{}
		index[r.ID] = len(receipts)
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	rows.Close()

	warnRows, err := q.QueryContext(ctx,
		`SELECT w.receipt_id, w.message FROM receipt_warnings w
		 JOIN receipts r ON r.id = w.receipt_id
		 WHERE r.session_id = ? ORDER BY r.rowid, w.position`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get warnings: %w", err)
	}
	defer warnRows.Close()

	for warnRows.Next() {
		var receiptID, message string
		if err := warnRows.Scan(&receiptID, &message); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		if i, ok := index[receiptID]; ok {
			receipts[i].Warnings = append(receipts[i].Warnings, message)
		}
	}
	if err := warnRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate warnings: %w", err)
	}

	return receipts, nil
}

// generateReceiptName labels the seq-th receipt of a session when its merchant
// could not be read.
func generateReceiptName(seq int) string {
	return fmt.Sprintf("Receipt %d", seq)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
