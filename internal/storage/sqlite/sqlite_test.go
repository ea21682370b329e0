package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/billzy/internal/models"
	"github.com/mmynk/billzy/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func addReceipt(ctx context.Context, store *SQLiteStore, sessionID string, receipt *models.Receipt, items []models.Item) error {
	return store.AddReceipts(ctx, sessionID, []models.ReceiptUpload{{Receipt: receipt, Items: items}})
}

func TestSQLiteStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateSession returns an empty workspace", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.NotZero(t, session.CreatedAt)

		got, err := store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.Empty(t, got.Receipts)
		assert.Empty(t, got.People)
		assert.Empty(t, got.Items)
	})

	t.Run("GetSession returns ErrNotFound for unknown session", func(t *testing.T) {
		_, err := store.GetSession(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("AddReceipts stores items and warnings in order", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)

		total := 5.75
		receipt := &models.Receipt{
			Name:     "JOE'S DINER",
			Total:    &total,
			Warnings: []string{"first", "second"},
		}
		items := []models.Item{
			{Name: "Coffee", Price: 3.50, Quantity: 1},
			{Name: "Bagel", Price: 2.25, Quantity: 2, Uncertain: true},
		}
		require.NoError(t, addReceipt(ctx, store, session.ID, receipt, items))
		assert.NotEmpty(t, receipt.ID)
		assert.NotEmpty(t, items[0].ID)

		got, err := store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, got.Receipts, 1)
		assert.Equal(t, "JOE'S DINER", got.Receipts[0].Name)
		require.NotNil(t, got.Receipts[0].Total)
		assert.InDelta(t, 5.75, *got.Receipts[0].Total, 1e-9)
		assert.Nil(t, got.Receipts[0].Tax)
		assert.Equal(t, []string{"first", "second"}, got.Receipts[0].Warnings)

		require.Len(t, got.Items, 2)
		assert.Equal(t, "Coffee", got.Items[0].Name)
		assert.Equal(t, receipt.ID, got.Items[0].ReceiptID)
		assert.Equal(t, 2, got.Items[1].Quantity)
		assert.True(t, got.Items[1].Uncertain)
	})

	t.Run("AddReceipts names unnamed receipts by position", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)

		first := &models.Receipt{}
		require.NoError(t, addReceipt(ctx, store, session.ID, first, nil))
		second := &models.Receipt{Name: "  "}
		require.NoError(t, addReceipt(ctx, store, session.ID, second, nil))

		assert.Equal(t, "Receipt 1", first.Name)
		assert.Equal(t, "Receipt 2", second.Name)
	})

	t.Run("AddReceipts does not reuse names after a removal", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)

		first := &models.Receipt{}
		require.NoError(t, addReceipt(ctx, store, session.ID, first, []models.Item{{Name: "Tea", Price: 3.50, Quantity: 1}}))
		second := &models.Receipt{}
		require.NoError(t, addReceipt(ctx, store, session.ID, second, []models.Item{{Name: "Pie", Price: 2.25, Quantity: 1}}))
		require.NoError(t, store.RemoveReceipt(ctx, session.ID, first.ID))

		third := &models.Receipt{}
		require.NoError(t, addReceipt(ctx, store, session.ID, third, []models.Item{{Name: "Jam", Price: 4.00, Quantity: 1}}))

		assert.Equal(t, "Receipt 2", second.Name)
		assert.Equal(t, "Receipt 3", third.Name)

		got, err := store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, got.Receipts, 2)
		assert.NotEqual(t, got.Receipts[0].Name, got.Receipts[1].Name)
	})

	t.Run("AddReceipts stores a batch atomically", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)

		ok := []models.ReceiptUpload{
			{Receipt: &models.Receipt{Name: "Cafe"}, Items: []models.Item{{Name: "Tea", Price: 2, Quantity: 1}}},
			{Receipt: &models.Receipt{}, Items: []models.Item{{Name: "Pie", Price: 3, Quantity: 1}}},
		}
		require.NoError(t, store.AddReceipts(ctx, session.ID, ok))
		assert.Equal(t, "Receipt 2", ok[1].Receipt.Name)

		// The second receipt reuses the first one's id, so its insert fails
		// after the first receipt and its items were written.
		bad := []models.ReceiptUpload{
			{Receipt: &models.Receipt{ID: "dup", Name: "Deli"}, Items: []models.Item{{Name: "Soup", Price: 5, Quantity: 1}}},
			{Receipt: &models.Receipt{ID: "dup", Name: "Deli"}, Items: []models.Item{{Name: "Bread", Price: 1, Quantity: 1}}},
		}
		assert.Error(t, store.AddReceipts(ctx, session.ID, bad))

		got, err := store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Len(t, got.Receipts, 2)
		assert.Len(t, got.Items, 2)

		// The failed batch did not advance the counter
		next := &models.Receipt{}
		require.NoError(t, addReceipt(ctx, store, session.ID, next, nil))
		assert.Equal(t, "Receipt 3", next.Name)
	})

	t.Run("RemoveReceipt removes its items only", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)

		receipt := &models.Receipt{Name: "Cafe"}
		require.NoError(t, addReceipt(ctx, store, session.ID, receipt, []models.Item{{Name: "Tea", Price: 2}}))
		manual, err := store.AddItem(ctx, session.ID)
		require.NoError(t, err)

		require.NoError(t, store.RemoveReceipt(ctx, session.ID, receipt.ID))

		got, err := store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Receipts)
		require.Len(t, got.Items, 1)
		assert.Equal(t, manual.ID, got.Items[0].ID)

		assert.ErrorIs(t, store.RemoveReceipt(ctx, session.ID, receipt.ID), storage.ErrNotFound)
	})

	t.Run("people roster", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)

		alice, err := store.AddPerson(ctx, session.ID, " Alice ", 0)
		require.NoError(t, err)
		assert.Equal(t, "Alice", alice.Name)
		blank, err := store.AddPerson(ctx, session.ID, "", 0)
		require.NoError(t, err)

		require.NoError(t, store.RenamePerson(ctx, session.ID, blank.ID, "Bob"))

		n, err := store.CountPeople(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		got, err := store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, []models.Person{{ID: alice.ID, Name: "Alice"}, {ID: blank.ID, Name: "Bob"}}, got.People)

		assert.ErrorIs(t, store.RenamePerson(ctx, session.ID, "missing", "X"), storage.ErrNotFound)
	})

	t.Run("AddPerson enforces the limit", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := store.AddPerson(ctx, session.ID, "", 3)
			require.NoError(t, err)
		}
		_, err = store.AddPerson(ctx, session.ID, "", 3)
		assert.ErrorIs(t, err, storage.ErrLimitReached)
	})

	t.Run("assignments", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)

		alice, err := store.AddPerson(ctx, session.ID, "Alice", 0)
		require.NoError(t, err)
		bob, err := store.AddPerson(ctx, session.ID, "Bob", 0)
		require.NoError(t, err)
		item, err := store.AddItem(ctx, session.ID)
		require.NoError(t, err)

		require.NoError(t, store.SetAssignment(ctx, session.ID, item.ID, alice.ID, true))
		require.NoError(t, store.SetAssignment(ctx, session.ID, item.ID, bob.ID, true))
		require.NoError(t, store.SetAssignment(ctx, session.ID, item.ID, alice.ID, true))

		got, err := store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, []string{alice.ID, bob.ID}, got.Items[0].AssigneeIDs)

		require.NoError(t, store.SetAssignment(ctx, session.ID, item.ID, alice.ID, false))
		require.NoError(t, store.SetAssignment(ctx, session.ID, item.ID, alice.ID, false))

		// Removing a person strips them from every item
		require.NoError(t, store.RemovePerson(ctx, session.ID, bob.ID))

		got, err = store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		assert.Empty(t, got.Items[0].AssigneeIDs)
		assert.Len(t, got.People, 1)

		err = store.SetAssignment(ctx, session.ID, item.ID, bob.ID, true)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("AddItem and UpdateItem", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)

		receipt := &models.Receipt{Name: "Diner"}
		require.NoError(t, addReceipt(ctx, store, session.ID, receipt, []models.Item{
			{Name: "Bagel", Price: 2.25, Quantity: 1, Uncertain: true},
		}))

		manual, err := store.AddItem(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, "New item", manual.Name)
		assert.Equal(t, 0.0, manual.Price)
		assert.Empty(t, manual.ReceiptID)

		got, err := store.GetSession(ctx, session.ID)
		require.NoError(t, err)
		bagel := got.Items[0]

		blank := "   "
		updated, err := store.UpdateItem(ctx, session.ID, bagel.ID, models.ItemUpdate{Name: &blank})
		require.NoError(t, err)
		assert.Equal(t, "Bagel", updated.Name)
		assert.True(t, updated.Uncertain)

		name, price := "Everything Bagel", 2.50
		updated, err = store.UpdateItem(ctx, session.ID, bagel.ID, models.ItemUpdate{Name: &name, Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "Everything Bagel", updated.Name)
		assert.InDelta(t, 2.50, updated.Price, 1e-9)
		assert.False(t, updated.Uncertain)
		assert.Equal(t, receipt.ID, updated.ReceiptID)

		require.NoError(t, store.RemoveItem(ctx, session.ID, manual.ID))
		assert.ErrorIs(t, store.RemoveItem(ctx, session.ID, manual.ID), storage.ErrNotFound)
		_, err = store.UpdateItem(ctx, session.ID, manual.ID, models.ItemUpdate{Price: &price})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		a, err := store.CreateSession(ctx)
		require.NoError(t, err)
		b, err := store.CreateSession(ctx)
		require.NoError(t, err)

		item, err := store.AddItem(ctx, a.ID)
		require.NoError(t, err)
		person, err := store.AddPerson(ctx, a.ID, "Alice", 0)
		require.NoError(t, err)

		assert.ErrorIs(t, store.RemoveItem(ctx, b.ID, item.ID), storage.ErrNotFound)
		assert.ErrorIs(t, store.RemovePerson(ctx, b.ID, person.ID), storage.ErrNotFound)
		assert.ErrorIs(t, store.SetAssignment(ctx, b.ID, item.ID, person.ID, true), storage.ErrNotFound)

		_, err = store.AddItem(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteSession cascades", func(t *testing.T) {
		session, err := store.CreateSession(ctx)
		require.NoError(t, err)
		item, err := store.AddItem(ctx, session.ID)
		require.NoError(t, err)

		require.NoError(t, store.DeleteSession(ctx, session.ID))

		_, err = store.GetSession(ctx, session.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, store.RemoveItem(ctx, session.ID, item.ID), storage.ErrNotFound)
		assert.ErrorIs(t, store.DeleteSession(ctx, session.ID), storage.ErrNotFound)
	})
}

func TestPurgeSessions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	old, err := store.CreateSession(ctx)
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	fresh, err := store.CreateSession(ctx)
	require.NoError(t, err)

	n, err := store.PurgeSessions(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetSession(ctx, old.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetSession(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestGenerateReceiptName(t *testing.T) {
	assert.Equal(t, "Receipt 1", generateReceiptName(1))
	assert.Equal(t, "Receipt 4", generateReceiptName(4))
}
