package models

// Session is an isolated workspace. Sessions are not persisted past the
// lifetime of the process.
type Session struct {
	// ID is the unique identifier for the session (UUID format).
	ID string

	// CreatedAt is the Unix timestamp when the session was created.
	CreatedAt int64

	// Receipts in the order they were added.
	Receipts []Receipt

	// People in roster order.
	People []Person

	// Items in the order they were added.
	Items []Item
}

// Receipt is one parsed receipt.
type Receipt struct {
	ID string

	// Name is the merchant label. It is the suggested merchant name when one
	// was found, otherwise a "Receipt N" placeholder.
	Name string

	// Total and Tax are the amounts read from the receipt, nil when absent.
	Total *float64
	Tax   *float64

	// Warnings are the parse warnings, in the order they were produced.
	Warnings []string

	CreatedAt int64
}

// ReceiptUpload is a receipt together with the items parsed from it, ready to
// be stored.
type ReceiptUpload struct {
	Receipt *Receipt
	Items   []Item
}

// Person is someone sharing the bill.
type Person struct {
	ID   string
	Name string
}

// Item is a single line item.
type Item struct {
	ID string

	// ReceiptID is empty for manually added items.
	ReceiptID string

	Name      string
	Price     float64
	Quantity  int
	Uncertain bool

	// AssigneeIDs are the people sharing this item, in assignment order.
	AssigneeIDs []string
}

// ItemUpdate carries the editable fields of an item. Nil fields are left
// unchanged.
type ItemUpdate struct {
	Name  *string
	Price *float64
}
