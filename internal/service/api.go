package service

// Messages of the billzy.v1.BillService API. All amounts are unrounded
// dollars; the *Text fields carry the two-decimal display form.

type Session struct {
	ID        string    `json:"id"`
	CreatedAt int64     `json:"created_at"`
	Receipts  []Receipt `json:"receipts"`
	People    []Person  `json:"people"`
	Items     []Item    `json:"items"`

	// Warnings concatenates the warnings of every receipt in order.
	Warnings []string `json:"warnings"`
}

type Receipt struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Total    *float64 `json:"total,omitempty"`
	Tax      *float64 `json:"tax,omitempty"`
	Warnings []string `json:"warnings"`
}

type Person struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type Item struct {
	ID          string   `json:"id"`
	ReceiptID   string   `json:"receipt_id,omitempty"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"`
	Uncertain   bool     `json:"uncertain"`
	AssigneeIDs []string `json:"assignee_ids"`
}

type CreateSessionRequest struct{}

type CreateSessionResponse struct {
	// Token must be sent as "Authorization: Bearer <token>" on every other
	// call.
	Token   string   `json:"token"`
	Session *Session `json:"session"`
}

type GetSessionRequest struct{}

type GetSessionResponse struct {
	Session *Session `json:"session"`
}

type DeleteSessionRequest struct{}

type DeleteSessionResponse struct{}

// ReceiptText is the OCR text of one receipt.
type ReceiptText struct {
	Text string `json:"text"`

	// Name overrides the suggested merchant label.
	Name string `json:"name,omitempty"`
}

type AddReceiptsRequest struct {
	Receipts []ReceiptText `json:"receipts"`
}

type AddReceiptsResponse struct {
	// Receipts are the newly added receipts, in request order.
	Receipts []Receipt `json:"receipts"`
	Session  *Session  `json:"session"`
}

type RemoveReceiptRequest struct {
	ReceiptID string `json:"receipt_id"`
}

type RemoveReceiptResponse struct{}

type AddPersonRequest struct {
	Name string `json:"name"`
}

type AddPersonResponse struct {
	Person Person `json:"person"`
}

type RenamePersonRequest struct {
	PersonID string `json:"person_id"`
	Name     string `json:"name"`
}

type RenamePersonResponse struct{}

type RemovePersonRequest struct {
	PersonID string `json:"person_id"`
}

type RemovePersonResponse struct{}

type AddItemRequest struct{}

type AddItemResponse struct {
	Item Item `json:"item"`
}

type UpdateItemRequest struct {
	ItemID string `json:"item_id"`

	// Nil fields are left unchanged. A blank name is ignored.
	Name  *string  `json:"name,omitempty"`
	Price *float64 `json:"price,omitempty"`
}

type UpdateItemResponse struct {
	Item Item `json:"item"`
}

type RemoveItemRequest struct {
	ItemID string `json:"item_id"`
}

type RemoveItemResponse struct{}

type SetAssignmentRequest struct {
	ItemID   string `json:"item_id"`
	PersonID string `json:"person_id"`
	Assigned bool   `json:"assigned"`
}

type SetAssignmentResponse struct{}

type GetSplitRequest struct{}

type GetSplitResponse struct {
	Split Split `json:"split"`
}

type Split struct {
	People []PersonShare `json:"people"`

	Total      float64 `json:"total"`
	Assigned   float64 `json:"assigned"`
	Unassigned float64 `json:"unassigned"`

	// Summary is one "Name: $x.xx" line per person.
	Summary string `json:"summary"`

	// CSV is the same summary as a "Person,Amount Owed" table.
	CSV string `json:"csv"`
}

type PersonShare struct {
	PersonID    string          `json:"person_id"`
	DisplayName string          `json:"display_name"`
	Owed        float64         `json:"owed"`
	OwedText    string          `json:"owed_text"`
	Merchants   []MerchantShare `json:"merchants"`
}

// MerchantShare is one receipt's portion of a person's share. ReceiptID is
// empty for the group of manually added items.
type MerchantShare struct {
	ReceiptID string      `json:"receipt_id,omitempty"`
	Merchant  string      `json:"merchant"`
	Subtotal  float64     `json:"subtotal"`
	Lines     []ShareLine `json:"lines"`
}

type ShareLine struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}
