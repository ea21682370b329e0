package calculator

// Person is someone who can be assigned items.
type Person struct {
	ID   string
	Name string // may be empty; DisplayName substitutes a placeholder
}

// Item represents a single line item to be split.
type Item struct {
	Name     string
	Price    float64
	Quantity int

	// ReceiptID identifies the receipt the item came from. Items from
	// different receipts never share a merchant group, even when the receipts
	// carry the same label. Empty for manually added items, which are then
	// grouped by Merchant alone.
	ReceiptID string

	// Merchant is the label of the receipt the item came from. Empty for
	// manually added items.
	Merchant string

	// AssigneeIDs is the set of people sharing this item. Duplicates and ids
	// not present in the people list are ignored.
	AssigneeIDs []string
}

// Allocation is the result of splitting items across people.
type Allocation struct {
	// Owed maps each person id to the unrounded amount they owe.
	Owed map[string]float64

	// Total is the sum of every item's price, assigned or not.
	Total float64

	// Assigned is the sum of the prices of items with at least one assignee.
	Assigned float64

	// Breakdown lists, per person and in roster order, what they owe for.
	Breakdown []PersonBreakdown
}

// CalculateSplit computes how much each person owes.
//
// Each item with at least one assignee contributes price/n to each of its n
// assignees. Items without assignees are counted in Total but contribute
// nothing to anyone. Shares are accumulated unrounded; use FormatMoney for
// display. The inputs are never modified.
func CalculateSplit(items []Item, people []Person) *Allocation {
	alloc := &Allocation{
		Owed: make(map[string]float64, len(people)),
	}

	known := make(map[string]bool, len(people))
	for _, p := range people {
		known[p.ID] = true
		alloc.Owed[p.ID] = 0
	}

	lines := make(map[string][]Line, len(people))
	for _, item := range items {
		alloc.Total += item.Price

		assignees := assigneesOf(item, known)
		if len(assignees) == 0 {
			continue
		}
		alloc.Assigned += item.Price

		// Split item among assigned people
		share := item.Price / float64(len(assignees))
		label := itemLabel(item, len(assignees))
		for _, id := range assignees {
			alloc.Owed[id] += share
			lines[id] = append(lines[id], Line{
				ReceiptID: item.ReceiptID,
				Merchant:  item.Merchant,
				Label:     label,
				Amount:    share,
			})
		}
	}

	alloc.Breakdown = buildBreakdown(people, alloc.Owed, lines)
	return alloc
}

// assigneesOf returns the distinct, known assignees of an item in the order
// they were assigned.
func assigneesOf(item Item, known map[string]bool) []string {
	seen := make(map[string]bool, len(item.AssigneeIDs))
	out := make([]string, 0, len(item.AssigneeIDs))
	for _, id := range item.AssigneeIDs {
		if !known[id] || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
