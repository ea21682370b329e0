package calculator

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// OtherMerchant groups items that did not come from a named receipt.
const OtherMerchant = "Other"

// Line is one person's share of one item.
type Line struct {
	ReceiptID string
	Merchant  string
	Label     string
	Amount    float64
}

// MerchantGroup is a person's lines for one receipt. Manual items without a
// receipt are grouped by merchant label.
type MerchantGroup struct {
	ReceiptID string
	Merchant  string
	Lines     []Line
	Subtotal  float64
}

// groupKey identifies a merchant group within one person's breakdown.
type groupKey struct {
	receiptID string
	merchant  string
}

// PersonBreakdown is the itemised view of what one person owes.
type PersonBreakdown struct {
	PersonID    string
	DisplayName string
	Groups      []MerchantGroup
	Total       float64
}

// DisplayName returns the person's name, or "Person N" (1-based position in
// the roster) when the name is blank.
func DisplayName(p Person, index int) string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Person %d", index+1)
}

// FormatMoney renders an amount with two decimals and a dollar sign.
func FormatMoney(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

// SummaryText renders one "Name: $x.xx" line per person.
func SummaryText(alloc *Allocation) string {
	lines := make([]string, 0, len(alloc.Breakdown))
	for _, pb := range alloc.Breakdown {
		lines = append(lines, fmt.Sprintf("%s: %s", pb.DisplayName, FormatMoney(pb.Total)))
	}
	return strings.Join(lines, "\n")
}

// SummaryCSV renders the summary as a two-column "Person,Amount Owed" table
// with plain two-decimal amounts.
func SummaryCSV(alloc *Allocation) (string, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write([]string{"Person", "Amount Owed"}); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, pb := range alloc.Breakdown {
		amount := decimal.NewFromFloat(pb.Total).StringFixed(2)
		if err := w.Write([]string{pb.DisplayName, amount}); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return b.String(), nil
}

// itemLabel annotates an item name with its quantity and split factor, e.g.
// "2x Nachos (3-way split)".
func itemLabel(item Item, ways int) string {
	label := item.Name
	if item.Quantity > 1 {
		label = fmt.Sprintf("%dx %s", item.Quantity, label)
	}
	if ways > 1 {
		label = fmt.Sprintf("%s (%d-way split)", label, ways)
	}
	return label
}

// buildBreakdown groups each person's lines by originating receipt, keeping
// groups in the order their first item appears.
func buildBreakdown(people []Person, owed map[string]float64, lines map[string][]Line) []PersonBreakdown {
	out := make([]PersonBreakdown, 0, len(people))
	for i, p := range people {
		pb := PersonBreakdown{
			PersonID:    p.ID,
			DisplayName: DisplayName(p, i),
			Total:       owed[p.ID],
		}

		index := make(map[groupKey]int)
		for _, l := range lines[p.ID] {
			merchant := l.Merchant
			if merchant == "" {
				merchant = OtherMerchant
			}
			key := groupKey{receiptID: l.ReceiptID, merchant: merchant}
			gi, ok := index[key]
			if !ok {
				gi = len(pb.Groups)
				index[key] = gi
				pb.Groups = append(pb.Groups, MerchantGroup{ReceiptID: l.ReceiptID, Merchant: merchant})
			}
			l.Merchant = merchant
			pb.Groups[gi].Lines = append(pb.Groups[gi].Lines, l)
			pb.Groups[gi].Subtotal += l.Amount
		}

		out = append(out, pb)
	}
	return out
}
