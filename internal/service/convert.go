package service

import (
	"github.com/mmynk/billzy/internal/calculator"
	"github.com/mmynk/billzy/internal/models"
)

func toSession(s *models.Session) *Session {
	out := &Session{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		Receipts:  make([]Receipt, 0, len(s.Receipts)),
		People:    make([]Person, 0, len(s.People)),
		Items:     make([]Item, 0, len(s.Items)),
		Warnings:  []string{},
	}
	for _, r := range s.Receipts {
		out.Receipts = append(out.Receipts, toReceipt(r))
		out.Warnings = append(out.Warnings, r.Warnings...)
	}
	for i, p := range s.People {
		out.People = append(out.People, toPerson(p, i))
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, toItem(it))
	}
	return out
}

func toReceipt(r models.Receipt) Receipt {
	warnings := r.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return Receipt{
		ID:       r.ID,
		Name:     r.Name,
		Total:    r.Total,
		Tax:      r.Tax,
		Warnings: warnings,
	}
}

// toPerson converts a person at the given roster position.
func toPerson(p models.Person, index int) Person {
	return Person{
		ID:          p.ID,
		Name:        p.Name,
		DisplayName: calculator.DisplayName(calculator.Person{ID: p.ID, Name: p.Name}, index),
	}
}

func toItem(it models.Item) Item {
	assignees := it.AssigneeIDs
	if assignees == nil {
		assignees = []string{}
	}
	return Item{
		ID:          it.ID,
		ReceiptID:   it.ReceiptID,
		Name:        it.Name,
		Price:       it.Price,
		Quantity:    it.Quantity,
		Uncertain:   it.Uncertain,
		AssigneeIDs: assignees,
	}
}

func toSplit(alloc *calculator.Allocation, unassigned float64, csvText string) Split {
	split := Split{
		People:     make([]PersonShare, 0, len(alloc.Breakdown)),
		Total:      alloc.Total,
		Assigned:   alloc.Assigned,
		Unassigned: unassigned,
		Summary:    calculator.SummaryText(alloc),
		CSV:        csvText,
	}
	for _, pb := range alloc.Breakdown {
		share := PersonShare{
			PersonID:    pb.PersonID,
			DisplayName: pb.DisplayName,
			Owed:        pb.Total,
			OwedText:    calculator.FormatMoney(pb.Total),
			Merchants:   make([]MerchantShare, 0, len(pb.Groups)),
		}
		for _, g := range pb.Groups {
			ms := MerchantShare{
				ReceiptID: g.ReceiptID,
				Merchant:  g.Merchant,
				Subtotal:  g.Subtotal,
				Lines:     make([]ShareLine, 0, len(g.Lines)),
			}
			for _, l := range g.Lines {
				ms.Lines = append(ms.Lines, ShareLine{Label: l.Label, Amount: l.Amount})
			}
			share.Merchants = append(share.Merchants, ms)
		}
		split.People = append(split.People, share)
	}
	return split
}
