package service

import (
	"log/slog"

	"github.com/mmynk/billzy/internal/middleware"
)

var (
	_ middleware.LogAttrer = (*AddReceiptsRequest)(nil)
	_ middleware.LogAttrer = (*AddReceiptsResponse)(nil)
	_ middleware.LogAttrer = (*RemoveReceiptRequest)(nil)
	_ middleware.LogAttrer = (*UpdateItemRequest)(nil)
	_ middleware.LogAttrer = (*SetAssignmentRequest)(nil)
	_ middleware.LogAttrer = (*GetSplitResponse)(nil)
)

func (r *AddReceiptsRequest) LogAttrs() []slog.Attr {
	size := 0
	for _, rec := range r.Receipts {
		size += len(rec.Text)
	}
	return []slog.Attr{
		slog.Int("receipts", len(r.Receipts)),
		slog.Int("text_bytes", size),
	}
}

func (r *AddReceiptsResponse) LogAttrs() []slog.Attr {
	warnings := 0
	for _, rec := range r.Receipts {
		warnings += len(rec.Warnings)
	}
	attrs := []slog.Attr{slog.Int("warnings", warnings)}
	if r.Session != nil {
		attrs = append(attrs, slog.Int("session_items", len(r.Session.Items)))
	}
	return attrs
}

func (r *RemoveReceiptRequest) LogAttrs() []slog.Attr {
	return []slog.Attr{slog.String("receipt_id", r.ReceiptID)}
}

func (r *UpdateItemRequest) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("item_id", r.ItemID),
		slog.Bool("price_edited", r.Price != nil),
	}
}

func (r *SetAssignmentRequest) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("item_id", r.ItemID),
		slog.String("person_id", r.PersonID),
		slog.Bool("assigned", r.Assigned),
	}
}

func (r *GetSplitResponse) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.Int("people", len(r.Split.People)),
		slog.Float64("unassigned", r.Split.Unassigned),
	}
}
