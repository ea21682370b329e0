// Package models defines the session workspace models for billzy.
//
// A Session is the unit of isolation: everything a user builds while
// splitting a bill (receipts, people, items, assignments) belongs to exactly
// one session and disappears with it.
//
//   - Session: the workspace, identified by a UUID and carried in a token
//   - Receipt: one parsed receipt with its merchant label, totals and warnings
//   - Person: someone who can be assigned items; the name may be blank
//   - Item: a line item, parsed from a receipt or added by hand
//
// Relationships are expressed with ID strings, never pointers. Items belong
// to a receipt when ReceiptID is set; manually added items have an empty
// ReceiptID and are grouped under "Other" in the split breakdown.
package models
