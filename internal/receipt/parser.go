package receipt

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

var (
	lineBreakRe = regexp.MustCompile(`\r?\n`)

	// reconcileTolerance is how far the item sum may drift from a detected
	// total before Parse warns.
	reconcileTolerance = decimal.RequireFromString("0.02")
)

// SplitLines splits OCR text into trimmed, non-empty lines. Both "\n" and
// "\r\n" line endings are accepted, and each line is NFKC-normalised so
// full-width digits and non-breaking spaces read like their ASCII forms.
func SplitLines(text string) []string {
	var lines []string
	for _, raw := range lineBreakRe.Split(text, -1) {
		line := strings.TrimSpace(norm.NFKC.String(raw))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Parse extracts line items, totals and warnings from OCR text.
func Parse(text string) *Result {
	res := &Result{
		Items:    []ParsedItem{},
		Warnings: []string{},
	}

	for i, line := range SplitLines(text) {
		c := Classify(line)
		tr := LineTrace{Line: i + 1, Text: line, Class: c.Class, Outcome: OutcomeSkipped}

		switch c.Class {
		case ClassTotal:
			if v, ok := firstAmount(line); ok {
				res.Totals.Total = &v
				tr.Outcome = OutcomeTotal
			}
		case ClassTax:
			if v, ok := firstAmount(line); ok {
				res.Totals.Tax = &v
				tr.Outcome = OutcomeTax
			}
		case ClassCandidate:
			item, outcome := parseItem(line)
			tr.Outcome = outcome
			if item != nil {
				res.Items = append(res.Items, *item)
				if item.Uncertain {
					res.Warnings = append(res.Warnings,
						fmt.Sprintf("%q - price may be wrong (uncertain read).", item.Name))
				}
			}
		}

		res.Trace = append(res.Trace, tr)
	}

	res.Warnings = append(res.Warnings, reconcile(res)...)
	return res
}

// parseItem runs a candidate line through price extraction, quantity
// splitting and name validation.
func parseItem(line string) (*ParsedItem, Outcome) {
	ex, ok := ExtractPrice(line)
	if !ok {
		return nil, OutcomeNoPrice
	}
	qty, name := SplitQuantity(ex.Rest)
	name = NormalizeSpace(name)
	if !ValidName(name) {
		return nil, OutcomeBadName
	}
	item := &ParsedItem{
		Name:      name,
		Price:     ex.Price,
		Quantity:  qty,
		Uncertain: ex.Uncertain,
	}
	if item.Uncertain {
		return item, OutcomeUncertainItem
	}
	return item, OutcomeItem
}

// reconcile returns the post-pass warnings for a finished result.
func reconcile(res *Result) []string {
	var warnings []string
	if len(res.Items) == 0 {
		warnings = append(warnings, WarnNoItems)
	}
	if res.Totals.Total != nil {
		sum := decimal.Zero
		for _, it := range res.Items {
			sum = sum.Add(decimal.NewFromFloat(it.Price))
		}
		diff := sum.Sub(decimal.NewFromFloat(*res.Totals.Total)).Abs()
		if diff.GreaterThan(reconcileTolerance) {
			warnings = append(warnings, WarnTotalMismatch)
		}
	}
	if res.HasUncertain() {
		warnings = append(warnings, WarnUncertain)
	}
	return warnings
}
