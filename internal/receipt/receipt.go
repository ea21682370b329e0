// Package receipt turns OCR text of a photographed receipt into line items.
//
// Parsing is a fixed pipeline of small rule-based stages:
//
//  1. Classify: each line is labelled Total, Tax, Ignored, Metadata or Candidate.
//  2. ExtractPrice: candidate lines give up a trailing (or, failing that, the
//     rightmost) money amount.
//  3. SplitQuantity: a leading "2" or "2x" becomes the item quantity.
//  4. ValidName: whatever is left must look like a product name.
//
// Every function in this package is pure. Parsing the same text twice yields an
// identical Result, and Parse never fails: the worst case is zero items and a
// warning explaining why.
package receipt

// Price bounds for an emitted item. Amounts outside are rejected, never clamped.
const (
	MinPrice = 0.01
	MaxPrice = 9999.99
)

// Quantity bounds for a leading quantity marker.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

// Warnings emitted by Parse.
const (
	WarnNoItems       = "No line items could be read. Try a clearer image or add items manually."
	WarnTotalMismatch = "Total may be inaccurate: item sum does not match receipt total."
	WarnUncertain     = "Some items are marked uncertain. Please verify prices."
)

// ParsedItem is a single purchase line read from a receipt.
type ParsedItem struct {
	Name     string  `json:"name" yaml:"name"`
	Price    float64 `json:"price" yaml:"price"`
	Quantity int     `json:"quantity" yaml:"quantity"`

	// Uncertain marks items whose price came from the anywhere-in-line fallback
	// rather than a price anchored at the end of the line.
	Uncertain bool `json:"uncertain,omitempty" yaml:"uncertain,omitempty"`
}

// Totals holds the total and tax lines found on a receipt. A nil field means
// the receipt had no such line. The last matching line wins.
type Totals struct {
	Total *float64 `json:"total,omitempty" yaml:"total,omitempty"`
	Tax   *float64 `json:"tax,omitempty" yaml:"tax,omitempty"`
}

// LineTrace records what the parser did with one input line.
type LineTrace struct {
	Line    int       `json:"line" yaml:"line"`
	Text    string    `json:"text" yaml:"text"`
	Class   LineClass `json:"class" yaml:"class"`
	Outcome Outcome   `json:"outcome" yaml:"outcome"`
}

// Outcome is the per-line result recorded in a LineTrace.
type Outcome string

const (
	OutcomeItem          Outcome = "item"
	OutcomeUncertainItem Outcome = "uncertain_item"
	OutcomeTotal         Outcome = "total"
	OutcomeTax           Outcome = "tax"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeNoPrice       Outcome = "no_price"
	OutcomeBadName       Outcome = "bad_name"
)

// Result is the output of one Parse call. It is owned by the caller.
type Result struct {
	Items    []ParsedItem `json:"items" yaml:"items"`
	Totals   Totals       `json:"totals" yaml:"totals"`
	Warnings []string     `json:"warnings" yaml:"warnings"`
	Trace    []LineTrace  `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// ItemSum returns the sum of all item prices.
func (r *Result) ItemSum() float64 {
	var sum float64
	for _, it := range r.Items {
		sum += it.Price
	}
	return sum
}

// HasUncertain reports whether any item was read through the fallback path.
func (r *Result) HasUncertain() bool {
	for _, it := range r.Items {
		if it.Uncertain {
			return true
		}
	}
	return false
}
