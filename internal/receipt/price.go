package receipt

import (
	"regexp"
	"strings"
)

// Extraction is the result of pulling a price off a candidate line.
type Extraction struct {
	Price     float64
	Rest      string
	Uncertain bool
}

// A price anchored at the end of the line and separated from the label by
// whitespace: "Coffee 3.50", "Coffee $3.50", "Coffee 3,50".
var trailingPriceRe = regexp.MustCompile(`^(.*?)\s+[$£€]?\s?(\d{1,3}(?:,\d{3})+\.\d{2}|\d+[.,]\d{2})$`)

// ExtractPrice locates the price on a candidate line.
//
// The trailing-price strategy runs first. When it does not match (OCR often
// drops the space in "Bagel$2.25"), the rightmost money token anywhere on the
// line is used instead and the extraction is marked uncertain. The second
// return value is false when the line has no usable price; such lines are
// dropped, never retried.
func ExtractPrice(line string) (Extraction, bool) {
	if m := trailingPriceRe.FindStringSubmatch(line); m != nil {
		rest := strings.TrimSpace(m[1])
		if rest == "" {
			return Extraction{}, false
		}
		price, ok := parseMoney(m[2])
		if !ok || !priceInRange(price) {
			return Extraction{}, false
		}
		return Extraction{Price: price.InexactFloat64(), Rest: rest}, true
	}
	return extractAnywhere(line)
}

// extractAnywhere takes the last money-shaped token on the line. Receipts
// print the price after the name, so the rightmost token beats earlier
// numbers such as "2 @ 1.50" unit prices. Negative amounts ("-3.50",
// "-$3.50", "3.50-") are discounts or refunds and never become a price.
func extractAnywhere(line string) (Extraction, bool) {
	var last *moneyMatch
	matches := findMoney(line)
	for i := range matches {
		if matches[i].intDigits < 1 || matches[i].intDigits > 4 || negative(line, matches[i]) {
			continue
		}
		last = &matches[i]
	}
	if last == nil || !priceInRange(last.value) {
		return Extraction{}, false
	}
	rest := strings.TrimRight(line[:last.start], " \t$£€")
	return Extraction{
		Price:     last.value.InexactFloat64(),
		Rest:      strings.TrimSpace(rest),
		Uncertain: true,
	}, true
}

// negative reports whether a minus sign sits directly before the token (an
// optional currency symbol in between) or directly after it.
func negative(line string, m moneyMatch) bool {
	before := strings.TrimRight(line[:m.start], "$£€")
	return strings.HasSuffix(before, "-") || strings.HasPrefix(line[m.end:], "-")
}
