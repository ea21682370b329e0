package receipt

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// LineClass is the label the classifier assigns to one receipt line.
type LineClass string

const (
	ClassTotal     LineClass = "total"
	ClassTax       LineClass = "tax"
	ClassIgnored   LineClass = "ignored"
	ClassMetadata  LineClass = "metadata"
	ClassCandidate LineClass = "candidate"
)

// Classification is the class of a line together with the rule that fired.
type Classification struct {
	Class LineClass
	Rule  string
}

// maxLineLen is the length beyond which a line without a trailing amount is
// treated as promotional or footer text.
const maxLineLen = 120

var (
	totalRe    = regexp.MustCompile(`\b(?:total|total due|amount|balance)\b`)
	taxRe      = regexp.MustCompile(`\b(?:tax|vat|gst)\b`)
	subtotalRe = regexp.MustCompile(`\b(?:subtotal|sub total)\b`)

	dateRe = regexp.MustCompile(`\b\d{1,4}/\d{1,2}/\d{1,4}\b`)
	timeRe = regexp.MustCompile(`^\d{1,2}:\d{2}(?::\d{2})?\s*(?:[ap]\.?m\.?)?$`)

	headerRe      = regexp.MustCompile(`\b(?:server|table|tab|guests?)\b|\bcheck\s*(?:#|no\b|number\b)`)
	checkNumberRe = regexp.MustCompile(`^#?\d{2,5}$`)

	streetRe = regexp.MustCompile(`\b(?:street|st|avenue|ave|boulevard|blvd|road|rd|drive|dr|lane|ln|highway|hwy|suite|ste)\b`)
	zipRe    = regexp.MustCompile(`\b\d{5}(?:-\d{4})?$`)

	paymentRe    = regexp.MustCompile(`\b(?:visa|mastercard|amex|chip|read|approved|declined|sale|authorization)\b`)
	maskedCardRe = regexp.MustCompile(`(?:[x*•]\s*){2,}\d{4}\b`)
	approvalRe   = regexp.MustCompile(`^\d{6}$`)
	phoneRe      = regexp.MustCompile(`(?:\(\d{3}\)\s*|\b\d{3}[-.\s])?\b\d{3}-\d{4}\b`)

	trailingAmountRe = regexp.MustCompile(`\$?\d+[.,]\d{2}$`)
)

// rule is one entry of the prioritised classification list.
type rule struct {
	name  string
	class LineClass
	match func(line, lower string) bool
}

// rules is evaluated top to bottom and the first match wins. Keyword rules sit
// above the metadata rules so "Total Tax Included" is a total, not noise.
var rules = []rule{
	{"total", ClassTotal, func(_, lower string) bool { return totalRe.MatchString(lower) }},
	{"tax", ClassTax, func(_, lower string) bool { return taxRe.MatchString(lower) }},
	{"subtotal", ClassIgnored, func(_, lower string) bool { return subtotalRe.MatchString(lower) }},

	{"short", ClassMetadata, func(line, _ string) bool { return utf8.RuneCountInString(line) < 3 }},
	{"date", ClassMetadata, func(_, lower string) bool { return dateRe.MatchString(lower) }},
	{"time", ClassMetadata, func(_, lower string) bool { return timeRe.MatchString(lower) }},
	{"header", ClassMetadata, func(_, lower string) bool { return headerRe.MatchString(lower) }},
	{"check_number", ClassMetadata, func(_, lower string) bool { return checkNumberRe.MatchString(lower) }},
	{"address", ClassMetadata, isAddress},
	{"zip", ClassMetadata, func(_, lower string) bool { return zipRe.MatchString(lower) }},
	{"payment", ClassMetadata, func(_, lower string) bool { return paymentRe.MatchString(lower) }},
	{"masked_card", ClassMetadata, func(_, lower string) bool { return maskedCardRe.MatchString(lower) }},
	{"approval_code", ClassMetadata, func(_, lower string) bool { return approvalRe.MatchString(lower) }},
	{"phone", ClassMetadata, func(_, lower string) bool { return phoneRe.MatchString(lower) }},
	{"promo", ClassMetadata, func(line, _ string) bool {
		return utf8.RuneCountInString(line) > maxLineLen && !trailingAmountRe.MatchString(line)
	}},
}

// Classify labels a single trimmed, non-empty line.
func Classify(line string) Classification {
	lower := strings.ToLower(line)
	for _, r := range rules {
		if r.match(line, lower) {
			return Classification{Class: r.class, Rule: r.name}
		}
	}
	return Classification{Class: ClassCandidate}
}

// isAddress matches a street-type word on a line that still has a digit once
// its money tokens are removed, so "Dr Pepper 2.50" stays an item while
// "123 Main St" does not.
func isAddress(_, lower string) bool {
	if !streetRe.MatchString(lower) {
		return false
	}
	rest := moneyRe.ReplaceAllString(lower, "")
	return strings.ContainsAny(rest, "0123456789")
}
