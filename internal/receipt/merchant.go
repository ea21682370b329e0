package receipt

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	merchantScanLines = 8
	merchantMinLen    = 4
	merchantMaxLen    = 60
	merchantMinAlpha  = 4

	// Lines shorter than this that start with a digit are street numbers.
	merchantShortNumbered = 25
)

var (
	merchantRejectRe  = regexp.MustCompile(`\b(?:street|ave|blvd|road|dr|server|table|tab)\b|\bcheck\s*#`)
	merchantNumericRe = regexp.MustCompile(`^[\d\s.,:;#/()\-+]+$`)
)

// SuggestMerchant returns the first plausible business name among the first
// lines of the receipt text. It is independent of Parse and does not care
// whether any items were found.
func SuggestMerchant(text string) (string, bool) {
	lines := SplitLines(text)
	if len(lines) > merchantScanLines {
		lines = lines[:merchantScanLines]
	}
	for _, line := range lines {
		if isMerchantLine(line) {
			return NormalizeSpace(line), true
		}
	}
	return "", false
}

func isMerchantLine(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < merchantMinLen || n > merchantMaxLen {
		return false
	}
	if merchantNumericRe.MatchString(line) {
		return false
	}
	if merchantRejectRe.MatchString(strings.ToLower(line)) {
		return false
	}
	if n < merchantShortNumbered && unicode.IsDigit([]rune(line)[0]) {
		return false
	}
	alpha := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	return alpha >= merchantMinAlpha
}
