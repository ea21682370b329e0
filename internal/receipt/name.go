package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxNameLen bounds a plausible item name.
const maxNameLen = 120

var (
	// "2 Mocktail", "2x Mocktail", "2 × Mocktail". The marker must be bare so
	// "3 Xtra Cheese" keeps its X.
	quantityRe = regexp.MustCompile(`^(\d+)\s*(?:[xX×]\s+|\s)\s*(.+)$`)

	numericOnlyRe = regexp.MustCompile(`^[\d\s$£€.,:;#*/\-]+$`)
)

// SplitQuantity separates a leading quantity marker from the item name.
// Quantities outside [MinQuantity, MaxQuantity] leave rest untouched with
// quantity 1.
func SplitQuantity(rest string) (quantity int, name string) {
	m := quantityRe.FindStringSubmatch(rest)
	if m == nil {
		return 1, rest
	}
	q, err := strconv.Atoi(m[1])
	name = strings.TrimSpace(m[2])
	if err != nil || q < MinQuantity || q > MaxQuantity || name == "" {
		return 1, rest
	}
	return q, name
}

// NormalizeSpace collapses runs of whitespace into single spaces.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ValidName reports whether s is a plausible item name.
func ValidName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 2 || n > maxNameLen {
		return false
	}
	if numericOnlyRe.MatchString(s) {
		return false
	}
	var letters, other int
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsSpace(r):
		default:
			other++
		}
	}
	if letters < 2 {
		return false
	}
	return other*2 <= n
}
