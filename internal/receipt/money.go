package receipt

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// A money token: "1,234.56", "12.00" or "12,00". The integer part is
	// greedy so a match always starts at the first digit of a digit run.
	moneyRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+\.\d{2}|\d+[.,]\d{2}`)

	// Any number, used for total/tax lines that print no cents.
	numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

	minPrice = decimal.RequireFromString("0.01")
	maxPrice = decimal.RequireFromString("9999.99")
)

// moneyMatch is one money token located in a line.
type moneyMatch struct {
	start, end int // byte offsets of the digits
	value      decimal.Decimal
	intDigits  int
}

// findMoney returns every well-formed money token in s, left to right.
// Tokens immediately followed by another digit ("1.234") are skipped.
func findMoney(s string) []moneyMatch {
	var out []moneyMatch
	for _, loc := range moneyRe.FindAllStringIndex(s, -1) {
		if loc[1] < len(s) && isDigit(s[loc[1]]) {
			continue
		}
		tok := s[loc[0]:loc[1]]
		v, ok := parseMoney(tok)
		if !ok {
			continue
		}
		out = append(out, moneyMatch{
			start:     loc[0],
			end:       loc[1],
			value:     v,
			intDigits: countIntDigits(tok),
		})
	}
	return out
}

// parseMoney converts a token like "1,234.56", "$3.50" or "3,50" to a decimal.
func parseMoney(tok string) (decimal.Decimal, bool) {
	tok = stripCurrency(tok)
	tok = strings.TrimSpace(tok)
	if strings.Contains(tok, ",") && strings.Contains(tok, ".") {
		tok = strings.ReplaceAll(tok, ",", "")
	} else {
		tok = strings.Replace(tok, ",", ".", 1)
	}
	if tok == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(tok)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// firstAmount returns the first monetary-looking number in a total or tax
// line. A two-decimal token is preferred; otherwise the first bare number.
func firstAmount(line string) (float64, bool) {
	s := stripCurrency(line)
	if ms := findMoney(s); len(ms) > 0 {
		return ms[0].value.InexactFloat64(), true
	}
	tok := numberRe.FindString(s)
	if tok == "" {
		return 0, false
	}
	d, ok := parseMoney(tok)
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// priceInRange reports whether d is a price Parse may emit.
func priceInRange(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(minPrice) && d.LessThanOrEqual(maxPrice)
}

func stripCurrency(s string) string {
	return strings.NewReplacer("$", "", "£", "", "€", "", "\u00a0", " ").Replace(s)
}

func countIntDigits(tok string) int {
	n := 0
	for i := 0; i < len(tok); i++ {
		switch {
		case isDigit(tok[i]):
			n++
		case tok[i] == ',' && len(tok)-i == 3, tok[i] == '.':
			return n
		}
	}
	return n
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
