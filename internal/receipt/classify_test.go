package receipt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line  string
		class LineClass
		rule  string
	}{
		{"TOTAL 5.75", ClassTotal, "total"},
		{"Total Due: $12.00", ClassTotal, "total"},
		{"Balance 40.00", ClassTotal, "total"},
		{"Total Tax Included", ClassTotal, "total"},
		{"Sales Tax 0.80", ClassTax, "tax"},
		{"VAT 20% 2.00", ClassTax, "tax"},
		{"Subtotal 10.00", ClassIgnored, "subtotal"},
		{"ab", ClassMetadata, "short"},
		{"12/25/2023 14:30", ClassMetadata, "date"},
		{"3:45 PM", ClassMetadata, "time"},
		{"Server: John", ClassMetadata, "header"},
		{"Table 12", ClassMetadata, "header"},
		{"Check #4521", ClassMetadata, "header"},
		{"4521", ClassMetadata, "check_number"},
		{"123 Main Street", ClassMetadata, "address"},
		{"Springfield, IL 62704", ClassMetadata, "zip"},
		{"VISA ************1234", ClassMetadata, "payment"},
		{"XXXXXXXX1234", ClassMetadata, "masked_card"},
		{"482913", ClassMetadata, "approval_code"},
		{"555-0100", ClassMetadata, "phone"},
		{strings.TrimSpace(strings.Repeat("Thank you for dining with us ", 5)), ClassMetadata, "promo"},
		{"Coffee 3.50", ClassCandidate, ""},
		{"Dr Pepper 2.50", ClassCandidate, ""},
		{"Bagel$2.25", ClassCandidate, ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := Classify(tt.line)
			assert.Equal(t, tt.class, got.Class)
			assert.Equal(t, tt.rule, got.Rule)
		})
	}
}

func TestClassify_LongLineWithPriceIsCandidate(t *testing.T) {
	line := strings.Repeat("Extra long combo platter ", 5) + "19.99"
	assert.Equal(t, ClassCandidate, Classify(line).Class)
}

func TestRulesOrder(t *testing.T) {
	// Keyword rules must be evaluated before any metadata rule.
	var names []string
	for _, r := range rules {
		names = append(names, r.name)
	}
	assert.Equal(t, []string{"total", "tax", "subtotal"}, names[:3])
	for _, r := range rules[3:] {
		assert.Equal(t, ClassMetadata, r.class, r.name)
	}
}
