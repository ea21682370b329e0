package receipt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   Extraction
		wantOK bool
	}{
		{
			name:   "trailing bare amount",
			line:   "Coffee 3.50",
			want:   Extraction{Price: 3.50, Rest: "Coffee"},
			wantOK: true,
		},
		{
			name:   "trailing dollar amount",
			line:   "Coffee $3.50",
			want:   Extraction{Price: 3.50, Rest: "Coffee"},
			wantOK: true,
		},
		{
			name:   "comma decimal separator",
			line:   "Latte 4,25",
			want:   Extraction{Price: 4.25, Rest: "Latte"},
			wantOK: true,
		},
		{
			name:   "thousands separator",
			line:   "Catering Tray 1,250.00",
			want:   Extraction{Price: 1250, Rest: "Catering Tray"},
			wantOK: true,
		},
		{
			name:   "quantity kept in rest",
			line:   "2 Mocktail 12.00",
			want:   Extraction{Price: 12, Rest: "2 Mocktail"},
			wantOK: true,
		},
		{
			name:   "missing space falls back and is uncertain",
			line:   "Bagel$2.25",
			want:   Extraction{Price: 2.25, Rest: "Bagel", Uncertain: true},
			wantOK: true,
		},
		{
			name:   "rightmost token wins",
			line:   "Muffins 2 @ 1.50 3.00 T",
			want:   Extraction{Price: 3.00, Rest: "Muffins 2 @ 1.50", Uncertain: true},
			wantOK: true,
		},
		{
			name:   "price above ceiling",
			line:   "Lobster 12345.00",
			wantOK: false,
		},
		{
			name:   "zero price",
			line:   "Freebie 0.00",
			wantOK: false,
		},
		{
			name:   "no price",
			line:   "Coffee",
			wantOK: false,
		},
		{
			name:   "leading minus is a discount",
			line:   "Coffee -3.50",
			wantOK: false,
		},
		{
			name:   "minus before currency symbol",
			line:   "Member Discount -$1.00",
			wantOK: false,
		},
		{
			name:   "trailing minus is a refund",
			line:   "Returned Mug 8.99-",
			wantOK: false,
		},
		{
			name:   "negative token skipped for earlier price",
			line:   "Soup$4.50 Coupon-1.00",
			want:   Extraction{Price: 4.50, Rest: "Soup", Uncertain: true},
			wantOK: true,
		},
		{
			name:   "three decimals is not money",
			line:   "Widget 1.234",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPrice(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.InDelta(t, tt.want.Price, got.Price, 1e-9)
			assert.Equal(t, tt.want.Rest, got.Rest)
			assert.Equal(t, tt.want.Uncertain, got.Uncertain)
		})
	}
}

func TestSplitQuantity(t *testing.T) {
	tests := []struct {
		rest     string
		wantQty  int
		wantName string
	}{
		{"2 Mocktail", 2, "Mocktail"},
		{"2x Mocktail", 2, "Mocktail"},
		{"3 × Wings", 3, "Wings"},
		{"99 Balloons", 99, "Balloons"},
		{"100 Wings", 1, "100 Wings"},
		{"0 Soda", 1, "0 Soda"},
		{"12oz Steak", 1, "12oz Steak"},
		{"3 Xtra Cheese", 3, "Xtra Cheese"},
		{"Mocktail", 1, "Mocktail"},
		{"2 @ Burger", 2, "@ Burger"},
	}

	for _, tt := range tests {
		t.Run(tt.rest, func(t *testing.T) {
			qty, name := SplitQuantity(tt.rest)
			assert.Equal(t, tt.wantQty, qty)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Coffee", true},
		{"Fish & Chips", true},
		{"Café au lait", true},
		{"A", false},
		{"12", false},
		{"$ 3", false},
		{"A1", false},
		{"#@!ab", false},
		{strings.Repeat("a", 121), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidName(tt.name))
		})
	}
}

func TestNormalizeSpace(t *testing.T) {
	assert.Equal(t, "Iced Tea", NormalizeSpace("  Iced \t  Tea "))
}
