// Package pricing derives charged prices from a base price and a percentage
// discount. Every view that shows or charges a price goes through here so the
// rounding convention stays identical everywhere.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FinalPrice returns round(price * (1 - discount/100)) in whole currency units,
// rounding halves away from zero. Callers validate discount; out-of-range
// values are not rejected here.
func FinalPrice(price int64, discount float64) int64 {
	if discount == 0 {
		return price
	}
	keep := hundred.Sub(decimal.NewFromFloat(discount))
	return decimal.NewFromInt(price).Mul(keep).Div(hundred).Round(0).IntPart()
}

// DiscountAmount is the part of price removed by the discount.
func DiscountAmount(price int64, discount float64) int64 {
	return price - FinalPrice(price, discount)
}

// Breakdown is the detail-view rendering of a price.
type Breakdown struct {
	Original int64   `json:"original"`
	Percent  float64 `json:"percent"`
	Discount int64   `json:"discount"`
	Final    int64   `json:"final"`
}

func BreakdownOf(price int64, discount float64) Breakdown {
	final := FinalPrice(price, discount)
	return Breakdown{Original: price, Percent: discount, Discount: price - final, Final: final}
}

// LineTotal is unit * quantity, the only way line subtotals are computed.
func LineTotal(unit int64, qty int) int64 {
	return unit * int64(qty)
}

// Format renders an amount the way the storefront shows it: "TSh 1,247,500".
func Format(amount int64) string {
	s := decimal.NewFromInt(amount).Abs().String()
	var b strings.Builder
	if amount < 0 {
		b.WriteByte('-')
	}
	b.WriteString("TSh ")
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return b.String()
}
