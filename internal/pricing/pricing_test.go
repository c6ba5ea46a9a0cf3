package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFinalPrice(t *testing.T) {
	cases := []struct {
		name     string
		price    int64
		discount float64
		want     int64
	}{
		{"no discount is identity", 1247500, 0, 1247500},
		{"ten percent", 1000, 10, 900},
		{"seeded iPhone 12", 1747500, 10, 1572750},
		{"fractional result rounds half up", 5, 50, 3},
		{"fractional result rounds down", 999, 15, 849},
		{"fractional percent", 1000, 12.5, 875},
		{"full discount", 2497500, 100, 0},
		{"zero price", 0, 35, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FinalPrice(tc.price, tc.discount))
		})
	}
}

func TestFinalPriceNeverExceedsPrice(t *testing.T) {
	for price := int64(0); price <= 2500; price += 7 {
		for d := 0.0; d <= 100; d += 2.5 {
			got := FinalPrice(price, d)
			assert.LessOrEqualf(t, got, price, "price=%d discount=%v", price, d)
			assert.GreaterOrEqualf(t, got, int64(0), "price=%d discount=%v", price, d)
		}
		assert.Equal(t, price, FinalPrice(price, 0))
	}
}

func TestBreakdownOf(t *testing.T) {
	b := BreakdownOf(2747500, 12)
	assert.Equal(t, int64(2747500), b.Original)
	assert.Equal(t, int64(2417800), b.Final)
	assert.Equal(t, int64(329700), b.Discount)
	assert.Equal(t, b.Discount, DiscountAmount(2747500, 12))
	assert.Equal(t, int64(2700), LineTotal(900, 3))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "TSh 0", Format(0))
	assert.Equal(t, "TSh 900", Format(900))
	assert.Equal(t, "TSh 1,000", Format(1000))
	assert.Equal(t, "TSh 1,572,750", Format(1572750))
	assert.Equal(t, "-TSh 174,750", Format(-174750))
}
