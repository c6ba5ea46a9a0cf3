package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusCompleted))
	assert.True(t, CanTransition(StatusCompleted, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusPending))
	assert.False(t, CanTransition(StatusPending, StatusPending))
	assert.False(t, CanTransition(StatusPending, OrderStatus("cancelled")))
}

func TestOrderItemsColumnKeepsOrder(t *testing.T) {
	items := OrderItems{
		{ID: 3, Name: "iPhone 14", Quantity: 1, Price: 2067100},
		{ID: 1, Name: "X", Quantity: 2, Price: 100},
	}
	v, err := items.Value()
	require.NoError(t, err)

	var back OrderItems
	require.NoError(t, back.Scan([]byte(v.(string))))
	assert.Equal(t, items, back)
	assert.Equal(t, int64(2067300), back.Total())

	var empty OrderItems
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)
	assert.Error(t, empty.Scan(42))
}

func TestCheckedTotalRefusesOverflow(t *testing.T) {
	sum, ok := OrderItems{{Price: 900, Quantity: 2}, {Price: 1247500, Quantity: 1}}.CheckedTotal()
	assert.True(t, ok)
	assert.Equal(t, int64(1249300), sum)

	_, ok = OrderItems{{Price: 5_000_000_000_000_000_000, Quantity: 2}}.CheckedTotal()
	assert.False(t, ok)
	_, ok = OrderItems{{Price: math.MaxInt64, Quantity: 1}, {Price: 1, Quantity: 1}}.CheckedTotal()
	assert.False(t, ok)
}

func TestProductJSONCarriesFinalPrice(t *testing.T) {
	b, err := json.Marshal(Product{ID: 7, Name: "iPhone", Price: 1000, Discount: 10})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.EqualValues(t, 900, m["final_price"])
	assert.EqualValues(t, 1000, m["price"])
	assert.EqualValues(t, 7, m["id"])
}
