package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartMergesByKey(t *testing.T) {
	cart := NewCart()
	cart.Add(Book{Title: "쎈 수학1", ISBN: "111", Discount: "15300"}, 3)
	cart.Add(Book{Title: "마플 시너지 수학2", ISBN: "222", Discount: "19800"}, 1)
	cart.Add(Book{Title: "쎈 수학1", ISBN: "111", Discount: "15300"}, 2)

	items := cart.Items()
	require.Len(t, items, 2)
	// Insertion order is preserved, quantities summed on collision
	assert.Equal(t, "111", items[0].ISBN)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "222", items[1].ISBN)
	assert.Equal(t, 1, items[1].Quantity)

	assert.Equal(t, 6, cart.TotalQuantity())
	assert.Equal(t, 5*15300+19800, cart.TotalPrice())
}

func TestCartTitleKeyFallback(t *testing.T) {
	cart := NewCart()
	cart.Add(Book{Title: "자체교재"}, 1)
	cart.Add(Book{Title: "자체교재"}, 2)

	require.Equal(t, 1, cart.Len())
	assert.Equal(t, 3, cart.Items()[0].Quantity)
}

func TestCartTotalPriceSkipsUnpriced(t *testing.T) {
	cart := NewCart()
	cart.Add(Book{Title: "가격미정", ISBN: "111", Discount: ""}, 2)
	cart.Add(Book{Title: "쎈 수학1", ISBN: "222", Discount: "15300"}, 1)

	assert.Equal(t, 15300, cart.TotalPrice())
}
