package orders

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
)

func TestHistory_PrependKeepsTwentyMostRecent(t *testing.T) {
	h := NewHistory()
	for i := 1; i <= 25; i++ {
		h.Prepend(Order{ID: fmt.Sprintf("order-%d", i), Total: decimal.NewFromInt(int64(i)), Status: enums.OrderStatusPaid})
	}

	list := h.List()
	require.Len(t, list, MaxOrders)
	assert.Equal(t, "order-25", list[0].ID)
	assert.Equal(t, "order-6", list[MaxOrders-1].ID)

	_, ok := h.Get("order-5")
	assert.False(t, ok, "oldest orders should be evicted")
	got, ok := h.Get("order-10")
	require.True(t, ok)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(10)))
}

func TestHistory_ListReturnsCopy(t *testing.T) {
	h := NewHistory()
	h.Prepend(Order{ID: "a"})

	list := h.List()
	list[0].ID = "mutated"

	got, ok := h.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)
}

func TestHistory_SnapshotRestore(t *testing.T) {
	h := NewHistory()
	h.Prepend(Order{ID: "kept", Total: decimal.NewFromInt(40)})
	snap := h.Snapshot()

	h.Prepend(Order{ID: "rolled-back", Total: decimal.NewFromInt(60)})
	require.Equal(t, 2, h.Len())
	assert.True(t, h.TotalSpent().Equal(decimal.NewFromInt(100)))

	h.Restore(snap)
	require.Equal(t, 1, h.Len())
	assert.Equal(t, "kept", h.List()[0].ID)
}
