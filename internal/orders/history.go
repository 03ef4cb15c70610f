package orders

import (
	"sync"

	"github.com/shopspring/decimal"
)

// MaxOrders bounds how many committed orders a shopper keeps.
const MaxOrders = 20

// History is a shopper's recent orders, most recent first.
type History struct {
	mu     sync.RWMutex
	orders []Order
}

func NewHistory() *History {
	return &History{}
}

// Prepend records an order at the head, dropping the oldest past MaxOrders.
func (h *History) Prepend(order Order) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := make([]Order, 0, min(len(h.orders)+1, MaxOrders))
	next = append(next, order)
	for _, existing := range h.orders {
		if len(next) == MaxOrders {
			break
		}
		next = append(next, existing)
	}
	h.orders = next
}

// List returns a copy of the history.
func (h *History) List() []Order {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Order(nil), h.orders...)
}

// Get looks an order up by id.
func (h *History) Get(id string) (Order, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, order := range h.orders {
		if order.ID == id {
			return order, true
		}
	}
	return Order{}, false
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.orders)
}

// TotalSpent sums the totals of the retained orders.
func (h *History) TotalSpent() decimal.Decimal {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sum := decimal.Zero
	for _, order := range h.orders {
		sum = sum.Add(order.Total)
	}
	return sum
}

// Snapshot returns the current orders for a later Restore.
func (h *History) Snapshot() []Order {
	return h.List()
}

func (h *History) Restore(orders []Order) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.orders = append([]Order(nil), orders...)
}
