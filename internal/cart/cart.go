package cart

import (
	"maps"
	"slices"
)

// Entry is one product line the shopper intends to buy.
type Entry struct {
	ProductID        string            `json:"product_id"`
	Quantity         int               `json:"quantity"`
	Variant          map[string]string `json:"variant,omitempty"`
	ShippingOptionID string            `json:"shipping_option_id,omitempty"`
}

func (e Entry) clone() Entry {
	e.Variant = maps.Clone(e.Variant)
	return e
}

// Cart holds a shopper's entries keyed by product id, in insertion order.
// It is not safe for concurrent use; the owning shop serializes access.
type Cart struct {
	order   []string
	entries map[string]Entry
}

func New() *Cart {
	return &Cart{entries: map[string]Entry{}}
}

// Set stores the entry, replacing any previous entry for the product.
// A quantity of zero or less removes the entry.
func (c *Cart) Set(entry Entry) {
	if entry.Quantity <= 0 {
		c.Remove(entry.ProductID)
		return
	}
	if _, exists := c.entries[entry.ProductID]; !exists {
		c.order = append(c.order, entry.ProductID)
	}
	c.entries[entry.ProductID] = entry.clone()
}

// Add increments the quantity of an existing entry or inserts a new one.
// Variant and shipping selections on the incoming entry win when provided.
func (c *Cart) Add(entry Entry) {
	existing, ok := c.entries[entry.ProductID]
	if !ok {
		c.Set(entry)
		return
	}
	existing.Quantity += entry.Quantity
	if len(entry.Variant) > 0 {
		existing.Variant = entry.Variant
	}
	if entry.ShippingOptionID != "" {
		existing.ShippingOptionID = entry.ShippingOptionID
	}
	c.Set(existing)
}

// UpdateQuantity sets the quantity for a product already in the cart and
// reports whether the product was present.
func (c *Cart) UpdateQuantity(productID string, quantity int) bool {
	existing, ok := c.entries[productID]
	if !ok {
		return false
	}
	existing.Quantity = quantity
	c.Set(existing)
	return true
}

// Remove deletes the product's entry and reports whether it existed.
func (c *Cart) Remove(productID string) bool {
	if _, ok := c.entries[productID]; !ok {
		return false
	}
	delete(c.entries, productID)
	c.order = slices.DeleteFunc(c.order, func(id string) bool { return id == productID })
	return true
}

func (c *Cart) Clear() {
	c.order = nil
	c.entries = map[string]Entry{}
}

func (c *Cart) Len() int {
	return len(c.order)
}

// Entries returns a copy of the entries in insertion order.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id].clone())
	}
	return out
}

// Snapshot captures the cart so it can be restored after a failed commit.
func (c *Cart) Snapshot() []Entry {
	return c.Entries()
}

// Restore replaces the cart contents with a previously captured snapshot.
func (c *Cart) Restore(entries []Entry) {
	c.Clear()
	for _, entry := range entries {
		c.Set(entry)
	}
}
