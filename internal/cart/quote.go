package cart

import (
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/nebulashop-backend/internal/catalog"
)

// LineItem is a priced cart entry. It is derived on every read and never stored
// on its own.
type LineItem struct {
	ProductID          string            `json:"product_id"`
	Name               string            `json:"name"`
	Quantity           int               `json:"quantity"`
	UnitPrice          decimal.Decimal   `json:"unit_price"`
	ShippingAdjustment decimal.Decimal   `json:"shipping_adjustment"`
	ShippingOptionID   string            `json:"shipping_option_id,omitempty"`
	ShippingLabel      string            `json:"shipping_label,omitempty"`
	Variant            map[string]string `json:"variant,omitempty"`
	Total              decimal.Decimal   `json:"total"`
}

// Quote is the priced view of a cart.
type Quote struct {
	Items    []LineItem      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Empty reports whether the quote has no priceable items.
func (q Quote) Empty() bool {
	return len(q.Items) == 0
}

// Price turns cart entries into line items against the catalog. Entries whose
// product has left the catalog are dropped without error.
func Price(entries []Entry, products catalog.Reader) Quote {
	quote := Quote{
		Items:    make([]LineItem, 0, len(entries)),
		Subtotal: decimal.Zero,
	}
	if products == nil {
		return quote
	}
	for _, entry := range entries {
		if entry.Quantity <= 0 {
			continue
		}
		product, ok := products.GetProduct(entry.ProductID)
		if !ok {
			continue
		}
		item := buildLineItem(entry, product)
		quote.Items = append(quote.Items, item)
		quote.Subtotal = quote.Subtotal.Add(item.Total)
	}
	return quote
}

func buildLineItem(entry Entry, product catalog.Product) LineItem {
	item := LineItem{
		ProductID:          product.ID,
		Name:               product.Name,
		Quantity:           entry.Quantity,
		UnitPrice:          product.Price,
		ShippingAdjustment: decimal.Zero,
		Variant:            entry.clone().Variant,
	}
	if option, ok := product.ShippingOption(entry.ShippingOptionID); ok {
		item.ShippingAdjustment = option.PriceAdjustment
		item.ShippingOptionID = option.ID
		item.ShippingLabel = option.Label
	}
	lineTotal := product.Price.Mul(decimal.NewFromInt(int64(entry.Quantity)))
	item.Total = lineTotal.Add(item.ShippingAdjustment)
	return item
}
