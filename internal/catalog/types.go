package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ShippingOption is one way a product can be delivered.
type ShippingOption struct {
	ID              string          `json:"id" yaml:"id"`
	Label           string          `json:"label" yaml:"label"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment" yaml:"price_adjustment"`
	LeadTime        time.Duration   `json:"lead_time" yaml:"lead_time"`
}

// MarshalJSON renders the lead time as a Go duration string ("72h0m0s").
func (o ShippingOption) MarshalJSON() ([]byte, error) {
	type alias ShippingOption
	return json.Marshal(struct {
		alias
		LeadTime string `json:"lead_time"`
	}{alias: alias(o), LeadTime: o.LeadTime.String()})
}

func (o *ShippingOption) UnmarshalJSON(data []byte) error {
	type alias ShippingOption
	var raw struct {
		alias
		LeadTime string `json:"lead_time"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*o = ShippingOption(raw.alias)
	if raw.LeadTime != "" {
		d, err := time.ParseDuration(raw.LeadTime)
		if err != nil {
			return fmt.Errorf("lead_time: %w", err)
		}
		o.LeadTime = d
	}
	return nil
}

// VariantGroup is a named set of selectable options such as size or colour.
type VariantGroup struct {
	Name    string   `json:"name" yaml:"name"`
	Options []string `json:"options" yaml:"options"`
}

// Product is the read-only view of a sellable item.
type Product struct {
	ID              string           `json:"id" yaml:"id"`
	Name            string           `json:"name" yaml:"name"`
	Category        string           `json:"category" yaml:"category"`
	Price           decimal.Decimal  `json:"price" yaml:"price"`
	ShippingOptions []ShippingOption `json:"shipping_options" yaml:"shipping_options"`
	Variants        []VariantGroup   `json:"variants,omitempty" yaml:"variants"`
}

// ShippingOption resolves the option a line should ship with. An unknown or
// empty id falls back to the first option the product offers.
func (p Product) ShippingOption(id string) (ShippingOption, bool) {
	if len(p.ShippingOptions) == 0 {
		return ShippingOption{}, false
	}
	if id != "" {
		for _, option := range p.ShippingOptions {
			if option.ID == id {
				return option, true
			}
		}
	}
	return p.ShippingOptions[0], true
}

// RewardTier exchanges coins for a fixed discount once a minimum spend is met.
type RewardTier struct {
	ID            string          `json:"id" yaml:"id"`
	Label         string          `json:"label" yaml:"label"`
	MinSpend      decimal.Decimal `json:"min_spend" yaml:"min_spend"`
	Coins         int64           `json:"coins" yaml:"coins"`
	DiscountValue decimal.Decimal `json:"discount_value" yaml:"discount_value"`
}
