package cart

import (
	"fmt"
	"slices"

	"github.com/angelmondragon/nebulashop-backend/internal/catalog"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
)

// ValidateSelection checks an incoming entry against the product it names.
// Pricing tolerates catalog drift; mutations do not, so stale shipping or
// variant choices are rejected here instead of silently rewritten.
func ValidateSelection(product catalog.Product, entry Entry) error {
	if entry.ShippingOptionID != "" {
		offered := slices.ContainsFunc(product.ShippingOptions, func(option catalog.ShippingOption) bool {
			return option.ID == entry.ShippingOptionID
		})
		if !offered {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("shipping option %q is not offered for %s", entry.ShippingOptionID, product.ID)).
				WithDetails(map[string]any{"product_id": product.ID, "shipping_option_id": entry.ShippingOptionID})
		}
	}
	for name, choice := range entry.Variant {
		idx := slices.IndexFunc(product.Variants, func(group catalog.VariantGroup) bool { return group.Name == name })
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s has no %q variant", product.ID, name)).
				WithDetails(map[string]any{"product_id": product.ID, "variant": name})
		}
		if !slices.Contains(product.Variants[idx].Options, choice) {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a valid %s for %s", choice, name, product.ID)).
				WithDetails(map[string]any{"product_id": product.ID, "variant": name, "option": choice})
		}
	}
	return nil
}
