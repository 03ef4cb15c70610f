package helpers

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"

	"github.com/angelmondragon/nebulashop-backend/internal/cart"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
)

// IdempotencyKeyPrefix marks keys derived from cart contents.
const IdempotencyKeyPrefix = "chk_"

type keyItem struct {
	ProductID        string            `json:"productId"`
	Quantity         int               `json:"quantity"`
	ShippingOptionID *string           `json:"shippingOptionId"`
	Variant          map[string]string `json:"variant"`
}

type keyPayload struct {
	ShopperID string    `json:"shopperId"`
	Items     []keyItem `json:"items"`
	RewardID  *string   `json:"rewardId"`
	Method    string    `json:"method"`
}

// BuildIdempotencyKey derives a stable key from the shopper, the priced items,
// the selected reward and the payment method. Item order does not affect the
// result. Identical carts from different shoppers never share a key.
func BuildIdempotencyKey(shopperID string, items []cart.LineItem, rewardID string, method enums.PaymentMethod) string {
	payload := keyPayload{
		ShopperID: shopperID,
		Items:     make([]keyItem, 0, len(items)),
		RewardID:  optional(rewardID),
		Method:    string(method),
	}
	for _, item := range items {
		variant := make(map[string]string, len(item.Variant))
		for k, v := range item.Variant {
			variant[k] = v
		}
		payload.Items = append(payload.Items, keyItem{
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			ShippingOptionID: optional(item.ShippingOptionID),
			Variant:          variant,
		})
	}
	slices.SortStableFunc(payload.Items, func(a, b keyItem) int {
		if c := cmp.Compare(a.ProductID, b.ProductID); c != 0 {
			return c
		}
		return cmp.Compare(a.Quantity, b.Quantity)
	})

	// encoding/json writes map keys sorted, so the encoding is canonical.
	raw, err := json.Marshal(payload)
	if err != nil {
		// Only strings and ints are encoded; Marshal cannot fail here.
		panic(err)
	}
	sum := sha256.Sum256(raw)
	return IdempotencyKeyPrefix + hex.EncodeToString(sum[:])
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
