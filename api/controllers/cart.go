package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/nebulashop-backend/api/responses"
	"github.com/angelmondragon/nebulashop-backend/api/validators"
	"github.com/angelmondragon/nebulashop-backend/internal/cart"
	"github.com/angelmondragon/nebulashop-backend/internal/checkout"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

type cartItemRequest struct {
	ProductID        string            `json:"product_id" validate:"required"`
	Quantity         int               `json:"quantity"`
	Variant          map[string]string `json:"variant"`
	ShippingOptionID string            `json:"shipping_option_id"`
}

func (p cartItemRequest) toEntry() cart.Entry {
	return cart.Entry{
		ProductID:        strings.TrimSpace(p.ProductID),
		Quantity:         p.Quantity,
		Variant:          p.Variant,
		ShippingOptionID: strings.TrimSpace(p.ShippingOptionID),
	}
}

type rewardRequest struct {
	RewardID string `json:"reward_id" validate:"required"`
}

type paymentMethodRequest struct {
	Method string `json:"method"`
}

// cartResponse is the cart as the storefront renders it.
type cartResponse struct {
	Cart             cart.Quote          `json:"cart"`
	SelectedRewardID string              `json:"selected_reward_id,omitempty"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method,omitempty"`
	CoinsBalance     int64               `json:"coins_balance"`
}

func newCartResponse(state checkout.State) cartResponse {
	return cartResponse{
		Cart:             state.Cart,
		SelectedRewardID: state.SelectedRewardID,
		PaymentMethod:    state.PaymentMethod,
		CoinsBalance:     state.CoinsBalance,
	}
}

// CartFetch returns the priced cart with the current reward and method selections.
func CartFetch(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, newCartResponse(shop.State()))
	}
}

// CartAddItem adds quantity to a product line.
func CartAddItem(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return cartItemHandler(shops, logg, (*checkout.Shop).AddItem)
}

// CartPutItem replaces a product line. A quantity of zero or less removes it.
func CartPutItem(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return cartItemHandler(shops, logg, (*checkout.Shop).UpdateItem)
}

func cartItemHandler(shops ShopResolver, logg *logger.Logger, apply func(*checkout.Shop, cart.Entry) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		var payload cartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := apply(shop, payload.toEntry()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(shop.State()))
	}
}

// CartRemoveItem drops a product line. Removing an absent product is not an error.
func CartRemoveItem(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		productID, err := validators.SanitizeIdentifier("product id", chi.URLParam(r, "productID"), maxPathIDLength)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := shop.RemoveItem(productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(shop.State()))
	}
}

// CartSelectReward applies a reward tier. Ineligible tiers return the
// shortfall in the error details.
func CartSelectReward(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		var payload rewardRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := shop.SelectReward(strings.TrimSpace(payload.RewardID)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(shop.State()))
	}
}

func CartClearReward(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		if err := shop.ClearReward(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(shop.State()))
	}
}

// CartSetPaymentMethod selects the payment method. An empty method clears it.
func CartSetPaymentMethod(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		var payload paymentMethodRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := shop.SetPaymentMethod(enums.PaymentMethod(strings.TrimSpace(payload.Method))); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(shop.State()))
	}
}
