package controllers

import (
	"net/http"

	"github.com/angelmondragon/nebulashop-backend/api/responses"
	"github.com/angelmondragon/nebulashop-backend/api/validators"
	"github.com/angelmondragon/nebulashop-backend/internal/checkout"
	"github.com/angelmondragon/nebulashop-backend/internal/orders"
	"github.com/angelmondragon/nebulashop-backend/internal/payments"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

type checkoutResponse struct {
	Status         enums.CheckoutStatus `json:"status"`
	Error          string               `json:"error,omitempty"`
	PaymentSession *payments.Session    `json:"payment_session"`
	LatestOrder    *orders.Order        `json:"latest_order,omitempty"`
	CoinsBalance   int64                `json:"coins_balance"`
}

func newCheckoutResponse(state checkout.State) checkoutResponse {
	resp := checkoutResponse{
		Status:         state.CheckoutStatus,
		Error:          state.CheckoutError,
		PaymentSession: state.PaymentSession,
		CoinsBalance:   state.CoinsBalance,
	}
	if state.CheckoutStatus == enums.CheckoutStatusSucceeded && len(state.Orders) > 0 {
		latest := state.Orders[0]
		resp.LatestOrder = &latest
	}
	return resp
}

// CheckoutStart opens a checkout. By default it answers 202 while payment
// confirmation continues in the background; ?wait=true blocks until the
// checkout settles.
func CheckoutStart(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		wait, err := validators.ParseQueryBool(r, "wait")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if wait {
			responses.WriteSuccess(w, newCheckoutResponse(shop.Checkout(r.Context())))
			return
		}

		state := shop.StartCheckout(r.Context())
		status := http.StatusOK
		if state.CheckoutStatus == enums.CheckoutStatusProcessing {
			status = http.StatusAccepted
		}
		responses.WriteSuccessStatus(w, status, newCheckoutResponse(state))
	}
}

func CheckoutStatus(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, newCheckoutResponse(shop.State()))
	}
}

// CheckoutReset returns a finished checkout to idle.
func CheckoutReset(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		if err := shop.ResetCheckoutStatus(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCheckoutResponse(shop.State()))
	}
}
