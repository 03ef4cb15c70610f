package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

func TestCartAddAndFetch(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	add := CartAddItem(env.registry, logger.Nop())

	resp := call(t, add, http.MethodPost, "/cart/items", "/cart/items", "shopper-1", map[string]any{
		"product_id":         "nova-hoodie",
		"quantity":           1,
		"variant":            map[string]string{"size": "M"},
		"shipping_option_id": "express",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = call(t, add, http.MethodPost, "/cart/items", "/cart/items", "shopper-1", map[string]any{
		"product_id": "nova-hoodie",
		"quantity":   1,
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = call(t, CartFetch(env.registry, nil), http.MethodGet, "/cart", "/cart", "shopper-1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := decodeData[cartResponse](t, resp)
	require.Len(t, body.Cart.Items, 1)
	assert.Equal(t, 2, body.Cart.Items[0].Quantity)
	assert.Equal(t, "express", body.Cart.Items[0].ShippingOptionID)
	assert.True(t, body.Cart.Subtotal.Equal(decimal.RequireFromString("212.50")), body.Cart.Subtotal.String())
	assert.Equal(t, int64(1200), body.CoinsBalance)
}

func TestCartPutItemZeroRemoves(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	put := CartPutItem(env.registry, logger.Nop())

	resp := call(t, put, http.MethodPut, "/cart/items", "/cart/items", "shopper-1", map[string]any{"product_id": "pulsar-cap", "quantity": 3})
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, 3, decodeData[cartResponse](t, resp).Cart.Items[0].Quantity)

	resp = call(t, put, http.MethodPut, "/cart/items", "/cart/items", "shopper-1", map[string]any{"product_id": "pulsar-cap", "quantity": 0})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeData[cartResponse](t, resp).Cart.Items)
}

func TestCartAddItemErrors(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	add := CartAddItem(env.registry, logger.Nop())

	cases := []struct {
		name   string
		body   map[string]any
		status int
		code   pkgerrors.Code
	}{
		{"unknown product", map[string]any{"product_id": "warp-drive", "quantity": 1}, http.StatusNotFound, pkgerrors.CodeNotFound},
		{"zero quantity", map[string]any{"product_id": "pulsar-cap", "quantity": 0}, http.StatusBadRequest, pkgerrors.CodeValidation},
		{"bad variant", map[string]any{"product_id": "nova-hoodie", "quantity": 1, "variant": map[string]string{"size": "XXS"}}, http.StatusBadRequest, pkgerrors.CodeValidation},
		{"missing product", map[string]any{"quantity": 1}, http.StatusBadRequest, pkgerrors.CodeValidation},
		{"unknown field", map[string]any{"product_id": "pulsar-cap", "quantity": 1, "coupon": "x"}, http.StatusBadRequest, pkgerrors.CodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, add, http.MethodPost, "/cart/items", "/cart/items", "shopper-1", tc.body)
			require.Equal(t, tc.status, resp.Code, resp.Body.String())
			assert.Equal(t, string(tc.code), decodeError(t, resp).Code)
		})
	}
}

func TestCartRemoveItemIsIdempotent(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	shop, err := env.registry.Shop("shopper-1")
	require.NoError(t, err)
	require.NoError(t, shop.AddItem(cartEntry("pulsar-cap", 1)))

	remove := CartRemoveItem(env.registry, logger.Nop())
	for i := 0; i < 2; i++ {
		resp := call(t, remove, http.MethodDelete, "/cart/items/{productID}", "/cart/items/pulsar-cap", "shopper-1", nil)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, decodeData[cartResponse](t, resp).Cart.Items)
	}
}

func TestCartSelectRewardShortfall(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	shop, err := env.registry.Shop("shopper-1")
	require.NoError(t, err)
	require.NoError(t, shop.AddItem(cartEntry("nova-hoodie", 4)))

	resp := call(t, CartSelectReward(env.registry, logger.Nop()), http.MethodPut, "/cart/reward", "/cart/reward", "shopper-1", map[string]any{"reward_id": "vip-50"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, "vip-50", decodeData[cartResponse](t, resp).SelectedRewardID)

	removed, err := shop.RemoveItem("nova-hoodie")
	require.NoError(t, err)
	require.True(t, removed)
	require.NoError(t, shop.AddItem(cartEntry("pulsar-cap", 1)))

	resp = call(t, CartSelectReward(env.registry, logger.Nop()), http.MethodPut, "/cart/reward", "/cart/reward", "shopper-1", map[string]any{"reward_id": "drop-20"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	apiErr := decodeError(t, resp)
	assert.Equal(t, string(pkgerrors.CodeStateConflict), apiErr.Code)
	details, ok := apiErr.Details.(map[string]any)
	require.True(t, ok, "expected shortfall details")
	assert.Equal(t, "drop-20", details["reward_id"])
	assert.Equal(t, "115", details["spend_short"])
}

func TestCartClearReward(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	shop, err := env.registry.Shop("shopper-1")
	require.NoError(t, err)
	require.NoError(t, shop.AddItem(cartEntry("nova-hoodie", 1)))
	require.NoError(t, shop.SelectReward("free-shipping"))

	resp := call(t, CartClearReward(env.registry, logger.Nop()), http.MethodDelete, "/cart/reward", "/cart/reward", "shopper-1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeData[cartResponse](t, resp).SelectedRewardID)
}

func TestCartSetPaymentMethod(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	handler := CartSetPaymentMethod(env.registry, logger.Nop())

	resp := call(t, handler, http.MethodPut, "/cart/payment-method", "/cart/payment-method", "shopper-1", map[string]any{"method": "solana_usdc"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, enums.PaymentMethodSolanaUSDC, decodeData[cartResponse](t, resp).PaymentMethod)

	resp = call(t, handler, http.MethodPut, "/cart/payment-method", "/cart/payment-method", "shopper-1", map[string]any{"method": "paypal"})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = call(t, handler, http.MethodPut, "/cart/payment-method", "/cart/payment-method", "shopper-1", map[string]any{"method": ""})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeData[cartResponse](t, resp).PaymentMethod)
}

func TestCartRequiresShopper(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	resp := call(t, CartFetch(env.registry, logger.Nop()), http.MethodGet, "/cart", "/cart", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), decodeError(t, resp).Code)
}

func TestCartShoppersAreIsolated(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	resp := call(t, CartAddItem(env.registry, logger.Nop()), http.MethodPost, "/cart/items", "/cart/items", "shopper-1", map[string]any{"product_id": "pulsar-cap", "quantity": 1})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = call(t, CartFetch(env.registry, logger.Nop()), http.MethodGet, "/cart", "/cart", "shopper-2", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeData[cartResponse](t, resp).Cart.Items)
}

func TestCartLockedWhileCheckoutProcessing(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	shop, err := env.registry.Shop("shopper-1")
	require.NoError(t, err)
	require.NoError(t, shop.AddItem(cartEntry("nova-hoodie", 1)))
	require.NoError(t, shop.SetPaymentMethod(enums.PaymentMethodNebulaPay))
	require.Equal(t, enums.CheckoutStatusProcessing, shop.StartCheckout(context.Background()).CheckoutStatus)

	resp := call(t, CartAddItem(env.registry, logger.Nop()), http.MethodPost, "/cart/items", "/cart/items", "shopper-1", map[string]any{"product_id": "pulsar-cap", "quantity": 1})
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())
	assert.Equal(t, string(pkgerrors.CodeStateConflict), decodeError(t, resp).Code)

	resp = call(t, CartRemoveItem(env.registry, logger.Nop()), http.MethodDelete, "/cart/items/{productID}", "/cart/items/nova-hoodie", "shopper-1", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = call(t, CartClearReward(env.registry, logger.Nop()), http.MethodDelete, "/cart/reward", "/cart/reward", "shopper-1", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = call(t, CartFetch(env.registry, logger.Nop()), http.MethodGet, "/cart", "/cart", "shopper-1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	items := decodeData[cartResponse](t, resp).Cart.Items
	require.Len(t, items, 1)
	assert.Equal(t, "nova-hoodie", items[0].ProductID)
}
