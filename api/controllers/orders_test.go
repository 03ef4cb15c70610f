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

func placeOrders(t *testing.T, env *testEnv, shopperID string, n int) {
	t.Helper()
	shop, err := env.registry.Shop(shopperID)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, shop.AddItem(cartEntry("pulsar-cap", i+1)))
		require.NoError(t, shop.SetPaymentMethod(enums.PaymentMethodCashMeetup))
		state := shop.Checkout(context.Background())
		require.Equal(t, enums.CheckoutStatusSucceeded, state.CheckoutStatus, state.CheckoutError)
	}
}

func TestOrdersListNewestFirst(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	placeOrders(t, env, "shopper-1", 3)

	resp := call(t, OrdersList(env.registry, logger.Nop()), http.MethodGet, "/orders", "/orders?limit=2", "shopper-1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := decodeData[orderListResponse](t, resp)
	require.Len(t, body.Orders, 2)
	assert.Equal(t, 3, body.Orders[0].Items[0].Quantity)
	assert.Equal(t, 2, body.Orders[1].Items[0].Quantity)
	assert.True(t, body.TotalSpent.Equal(decimal.NewFromInt(210)), body.TotalSpent.String())
}

func TestOrdersListRejectsBadLimit(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	resp := call(t, OrdersList(env.registry, logger.Nop()), http.MethodGet, "/orders", "/orders?limit=50", "shopper-1", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOrderDetail(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	placeOrders(t, env, "shopper-1", 1)
	shop, _ := env.registry.Shop("shopper-1")
	orderID := shop.State().Orders[0].ID

	resp := call(t, OrderDetail(env.registry, logger.Nop()), http.MethodGet, "/orders/{orderID}", "/orders/"+orderID, "shopper-1", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = call(t, OrderDetail(env.registry, logger.Nop()), http.MethodGet, "/orders/{orderID}", "/orders/"+orderID, "shopper-2", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeNotFound), decodeError(t, resp).Code)
}

func TestCoinsFetch(t *testing.T) {
	env := newTestEnv(t, time.Hour)
	shop, err := env.registry.Shop("shopper-1")
	require.NoError(t, err)
	require.NoError(t, shop.AddItem(cartEntry("nova-hoodie", 1)))
	require.NoError(t, shop.SelectReward("free-shipping"))
	require.NoError(t, shop.SetPaymentMethod(enums.PaymentMethodCashMeetup))
	require.Equal(t, enums.CheckoutStatusSucceeded, shop.Checkout(context.Background()).CheckoutStatus)

	resp := call(t, CoinsFetch(env.registry, logger.Nop()), http.MethodGet, "/coins", "/coins", "shopper-1", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	body := decodeData[coinsResponse](t, resp)
	assert.Equal(t, int64(950), body.Balance)
	require.Len(t, body.Ledger, 1)
	assert.Equal(t, enums.LedgerEntryTypeBurn, body.Ledger[0].Type)
	assert.Equal(t, int64(250), body.Ledger[0].Amount)
}
