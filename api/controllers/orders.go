package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/nebulashop-backend/api/responses"
	"github.com/angelmondragon/nebulashop-backend/api/validators"
	"github.com/angelmondragon/nebulashop-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

type orderListResponse struct {
	Orders     []orders.Order  `json:"orders"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

// OrdersList returns the shopper's most recent orders, newest first.
func OrdersList(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", orders.MaxOrders, 1, orders.MaxOrders)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list := shop.State().Orders
		if len(list) > limit {
			list = list[:limit]
		}
		responses.WriteSuccess(w, orderListResponse{Orders: list, TotalSpent: shop.TotalSpent()})
	}
}

func OrderDetail(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
		order, found := shop.Order(orderID)
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", orderID)))
			return
		}
		responses.WriteSuccess(w, order)
	}
}
