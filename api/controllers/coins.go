package controllers

import (
	"net/http"

	"github.com/angelmondragon/nebulashop-backend/api/responses"
	"github.com/angelmondragon/nebulashop-backend/internal/ledger"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

type coinsResponse struct {
	Balance int64          `json:"balance"`
	Ledger  []ledger.Entry `json:"ledger"`
}

// CoinsFetch returns the coin balance and the most recent ledger entries.
func CoinsFetch(shops ShopResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shop, ok := shopFromRequest(w, r, shops, logg)
		if !ok {
			return
		}
		state := shop.State()
		responses.WriteSuccess(w, coinsResponse{Balance: state.CoinsBalance, Ledger: state.CoinLedger})
	}
}
