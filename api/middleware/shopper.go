package middleware

import (
	"net/http"

	"github.com/angelmondragon/nebulashop-backend/api/responses"
	"github.com/angelmondragon/nebulashop-backend/api/validators"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

const (
	ShopperIDHeader    = "X-Shopper-Id"
	maxShopperIDLength = 64
)

// Shopper requires the X-Shopper-Id header and scopes the request to it.
func Shopper(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			shopperID, err := validators.SanitizeIdentifier(ShopperIDHeader+" header", r.Header.Get(ShopperIDHeader), maxShopperIDLength)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithShopperID(ctx, shopperID)
			if logg != nil {
				ctx = logg.WithShopperID(ctx, shopperID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
