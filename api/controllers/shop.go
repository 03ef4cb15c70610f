package controllers

import (
	"net/http"

	"github.com/angelmondragon/nebulashop-backend/api/middleware"
	"github.com/angelmondragon/nebulashop-backend/api/responses"
	"github.com/angelmondragon/nebulashop-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/nebulashop-backend/pkg/errors"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

// maxPathIDLength caps product and session ids taken from the URL.
const maxPathIDLength = 64

// ShopResolver returns the shop of a shopper, opening it on first use.
type ShopResolver interface {
	Shop(shopperID string) (*checkout.Shop, error)
}

// shopFromRequest resolves the caller's shop and writes the error response
// when it cannot.
func shopFromRequest(w http.ResponseWriter, r *http.Request, shops ShopResolver, logg *logger.Logger) (*checkout.Shop, bool) {
	if shops == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shop registry unavailable"))
		return nil, false
	}
	shopperID := middleware.ShopperIDFromContext(r.Context())
	shop, err := shops.Shop(shopperID)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return nil, false
	}
	return shop, true
}
