package controllers

import (
	"net/http"

	"github.com/angelmondragon/nebulashop-backend/api/responses"
	"github.com/angelmondragon/nebulashop-backend/internal/catalog"
	"github.com/angelmondragon/nebulashop-backend/pkg/enums"
)

// CatalogLister exposes the browsable catalog.
type CatalogLister interface {
	Products() []catalog.Product
	Rewards() []catalog.RewardTier
}

func CatalogProducts(cat CatalogLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"products": cat.Products()})
	}
}

func CatalogRewards(cat CatalogLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"rewards": cat.Rewards()})
	}
}

func CatalogPaymentMethods() http.HandlerFunc {
	type methodView struct {
		ID           enums.PaymentMethod `json:"id"`
		ManualReview bool                `json:"manual_review"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		methods := enums.PaymentMethods()
		out := make([]methodView, 0, len(methods))
		for _, method := range methods {
			out = append(out, methodView{ID: method, ManualReview: method.RequiresManualReview()})
		}
		responses.WriteSuccess(w, map[string]any{"payment_methods": out})
	}
}
