package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/nebulashop-backend/pkg/types"
)

// CORS returns middleware that allows the storefront origins to call the API.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", ShopperIDHeader, types.RequestIDHeader, "X-Requested-With"},
		ExposedHeaders:   []string{types.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
