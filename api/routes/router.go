package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/nebulashop-backend/api/controllers"
	"github.com/angelmondragon/nebulashop-backend/api/middleware"
	"github.com/angelmondragon/nebulashop-backend/pkg/config"
	"github.com/angelmondragon/nebulashop-backend/pkg/logger"
)

// NewRouter wires every HTTP route. redisPinger and metricsHandler are
// optional; a nil pinger skips the Redis readiness check and a nil handler
// leaves /metrics unmounted.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisPinger controllers.Pinger,
	catalog controllers.CatalogLister,
	shops controllers.ShopResolver,
	sessions controllers.SessionService,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, redisPinger, logg))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.CatalogProducts(catalog))
			r.Get("/rewards", controllers.CatalogRewards(catalog))
			r.Get("/payment-methods", controllers.CatalogPaymentMethods())
		})

		r.Route("/payment-sessions", func(r chi.Router) {
			r.Post("/", controllers.PaymentSessionCreate(sessions, logg))
			r.Get("/{sessionID}", controllers.PaymentSessionFetch(sessions, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Shopper(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(shops, logg))
				r.Post("/items", controllers.CartAddItem(shops, logg))
				r.Put("/items", controllers.CartPutItem(shops, logg))
				r.Delete("/items/{productID}", controllers.CartRemoveItem(shops, logg))
				r.Put("/reward", controllers.CartSelectReward(shops, logg))
				r.Delete("/reward", controllers.CartClearReward(shops, logg))
				r.Put("/payment-method", controllers.CartSetPaymentMethod(shops, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", controllers.CheckoutStart(shops, logg))
				r.Get("/", controllers.CheckoutStatus(shops, logg))
				r.Post("/reset", controllers.CheckoutReset(shops, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(shops, logg))
				r.Get("/{orderID}", controllers.OrderDetail(shops, logg))
			})

			r.Get("/coins", controllers.CoinsFetch(shops, logg))
		})
	})

	return r
}
