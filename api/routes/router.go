package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mosketh/storefront/api/controllers"
	"github.com/mosketh/storefront/api/middleware"
	"github.com/mosketh/storefront/pkg/config"
	"github.com/mosketh/storefront/pkg/logger"
	"github.com/mosketh/storefront/pkg/storage"
)

// NewRouter wires the storefront HTTP surface. limiter may be nil, which
// disables login throttling. metricsHandler may be nil, which hides /metrics.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sessions middleware.SessionLoader,
	catalog controllers.Catalog,
	limiter middleware.CounterStore,
	readiness map[string]storage.Pinger,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.RateLimitPolicy{
		Name:       "login",
		Window:     cfg.Login.Window,
		IPLimit:    cfg.Login.IPLimit,
		EmailLimit: cfg.Login.EmailLimit,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(sessions, cfg.Session, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(logg))
			r.Delete("/", controllers.CartClear(logg))
			r.Post("/items", controllers.CartAddItem(catalog, logg))
			r.Patch("/items/{productId}", controllers.CartUpdateItem(logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistGet(logg))
			r.Delete("/", controllers.WishlistClear(logg))
			r.Post("/items", controllers.WishlistAdd(catalog, logg))
			r.Delete("/items/{productId}", controllers.WishlistRemove(logg))
			r.Post("/items/{productId}/move-to-cart", controllers.WishlistMoveToCart(logg))
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.AuthLogin(logg))
			r.Post("/logout", controllers.AuthLogout(logg))
			r.Get("/me", controllers.AuthMe(logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", controllers.CheckoutStatus(logg))
			r.Post("/", controllers.CheckoutSubmit(logg))
		})
	})

	return r
}
