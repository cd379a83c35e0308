package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/jewelmart-backend/api/controllers"
	"github.com/angelmondragon/jewelmart-backend/api/middleware"
	"github.com/angelmondragon/jewelmart-backend/internal/auth"
	"github.com/angelmondragon/jewelmart-backend/internal/cart"
	"github.com/angelmondragon/jewelmart-backend/internal/checkout"
	"github.com/angelmondragon/jewelmart-backend/internal/coupons"
	"github.com/angelmondragon/jewelmart-backend/internal/orders"
	"github.com/angelmondragon/jewelmart-backend/internal/products"
	"github.com/angelmondragon/jewelmart-backend/internal/users"
	"github.com/angelmondragon/jewelmart-backend/pkg/auth/session"
	"github.com/angelmondragon/jewelmart-backend/pkg/config"
	"github.com/angelmondragon/jewelmart-backend/pkg/db"
	"github.com/angelmondragon/jewelmart-backend/pkg/enums"
	"github.com/angelmondragon/jewelmart-backend/pkg/logger"
	"github.com/angelmondragon/jewelmart-backend/pkg/metrics"
	"github.com/angelmondragon/jewelmart-backend/pkg/redis"
)

// Dependencies carries everything the HTTP surface needs. Nil services make
// their routes answer 500.
type Dependencies struct {
	DB       db.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	Auth     auth.Service
	Users    users.Service
	Products products.Service
	Coupons  coupons.Service
	Cart     cart.Service
	Checkout checkout.Service
	Orders   orders.Service

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

// PublicEndpoint is a route reachable without a bearer token.
type PublicEndpoint struct {
	Method string
	Path   string
}

// PublicEndpoints lists every unauthenticated route. Anything not listed
// here sits behind middleware.Auth.
func PublicEndpoints(cfg *config.Config) []PublicEndpoint {
	out := []PublicEndpoint{
		{http.MethodGet, "/health/live"},
		{http.MethodGet, "/health/ready"},
		{http.MethodGet, "/metrics"},
		{http.MethodPost, "/api/v1/auth/signup"},
		{http.MethodPost, "/api/v1/auth/login"},
		{http.MethodPost, "/api/v1/auth/refresh"},
	}
	if cfg.FeatureFlags.CatalogPublic {
		out = append(out,
			PublicEndpoint{http.MethodGet, "/api/v1/products"},
			PublicEndpoint{http.MethodGet, "/api/v1/products/{productId}"},
		)
	}
	return out
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.HTTPMetrics != nil {
		r.Use(middleware.Metrics(deps.HTTPMetrics))
	}
	r.Use(middleware.CORS(cfg.CORS))

	logPublicEndpoints(logg, PublicEndpoints(cfg))

	// A nil *redis.Client must not become a non-nil interface.
	var idempotencyStore redis.IdempotencyStore
	var rateLimitStore middleware.RateLimiterStore
	var redisPinger controllers.Pinger
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
		rateLimitStore = deps.Redis
		redisPinger = deps.Redis
	}
	var dbPinger controllers.Pinger
	if deps.DB != nil {
		dbPinger = deps.DB
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbPinger,
			"redis": redisPinger,
		}))
	})
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	authn := middleware.Auth(cfg.JWT, deps.Sessions, logg)
	// Applied per route so the full route pattern is resolved when it runs.
	idem := middleware.Idempotency(idempotencyStore, cfg.Idempotency, logg)
	adminOnly := middleware.RequireRole(enums.UserRoleAdmin, logg)
	selfOrAdmin := middleware.RequireSelfOrAdmin("userId", logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(middleware.SignupRateLimitPolicy(cfg.AuthRateLimit), rateLimitStore, logg)).
				Post("/signup", controllers.AuthSignup(deps.Auth, logg))
			r.With(middleware.AuthRateLimit(middleware.LoginRateLimitPolicy(cfg.AuthRateLimit), rateLimitStore, logg)).
				Post("/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(authn)
				r.Post("/logout", controllers.AuthLogout(deps.Auth, logg))
				r.Get("/user", controllers.AuthGetProfile(deps.Auth, logg))
				r.Put("/user", controllers.AuthUpdateProfile(deps.Auth, logg))
				r.Put("/reset-password", controllers.AuthResetPassword(deps.Auth, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if !cfg.FeatureFlags.CatalogPublic {
					r.Use(authn)
				}
				r.Get("/", controllers.ProductsList(deps.Products, logg))
				r.Get("/{productId}", controllers.ProductsGet(deps.Products, logg))
			})
			r.Group(func(r chi.Router) {
				r.Use(authn, adminOnly)
				r.Post("/", controllers.ProductsCreate(deps.Products, logg))
				r.Put("/{productId}", controllers.ProductsUpdate(deps.Products, logg))
				r.Delete("/{productId}", controllers.ProductsDelete(deps.Products, logg))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authn)

			r.Route("/users", func(r chi.Router) {
				r.Use(adminOnly)
				r.Get("/", controllers.UsersList(deps.Users, logg))
				r.Get("/{userId}", controllers.UsersGet(deps.Users, logg))
				r.Put("/{userId}", controllers.UsersUpdate(deps.Users, logg))
				r.Delete("/{userId}", controllers.UsersDelete(deps.Users, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.With(adminOnly).Get("/", controllers.CartList(deps.Cart, logg))
				r.With(idem).Post("/add", controllers.CartAdd(deps.Cart, logg))
				r.Put("/update", controllers.CartUpdate(deps.Cart, logg))
				r.Delete("/remove", controllers.CartRemove(deps.Cart, logg))
				r.With(selfOrAdmin).Delete("/clear/{userId}", controllers.CartClear(deps.Cart, logg))
				r.With(selfOrAdmin).Get("/{userId}", controllers.CartGet(deps.Cart, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.With(idem).Post("/confirm-payment", controllers.CheckoutConfirmPayment(deps.Checkout, logg))
				r.With(selfOrAdmin).Get("/{userId}", controllers.CheckoutSummary(deps.Checkout, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(deps.Orders, logg))
				r.Get("/{orderId}", controllers.OrdersGet(deps.Orders, logg))
				r.With(adminOnly, idem).Post("/", controllers.OrdersCreate(deps.Orders, logg))
				r.With(adminOnly).Delete("/{orderId}", controllers.OrdersDelete(deps.Orders, logg))
			})

			r.Route("/coupons", func(r chi.Router) {
				r.Get("/apply", controllers.CouponsApply(deps.Coupons, logg))
				r.Group(func(r chi.Router) {
					r.Use(adminOnly)
					r.Get("/", controllers.CouponsList(deps.Coupons, logg))
					r.Post("/", controllers.CouponsCreate(deps.Coupons, logg))
					r.Get("/{code}", controllers.CouponsGet(deps.Coupons, logg))
					r.Put("/{code}", controllers.CouponsUpdate(deps.Coupons, logg))
					r.Delete("/{code}", controllers.CouponsDelete(deps.Coupons, logg))
				})
			})
		})
	})

	return r
}

func logPublicEndpoints(logg *logger.Logger, endpoints []PublicEndpoint) {
	if logg == nil {
		return
	}
	paths := make([]string, 0, len(endpoints))
	for _, e := range endpoints {
		paths = append(paths, e.Method+" "+e.Path)
	}
	logg.Info(logg.WithField(context.Background(), "public_endpoints", paths), "router.public_endpoints")
}
