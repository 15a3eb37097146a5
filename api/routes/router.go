package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rbos-labs/rbos-backend/api/controllers"
	cartcontrollers "github.com/rbos-labs/rbos-backend/api/controllers/cart"
	"github.com/rbos-labs/rbos-backend/api/middleware"
	"github.com/rbos-labs/rbos-backend/internal/carts"
	"github.com/rbos-labs/rbos-backend/pkg/config"
	"github.com/rbos-labs/rbos-backend/pkg/logger"
	"github.com/rbos-labs/rbos-backend/pkg/metrics"
	pkgredis "github.com/rbos-labs/rbos-backend/pkg/redis"
)

// RouterParams gathers the dependencies cmd/api wires into the router.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	CartService carts.Service
	CartMetrics *metrics.CartMetrics
	Registry    *prometheus.Registry
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.CORS(p.Config.App.CORSOrigins),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.DBPinger, p.RedisPinger))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(p.Config.JWT, p.Logger))
		r.Get("/", cartcontrollers.CartFetch(p.CartService, p.CartMetrics, p.Logger))
		r.With(middleware.Idempotency(p.Idempotency, p.Logger)).
			Post("/merge", cartcontrollers.CartMerge(p.CartService, p.CartMetrics, p.Logger))
	})

	return r
}
