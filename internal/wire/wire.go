package wire

import (
	"context"
	"net/http"
	"time"

	"appointment-booking/internal/adaptor"
	"appointment-booking/internal/data/repository"
	"appointment-booking/internal/usecase"
	"appointment-booking/pkg/cache"
	"appointment-booking/pkg/metrics"
	"appointment-booking/pkg/middleware"
	"appointment-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the external collaborators built in main.
type Deps struct {
	Cache    cache.Cache
	Payments usecase.PaymentGateway
	Notifier usecase.Notifier
	Tokens   *utils.TokenManager
	DB       Pinger
}

// App holds the wired router and services
type App struct {
	Router  *chi.Mux
	Handler http.Handler
	Service *usecase.Service
}

// Wiring builds services, handlers and routes
func Wiring(repo *repository.Repository, deps Deps, config *utils.Config, logger *zap.Logger) *App {
	service := usecase.NewService(repo, deps.Cache, deps.Payments, deps.Notifier, deps.Tokens, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, deps, config, logger)

	return &App{
		Router:  router,
		Handler: otelhttp.NewHandler(router, config.App.Name),
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	deps Deps,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSOrigins))
	r.Use(metrics.HTTPMetricsMiddleware)

	limiter := middleware.NewRateLimiter(config.RateLimit)

	wirePublic(r, handler, repo, limiter, logger)
	wireAdmin(r, handler, deps.Tokens, limiter, logger)

	r.Get("/health", healthHandler(deps.DB))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				utils.ResponseJSON(w, http.StatusServiceUnavailable, false, "database unavailable", nil, nil)
				return
			}
		}
		utils.ResponseSuccess(w, "OK", nil)
	}
}
