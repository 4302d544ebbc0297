package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tiendita/caja/internal/http/debts"
	"github.com/tiendita/caja/internal/http/events"
	"github.com/tiendita/caja/internal/http/prefs"
	"github.com/tiendita/caja/internal/http/product"
	"github.com/tiendita/caja/internal/http/transaction"
	"github.com/tiendita/caja/internal/observability"
)

func New(
	logger *zap.Logger,
	metrics *observability.Metrics,
	allowedOrigins []string,
	transactionsV1 *transaction.Handler,
	productsV1 *product.Handler,
	debtsV1 *debts.Handler,
	prefsV1 *prefs.Handler,
	eventsV1 *events.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(observability.RequestLogger(logger))
	router.Use(observability.RequestMetrics(metrics))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			transactionsV1.Routes(r)
		})

		r.Route("/products", productsV1.Routes)

		r.Route("/debts", debtsV1.Routes)

		r.Route("/settings", func(r chi.Router) {
			prefsV1.Routes(r)
		})

		r.Route("/events", eventsV1.Routes)
	})

	return router
}
