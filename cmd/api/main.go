package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/tiendita/caja/internal/apperror"
	"github.com/tiendita/caja/internal/config"
	"github.com/tiendita/caja/internal/debt"
	cajaHttp "github.com/tiendita/caja/internal/http"
	debtsHandler "github.com/tiendita/caja/internal/http/debts"
	eventsHandler "github.com/tiendita/caja/internal/http/events"
	prefsHandler "github.com/tiendita/caja/internal/http/prefs"
	productHandler "github.com/tiendita/caja/internal/http/product"
	txHandler "github.com/tiendita/caja/internal/http/transaction"
	"github.com/tiendita/caja/internal/inventory"
	"github.com/tiendita/caja/internal/ledger"
	"github.com/tiendita/caja/internal/notify"
	"github.com/tiendita/caja/internal/observability"
	"github.com/tiendita/caja/internal/settings"
	"github.com/tiendita/caja/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.App.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.App.Port),
		zap.String("storage_path", cfg.Storage.Path),
		zap.Duration("cache_max_age", cfg.Storage.CacheMaxAge),
	)

	var backend storage.Backend
	if cfg.Storage.Path == "" {
		logger.Warn("no storage path configured, data will not survive restarts")
		backend = storage.NewMemoryBackend()
	} else {
		sqlite, err := storage.OpenSQLite(cfg.Storage.Path)
		if err != nil {
			logger.Fatal("failed to open storage", zap.Error(err))
		}
		backend = sqlite
	}
	defer backend.Close()

	metrics := observability.NewMetrics()

	bus := apperror.NewBus(logger)
	bus.RegisterHandler(func(e apperror.AppError) {
		metrics.ErrorReported(string(e.Type))
	})

	changes := notify.NewBroadcaster()
	store := storage.New(backend, storage.NewCache(cfg.Storage.CacheMaxAge), bus, changes, metrics)

	var (
		ledgerService    = ledger.NewService(store)
		inventoryService = inventory.NewService(store, bus)
		debtService      = debt.NewService(store, ledgerService)
		settingsService  = settings.NewService(store, bus)
	)

	var (
		transactionsV1 = txHandler.NewHandler(ledgerService, logger)
		productsV1     = productHandler.NewHandler(inventoryService, logger)
		debtsV1        = debtsHandler.NewHandler(debtService, logger)
		prefsV1        = prefsHandler.NewHandler(settingsService, logger)
		eventsV1       = eventsHandler.NewHandler(changes, logger)
	)

	router := cajaHttp.New(logger, metrics, cfg.HTTP.AllowedOrigins,
		transactionsV1, productsV1, debtsV1, prefsV1, eventsV1)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("starting server", zap.String("addr", addr))

	// No write timeout: the change-events stream holds its response open.
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
