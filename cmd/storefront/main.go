package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dinartr/storefront/internal/blob"
	"github.com/dinartr/storefront/internal/cart"
	"github.com/dinartr/storefront/internal/catalog"
	"github.com/dinartr/storefront/internal/config"
	"github.com/dinartr/storefront/internal/datastore"
	"github.com/dinartr/storefront/internal/db"
	shopHttp "github.com/dinartr/storefront/internal/handler/http"
	"github.com/dinartr/storefront/internal/order"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	setupLogger(cfg.App.Env)
	log.Info().Str("env", cfg.App.Env).Msg("Storefront starting...")

	ctx := context.Background()

	var gateway datastore.Gateway
	if cfg.Postgres.Configured() {
		if err := db.ApplyMigrations(cfg.Postgres); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}

		pg, err := db.New(ctx, cfg.Postgres)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pg.Close()

		gateway = datastore.NewSQLGateway(pg.SQL)
	} else {
		log.Warn().Msg("DB_HOST is not set, persistence service not configured")
	}

	var cartStorage cart.Storage
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis is not reachable yet, carts will start empty until it is")
		}
		cartStorage = cart.NewRedisStorage(rdb, cfg.Redis.CartTTL)
	} else {
		log.Warn().Msg("REDIS_ADDR is not set, carts are kept in memory")
		cartStorage = cart.NewMemoryStorage()
	}

	blobStore, err := blob.NewFileStore(cfg.Blob.Dir, cfg.Blob.Bucket, cfg.App.PublicURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare blob store")
	}

	catalogSvc := catalog.NewService(gateway)
	orderSvc := order.NewService(gateway)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(shopHttp.RequestLogger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	router.Handle("/"+blobStore.Bucket()+"/*", blobStore.Handler())

	shopHttp.NewCatalogHandler(catalogSvc).RegisterRoutes(router)
	shopHttp.NewCartHandler(cartStorage).RegisterRoutes(router)
	shopHttp.NewOrderHandler(orderSvc, cartStorage).RegisterRoutes(router)
	shopHttp.NewAdminHandler(catalogSvc, orderSvc, blobStore,
		shopHttp.AdminAuth(cfg.Admin.Email, cfg.Admin.PasswordHash)).RegisterRoutes(router)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return
	}
	log.Info().Msg("Storefront stopped gracefully")
}

func setupLogger(env string) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", "storefront").Logger()
}
