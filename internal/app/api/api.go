package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/portfolio-tracker/internal/cache"
	"github.com/magabrotheeeer/portfolio-tracker/internal/config"
	"github.com/magabrotheeeer/portfolio-tracker/internal/dataprovider"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/portfolio-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/portfolio-tracker/internal/migrations"
	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
	"github.com/magabrotheeeer/portfolio-tracker/internal/paymentprovider"
	accountservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/account"
	authservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/auth"
	orderservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/order"
	subservice "github.com/magabrotheeeer/portfolio-tracker/internal/services/subscription"
	"github.com/magabrotheeeer/portfolio-tracker/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP API с зависимостями, которые нужно закрыть при остановке.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New подключает хранилища, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "api.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	marketData, err := dataprovider.New(logger, cacheRedis, cfg.CacheTTL, cfg.DataSources)
	if err != nil {
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := marketData.SetPrimary(cfg.DataSourcePrimary); err != nil {
		_ = db.Close()
		_ = cacheRedis.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	deps := Deps{
		Auth: authservice.New(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL), models.Settings{
			BaseCurrency: cfg.BaseCurrency,
			Locale:       cfg.DefaultLocale,
		}),
		Subscriptions: subservice.New(logger, db, cacheRedis,
			paymentprovider.NewClient(cfg.StripeSecretKey), cfg.RootURL, cfg.CacheTTL),
		Accounts:   accountservice.New(logger, db),
		Orders:     orderservice.New(logger, db, cfg.EnableImport, cfg.MaxOrdersToImport, marketData.Primary()),
		MarketData: marketData,
		DB:         db,
		Registry:   registry,
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.Features, cfg.HTTPServer, deps)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	logger.Info("api initialized",
		slog.Bool("subscriptions", cfg.EnableSubscription),
		slog.Bool("import", cfg.EnableImport),
		slog.Bool("read_only", cfg.ReadOnlyMode),
		slog.Any("data_sources", marketData.DataSources()),
	)

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close cache", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
