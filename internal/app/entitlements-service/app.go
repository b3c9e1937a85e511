// Package entitlementsservice собирает HTTP-приложение сервиса тарифов:
// хранилище, кеш, брокер уведомлений, бизнес-сервисы и маршруты.
package entitlementsservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linkhoard/entitlements-service/internal/cache"
	"github.com/linkhoard/entitlements-service/internal/config"
	"github.com/linkhoard/entitlements-service/internal/lib/jwt"
	"github.com/linkhoard/entitlements-service/internal/metrics"
	"github.com/linkhoard/entitlements-service/internal/migrations"
	"github.com/linkhoard/entitlements-service/internal/rabbitmq"
	authservice "github.com/linkhoard/entitlements-service/internal/services/auth"
	resolutionservice "github.com/linkhoard/entitlements-service/internal/services/resolution"
	specialaccountservice "github.com/linkhoard/entitlements-service/internal/services/specialaccount"
	trialservice "github.com/linkhoard/entitlements-service/internal/services/trial"
	"github.com/linkhoard/entitlements-service/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и ресурсы приложения.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
}

// New создает приложение: подключает PostgreSQL, применяет миграции,
// поднимает Redis и RabbitMQ, собирает сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.RabbitConnectionString, 5, 2*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		return nil, err
	}
	notifier := rabbitmq.NewNotifier(ch)

	resolutionMetrics := metrics.New(prometheus.DefaultRegisterer)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker)
	resolutionService := resolutionservice.NewResolutionService(db, cacheRedis,
		resolutionMetrics, logger, cfg.ResolutionCacheTTL)
	trialService := trialservice.NewTrialService(db, cacheRedis, notifier,
		cfg.TrialWindows, logger)
	specialAccountService := specialaccountservice.NewSpecialAccountService(db, db,
		cacheRedis, notifier, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, db, Services{
		Auth:           authService,
		Resolution:     resolutionService,
		Trial:          trialService,
		SpecialAccount: specialAccountService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
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
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		return err
	}
}
