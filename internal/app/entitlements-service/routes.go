// Package entitlementsservice предоставляет маршруты для основного приложения.
package entitlementsservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/linkhoard/entitlements-service/internal/config"
	"github.com/linkhoard/entitlements-service/internal/http/handlers/admin/adjusttier"
	"github.com/linkhoard/entitlements-service/internal/http/handlers/admin/specialcreate"
	"github.com/linkhoard/entitlements-service/internal/http/handlers/admin/speciallist"
	"github.com/linkhoard/entitlements-service/internal/http/handlers/admin/specialupdate"
	"github.com/linkhoard/entitlements-service/internal/http/handlers/auth/login"
	"github.com/linkhoard/entitlements-service/internal/http/handlers/auth/register"
	"github.com/linkhoard/entitlements-service/internal/http/handlers/entitlements/resolve"
	"github.com/linkhoard/entitlements-service/internal/http/handlers/features/check"
	"github.com/linkhoard/entitlements-service/internal/http/handlers/health"
	"github.com/linkhoard/entitlements-service/internal/http/handlers/trial/start"
	"github.com/linkhoard/entitlements-service/internal/http/middlewarectx"
	authservice "github.com/linkhoard/entitlements-service/internal/services/auth"
	resolutionservice "github.com/linkhoard/entitlements-service/internal/services/resolution"
	specialaccountservice "github.com/linkhoard/entitlements-service/internal/services/specialaccount"
	trialservice "github.com/linkhoard/entitlements-service/internal/services/trial"
	"github.com/linkhoard/entitlements-service/internal/storage/repository"
)

// Services объединяет бизнес-сервисы, которые обслуживают маршруты.
type Services struct {
	Auth           *authservice.AuthService
	Resolution     *resolutionservice.ResolutionService
	Trial          *trialservice.TrialService
	SpecialAccount *specialaccountservice.SpecialAccountService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, db *repository.Storage, svcs Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, svcs.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, svcs.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svcs.Auth, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Use(middlewarectx.DebugOverrideMiddleware(cfg.IsProduction(), logger))
			r.Get("/entitlements", resolve.New(logger, svcs.Resolution).ServeHTTP)
			r.Get("/features/{key}", check.New(logger, svcs.Resolution).ServeHTTP)
			r.Post("/trials", start.New(logger, svcs.Trial).ServeHTTP)

			// Административные конечные точки
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Post("/admin/special-accounts", specialcreate.New(logger, svcs.SpecialAccount).ServeHTTP)
				r.Get("/admin/special-accounts", speciallist.New(logger, svcs.SpecialAccount).ServeHTTP)
				r.Put("/admin/special-accounts/{id}", specialupdate.New(logger, svcs.SpecialAccount).ServeHTTP)
				r.Post("/admin/subscriptions/adjust", adjusttier.New(logger, svcs.SpecialAccount).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger, db).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
