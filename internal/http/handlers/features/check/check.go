// Package check реализует HTTP-обработчик проверки доступа к функции продукта.
//
// Handler извлекает ключ функции из URL, вычисляет эффективный тариф текущего
// пользователя и возвращает решение гейта: разрешен ли доступ и какой тариф
// нужен для разблокировки.
package check

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/linkhoard/entitlements-service/internal/entitlements"
	"github.com/linkhoard/entitlements-service/internal/http/middlewarectx"
	"github.com/linkhoard/entitlements-service/internal/http/response"
	"github.com/linkhoard/entitlements-service/internal/lib/sl"
	"github.com/linkhoard/entitlements-service/internal/models"
)

// Handler обрабатывает запросы на проверку доступа к функции.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики вычисления тарифа.
type Service interface {
	Resolve(ctx context.Context, email string, debug models.DebugOverride) (*models.ResolvedPlan, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить доступ к функции
// @Description Проверяет, доступна ли функция текущему пользователю. При отказе возвращает минимальный тариф для разблокировки.
// @Tags Features
// @Produce  json
// @Param key path string true "Ключ функции"
// @Success 200 {object} map[string]any "Решение гейта"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Неизвестная функция"
// @Failure 500 {object} response.ErrorResponse "Ошибка вычисления тарифа"
// @Security BearerAuth
// @Router /features/{key} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.features.check"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	key := chi.URLParam(r, "key")
	req, err := entitlements.FeatureRequirement(key)
	if err != nil {
		log.Warn("unknown feature key", slog.String("key", key))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("unknown feature"))
		return
	}

	email, ok := middlewarectx.EmailFromContext(r.Context())
	if !ok || email == "" {
		log.Error("email not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	debug := middlewarectx.DebugFromContext(r.Context())

	plan, err := h.service.Resolve(r.Context(), email, debug)
	if err != nil {
		log.Error("failed to resolve plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve plan"))
		return
	}

	decision := entitlements.Check(*plan, req)
	log.Info("feature checked",
		slog.String("email", email),
		slog.String("key", key),
		slog.Bool("allowed", decision.Allowed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"feature":       key,
		"allowed":       decision.Allowed,
		"required_plan": decision.RequiredPlan,
		"plan":          plan.Plan,
	}))
}
