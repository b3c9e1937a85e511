// Package resolve реализует HTTP-обработчик получения эффективного тарифа
// текущего пользователя.
//
// Handler извлекает email из контекста запроса, учитывает отладочное
// переопределение тарифа (если его выставил middleware) и возвращает
// вычисленный тариф вместе с флагами возможностей в JSON-формате.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/linkhoard/entitlements-service/internal/http/middlewarectx"
	"github.com/linkhoard/entitlements-service/internal/http/response"
	"github.com/linkhoard/entitlements-service/internal/lib/sl"
	"github.com/linkhoard/entitlements-service/internal/models"
	"github.com/linkhoard/entitlements-service/internal/services/resolution"
)

// Handler обрабатывает запросы на вычисление эффективного тарифа.
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
// @Summary Получить эффективный тариф
// @Description Вычисляет эффективный тариф текущего пользователя с учетом подписки, пробного периода и специального аккаунта.
// @Tags Entitlements
// @Produce  json
// @Success 200 {object} map[string]any "Эффективный тариф и флаги возможностей"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка вычисления тарифа"
// @Security BearerAuth
// @Router /entitlements [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.entitlements.resolve"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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
		if errors.Is(err, resolution.ErrUnauthenticated) {
			log.Error("empty identity in resolve request")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}
		log.Error("failed to resolve plan", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not resolve plan"))
		return
	}

	log.Info("plan resolved",
		slog.String("email", email),
		slog.String("plan", string(plan.Plan)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plan": plan,
	}))
}
