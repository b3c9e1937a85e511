// Package adjusttier реализует HTTP-обработчик прямой корректировки тарифа
// базовой подписки пользователя. Причина корректировки обязательна и попадает
// в журнал операций.
package adjusttier

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/linkhoard/entitlements-service/internal/http/response"
	"github.com/linkhoard/entitlements-service/internal/lib/sl"
	"github.com/linkhoard/entitlements-service/internal/models"
)

// Request — входные данные для корректировки тарифа.
type Request struct {
	Email   string `json:"email" validate:"required,email"`
	NewTier string `json:"new_tier" validate:"required,oneof=free pro premium family"`
	Reason  string `json:"reason" validate:"required,min=3"`
}

// Handler обрабатывает запросы на корректировку тарифа подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс административной бизнес-логики.
type Service interface {
	AdjustTier(ctx context.Context, email string, newTier models.Plan, reason string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Скорректировать тариф подписки
// @Description Напрямую записывает тариф базовой подписки пользователя. Только для роли admin.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Email, новый тариф и причина"
// @Success 200 {object} map[string]any "Тариф скорректирован"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка записи тарифа"
// @Security BearerAuth
// @Router /admin/subscriptions/adjust [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.adjusttier"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	if err := h.service.AdjustTier(r.Context(), req.Email, models.Plan(req.NewTier), req.Reason); err != nil {
		log.Error("failed to adjust tier", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not adjust tier"))
		return
	}

	log.Info("tier adjusted",
		slog.String("email", req.Email),
		slog.String("new_tier", req.NewTier),
		slog.String("reason", req.Reason))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"email":    req.Email,
		"new_tier": req.NewTier,
	}))
}
