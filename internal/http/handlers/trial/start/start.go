// Package start реализует HTTP-обработчик запуска пробного периода.
//
// Handler принимает JSON с тарифом пробного периода, валидирует его и
// делегирует запуск сервису пробных периодов. Повторный запуск для той же
// идентичности возвращает конфликт без создания новой записи.
package start

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/linkhoard/entitlements-service/internal/http/middlewarectx"
	"github.com/linkhoard/entitlements-service/internal/http/response"
	"github.com/linkhoard/entitlements-service/internal/lib/sl"
	"github.com/linkhoard/entitlements-service/internal/models"
	"github.com/linkhoard/entitlements-service/internal/services/trial"
)

// Request — входные данные для запуска пробного периода.
type Request struct {
	Plan string `json:"plan" validate:"required,oneof=premium family"`
}

// Handler обрабатывает запросы на запуск пробного периода.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики пробных периодов.
type Service interface {
	Start(ctx context.Context, email string, plan models.Plan) (*models.TrialRecord, error)
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
// @Summary Запустить пробный период
// @Description Запускает пробный период выбранного тарифа для текущего пользователя. Одна идентичность — один пробный период.
// @Tags Trials
// @Accept  json
// @Produce  json
// @Param request body Request true "Тариф пробного периода"
// @Success 200 {object} map[string]any "Пробный период запущен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Пробный период уже использован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка запуска пробного периода"
// @Security BearerAuth
// @Router /trials [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.trial.start"

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

	email, ok := middlewarectx.EmailFromContext(r.Context())
	if !ok || email == "" {
		log.Error("email not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	record, err := h.service.Start(r.Context(), email, models.Plan(req.Plan))
	if err != nil {
		switch {
		case errors.Is(err, trial.ErrTrialAlreadyUsed):
			log.Warn("trial already used", slog.String("email", email))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("trial already used"))
		case errors.Is(err, trial.ErrPlanNotTrialable):
			log.Warn("plan is not trialable", slog.String("plan", req.Plan))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("plan is not trialable"))
		default:
			log.Error("failed to start trial", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not start trial"))
		}
		return
	}

	log.Info("trial started",
		slog.String("email", email),
		slog.String("plan", req.Plan),
		slog.Time("trial_end", record.TrialEnd))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"trial": record,
	}))
}
