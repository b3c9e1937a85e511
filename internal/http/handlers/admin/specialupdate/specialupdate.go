// Package specialupdate реализует HTTP-обработчик изменения специального аккаунта.
//
// Handler принимает JSON с новым тарифом, признаком активности, сроком действия
// и заметками, извлекает идентификатор записи из URL и делегирует изменение
// административному сервису. Деактивация записи выполняется этим же запросом
// с is_active=false.
package specialupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/linkhoard/entitlements-service/internal/http/response"
	"github.com/linkhoard/entitlements-service/internal/lib/sl"
	"github.com/linkhoard/entitlements-service/internal/models"
	"github.com/linkhoard/entitlements-service/internal/services/specialaccount"
)

// Request — входные данные для изменения специального аккаунта.
type Request struct {
	Tier           string `json:"tier" validate:"required,oneof=free pro premium family"`
	IsActive       bool   `json:"is_active"`
	ExpirationDate string `json:"expiration_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes          string `json:"notes,omitempty"`
}

// Handler обрабатывает запросы на изменение специального аккаунта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс административной бизнес-логики.
type Service interface {
	Update(ctx context.Context, id string, tier models.Plan,
		isActive bool, expiration *time.Time, notes string) (*models.SpecialAccountRecord, error)
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
// @Summary Изменить специальный аккаунт
// @Description Меняет тариф, активность, срок действия или заметки специального аккаунта. Только для роли admin.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор записи"
// @Param request body Request true "Новые данные записи"
// @Success 200 {object} map[string]any "Запись обновлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещен"
// @Failure 404 {object} response.ErrorResponse "Запись не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка обновления записи"
// @Security BearerAuth
// @Router /admin/special-accounts/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.specialupdate"

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

	id := chi.URLParam(r, "id")
	if id == "" {
		log.Error("missing id in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing id in url"))
		return
	}

	var expiration *time.Time
	if req.ExpirationDate != "" {
		t, err := time.Parse("2006-01-02", req.ExpirationDate)
		if err != nil {
			log.Error("failed to parse expiration date", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid expiration date"))
			return
		}
		expiration = &t
	}

	account, err := h.service.Update(r.Context(), id, models.Plan(req.Tier),
		req.IsActive, expiration, req.Notes)
	if err != nil {
		if errors.Is(err, specialaccount.ErrSpecialAccountNotFound) {
			log.Warn("special account not found", slog.String("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("special account not found"))
			return
		}
		log.Error("failed to update special account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update special account"))
		return
	}

	log.Info("special account updated",
		slog.String("id", id),
		slog.Bool("is_active", req.IsActive))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"special_account": account,
	}))
}
