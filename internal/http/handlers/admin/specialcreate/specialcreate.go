// Package specialcreate реализует HTTP-обработчик выдачи специального аккаунта.
//
// Handler принимает JSON с email, тарифом и типом аккаунта, валидирует поля,
// разбирает опциональную дату истечения и делегирует создание записи
// административному сервису.
package specialcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/linkhoard/entitlements-service/internal/http/response"
	"github.com/linkhoard/entitlements-service/internal/lib/sl"
	"github.com/linkhoard/entitlements-service/internal/models"
)

// Request — входные данные для выдачи специального аккаунта.
type Request struct {
	Email          string `json:"email" validate:"required,email"`
	Tier           string `json:"tier" validate:"required,oneof=free pro premium family"`
	AccountType    string `json:"account_type" validate:"required,oneof=development gift"`
	ExpirationDate string `json:"expiration_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Notes          string `json:"notes,omitempty"`
}

// Handler обрабатывает запросы на выдачу специального аккаунта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс административной бизнес-логики.
type Service interface {
	Create(ctx context.Context, email string, tier models.Plan,
		accountType models.AccountType, expiration *time.Time, notes string) (*models.SpecialAccountRecord, error)
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
// @Summary Выдать специальный аккаунт
// @Description Создает активный специальный аккаунт с тарифом и опциональным сроком действия. Только для роли admin.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные специального аккаунта"
// @Success 200 {object} map[string]any "Специальный аккаунт создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка создания записи"
// @Security BearerAuth
// @Router /admin/special-accounts [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.specialcreate"

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

	account, err := h.service.Create(r.Context(), req.Email, models.Plan(req.Tier),
		models.AccountType(req.AccountType), expiration, req.Notes)
	if err != nil {
		log.Error("failed to create special account", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create special account"))
		return
	}

	log.Info("special account created",
		slog.String("email", req.Email),
		slog.String("tier", req.Tier))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"special_account": account,
	}))
}
