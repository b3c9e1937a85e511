// Package speciallist реализует HTTP-обработчик списка специальных аккаунтов.
package speciallist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/linkhoard/entitlements-service/internal/http/response"
	"github.com/linkhoard/entitlements-service/internal/lib/sl"
	"github.com/linkhoard/entitlements-service/internal/models"
)

// Handler обрабатывает запросы на список специальных аккаунтов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс административной бизнес-логики.
type Service interface {
	List(ctx context.Context, limit, offset int) ([]models.SpecialAccountRecord, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список специальных аккаунтов
// @Description Возвращает специальные аккаунты с пагинацией. Только для роли admin.
// @Tags Admin
// @Produce  json
// @Param limit query int false "Максимум записей (по умолчанию 10)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} map[string]any "Список специальных аккаунтов"
// @Failure 403 {object} response.ErrorResponse "Доступ запрещен"
// @Failure 500 {object} response.ErrorResponse "Ошибка чтения списка"
// @Security BearerAuth
// @Router /admin/special-accounts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.speciallist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 10
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	accounts, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		log.Error("failed to list special accounts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list special accounts"))
		return
	}

	log.Info("special accounts listed", slog.Int("count", len(accounts)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count":       len(accounts),
		"special_accounts": accounts,
	}))
}
