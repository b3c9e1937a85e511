package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/linkhoard/entitlements-service/internal/models"
)

// DebugTierHeader — HTTP заголовок, через который админ задаёт отладочный тариф.
const DebugTierHeader = "X-Debug-Tier"

// DebugOverrideMiddleware читает заголовок X-Debug-Tier и кладёт переопределение
// тарифа в контекст запроса. Переопределение действует только в не-продакшн
// окружении и только для роли admin; в остальных случаях заголовок игнорируется.
// Состояние нигде не сохраняется: следующий запрос без заголовка его не увидит.
func DebugOverrideMiddleware(production bool, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(DebugTierHeader)
			if raw == "" || production {
				next.ServeHTTP(w, r)
				return
			}
			role, ok := RoleFromContext(r.Context())
			if !ok || role != "admin" {
				log.Warn("debug tier header ignored for non-admin", slog.String("role", role))
				next.ServeHTTP(w, r)
				return
			}
			tier, err := models.ParsePlan(raw)
			if err != nil {
				log.Warn("debug tier header ignored", slog.String("value", raw))
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), Debug, models.DebugOverride{
				Enabled: true,
				Tier:    tier,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
