// Package middlewarectx содержит HTTP middleware приложения: проверку JWT,
// допуск только администраторов, ограничение частоты запросов и сбор
// отладочного переопределения тарифа из заголовка запроса.
package middlewarectx

import (
	"context"

	"github.com/linkhoard/entitlements-service/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// Email — ключ для email пользователя в контексте
	Email Key = "email"
	// Role — ключ для роли пользователя в контексте
	Role Key = "role"
	// Debug — ключ для отладочного переопределения тарифа в контексте
	Debug Key = "debug_override"
)

// EmailFromContext извлекает email пользователя из контекста запроса.
func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(Email).(string)
	return email, ok && email != ""
}

// RoleFromContext извлекает роль пользователя из контекста запроса.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(Role).(string)
	return role, ok
}

// DebugFromContext извлекает отладочное переопределение из контекста запроса.
// Возвращает нулевое значение, если переопределение не задано.
func DebugFromContext(ctx context.Context) models.DebugOverride {
	debug, ok := ctx.Value(Debug).(models.DebugOverride)
	if !ok {
		return models.DebugOverride{}
	}
	return debug
}
