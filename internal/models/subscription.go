package models

import "time"

// SubscriptionStatus представляет биллинговый статус базовой подписки.
type SubscriptionStatus string

// Допустимые значения статуса подписки.
const (
	StatusActive     SubscriptionStatus = "active"
	StatusTrialing   SubscriptionStatus = "trialing"
	StatusPastDue    SubscriptionStatus = "past_due"
	StatusCanceled   SubscriptionStatus = "canceled"
	StatusIncomplete SubscriptionStatus = "incomplete"
)

// IsEffective возвращает true, если статус позволяет тарифу действовать.
// Любой другой статус отключает эффект тарифа, хотя сохранённое поле plan
// может всё ещё показывать платное значение.
func (s SubscriptionStatus) IsEffective() bool {
	return s == StatusActive || s == StatusTrialing
}

// SubscriptionRecord представляет базовую запись подписки пользователя.
// Запись может отсутствовать — тогда пользователь считается активным free.
type SubscriptionRecord struct {
	ID        int                // Идентификатор записи в хранилище
	UserEmail string             // Идентичность пользователя
	Plan      Plan               // Номинальный тариф, может быть устаревшим
	Status    SubscriptionStatus // Биллинговый статус
	UpdatedAt time.Time          // Время последнего изменения записи
}
