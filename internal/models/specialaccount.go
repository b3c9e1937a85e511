package models

import "time"

// AccountType представляет тип специального аккаунта.
type AccountType string

// Допустимые значения типа специального аккаунта.
const (
	AccountTypeDevelopment AccountType = "development"
	AccountTypeGift        AccountType = "gift"
)

// SpecialAccountRecord представляет выданное администратором переопределение
// тарифа. Действующая запись даёт сохранённый tier безусловно, минуя
// биллинговый статус. Создаётся и редактируется только через админ-операции.
type SpecialAccountRecord struct {
	ID             string      // UUID записи
	Email          string      // Идентичность пользователя
	Tier           Plan        // Выдаваемый тариф
	AccountType    AccountType // development или gift
	IsActive       bool        // Деактивируется только явным действием администратора
	ExpirationDate *time.Time  // nil — бессрочно
	Notes          string      // Комментарий администратора
	CreatedAt      time.Time   // Время создания записи
}

// ValidAt возвращает true, если специальный аккаунт действует в момент now.
func (a SpecialAccountRecord) ValidAt(now time.Time) bool {
	return a.IsActive && (a.ExpirationDate == nil || a.ExpirationDate.After(now))
}
