package models

import "time"

// TrialRecord представляет пробный период пользователя для платного тарифа.
// Поле IsActive не сбрасывается автоматически по истечении окна: валидность
// всегда выводится из таймстампов при чтении, а не хранится.
type TrialRecord struct {
	ID         string    // UUID записи
	UserEmail  string    // Идентичность пользователя
	TrialPlan  Plan      // Тариф пробного периода: premium или family
	TrialStart time.Time // Начало окна
	TrialEnd   time.Time // Конец окна
	IsActive   bool      // Флаг, выставляемый при создании; временем не гасится
	Converted  bool      // Выставляется биллингом при оплате; здесь только читается
}

// ValidAt возвращает true, если пробный период действует в момент now.
func (t TrialRecord) ValidAt(now time.Time) bool {
	return t.IsActive && now.Before(t.TrialEnd)
}
