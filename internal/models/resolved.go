package models

// DebugOverride представляет локальное переопределение тарифа для предпросмотра
// интерфейса. Никогда не сохраняется на сервере: middleware собирает его из
// запроса и передаёт в резолвер явным аргументом.
type DebugOverride struct {
	Enabled bool // Включено ли переопределение для текущего запроса
	Tier    Plan // Подменный тариф
}

// ResolvedPlan представляет вычисленный эффективный план пользователя.
// Значение выводится заново при каждом чтении и никогда не хранится дольше
// короткоживущего кеша. Поле Plan — «отображаемый» тариф, булевы флаги —
// возможности: они намеренно могут расходиться (отменённая подписка
// сохраняет plan=premium, но IsPremium уже false).
type ResolvedPlan struct {
	Plan             Plan `json:"plan"`
	IsPro            bool `json:"is_pro"`
	IsPremium        bool `json:"is_premium"`
	IsFamily         bool `json:"is_family"`
	IsTrialing       bool `json:"is_trialing"`
	IsSpecialAccount bool `json:"is_special_account"`
	IsDebugMode      bool `json:"is_debug_mode"`
}
