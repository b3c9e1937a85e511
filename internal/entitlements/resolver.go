// Package entitlements реализует чистую логику вычисления эффективного плана
// пользователя из четырёх источников: базовой записи подписки, пробных
// периодов, специальных аккаунтов и локального отладочного переопределения.
//
// Resolve детерминирован: результат зависит только от переданных коллекций
// и момента времени now. Никакого обращения к хранилищу или глобальному
// состоянию здесь нет — источники собирает вызывающий слой.
package entitlements

import (
	"time"

	"github.com/linkhoard/entitlements-service/internal/models"
)

// Sources объединяет сырые записи четырёх источников плана для одной
// идентичности. Subscription равен nil, если базовой записи нет, —
// пользователь тогда считается активным free.
type Sources struct {
	Subscription    *models.SubscriptionRecord
	Trials          []models.TrialRecord
	SpecialAccounts []models.SpecialAccountRecord
	Debug           models.DebugOverride
}

// Resolve вычисляет эффективный план по фиксированному порядку приоритетов:
// базовая подписка, затем поднятие пробным периодом (только с free), затем
// специальный аккаунт, затем отладочное переопределение.
//
// Поднятие пробным периодом срабатывает только с тарифа free: платный
// пользователь с действующим пробным периодом более высокого тарифа получает
// IsTrialing=true, но его план не меняется. Это осознанное продуктовое
// поведение, а не ошибка.
//
// Булевы флаги возможностей перепроверяют активность биллинга отдельно от
// отображаемого плана: отменённая подписка сохраняет plan=premium, но
// IsPremium при этом false.
func Resolve(src Sources, now time.Time) models.ResolvedPlan {
	plan := models.PlanFree
	isActive := true
	if src.Subscription != nil {
		if src.Subscription.Plan != "" {
			plan = src.Subscription.Plan
		}
		isActive = src.Subscription.Status.IsEffective()
	}

	// Первая действующая запись побеждает: порядок задаёт хранилище.
	var trial *models.TrialRecord
	for i := range src.Trials {
		if src.Trials[i].ValidAt(now) {
			trial = &src.Trials[i]
			break
		}
	}
	isTrialing := trial != nil
	if trial != nil && plan == models.PlanFree {
		plan = trial.TrialPlan
	}

	var special *models.SpecialAccountRecord
	for i := range src.SpecialAccounts {
		if src.SpecialAccounts[i].ValidAt(now) {
			special = &src.SpecialAccounts[i]
			break
		}
	}
	isSpecial := special != nil
	if special != nil {
		plan = special.Tier
	}

	// Отладочное переопределение перекрывает всё для текущего запроса,
	// флаги возможностей выводятся только из подменного тарифа.
	if src.Debug.Enabled {
		tier := src.Debug.Tier
		return models.ResolvedPlan{
			Plan:             tier,
			IsPro:            tier != models.PlanFree,
			IsPremium:        tier == models.PlanPremium || tier == models.PlanFamily,
			IsFamily:         tier == models.PlanFamily,
			IsTrialing:       isTrialing,
			IsSpecialAccount: isSpecial,
			IsDebugMode:      true,
		}
	}

	resolved := models.ResolvedPlan{
		Plan:             plan,
		IsPro:            isSpecial || (isActive && plan.IsPaid()),
		IsPremium:        isSpecial || (isActive && (plan == models.PlanPremium || plan == models.PlanFamily)),
		IsTrialing:       isTrialing,
		IsSpecialAccount: isSpecial,
	}
	if isSpecial {
		resolved.IsFamily = special.Tier == models.PlanFamily
	} else {
		resolved.IsFamily = isActive && plan == models.PlanFamily
	}
	return resolved
}
