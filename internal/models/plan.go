// Package models содержит доменные структуры тарифных планов, подписок,
// пробных периодов и специальных аккаунтов, а также вычисляемую модель
// разрешённого плана пользователя.
package models

import "fmt"

// Plan представляет номинальный тарифный план пользователя.
type Plan string

// Допустимые значения тарифного плана.
const (
	PlanFree    Plan = "free"
	PlanPro     Plan = "pro"
	PlanPremium Plan = "premium"
	PlanFamily  Plan = "family"
)

// Capability представляет именованную возможность, которую открывает тариф.
// Гейты функций проверяют возможности, а не сравнивают планы напрямую:
// family не «выше» premium численно, это объединение pro+premium плюс
// семейные функции.
type Capability string

// Допустимые значения возможностей.
const (
	CapabilityPro     Capability = "pro"
	CapabilityPremium Capability = "premium"
	CapabilityFamily  Capability = "family_sharing"
)

// planCapabilities задаёт явный набор возможностей для каждого тарифа.
var planCapabilities = map[Plan][]Capability{
	PlanFree:    {},
	PlanPro:     {CapabilityPro},
	PlanPremium: {CapabilityPro, CapabilityPremium},
	PlanFamily:  {CapabilityPro, CapabilityPremium, CapabilityFamily},
}

// ParsePlan проверяет строку и возвращает соответствующий Plan.
func ParsePlan(s string) (Plan, error) {
	switch Plan(s) {
	case PlanFree, PlanPro, PlanPremium, PlanFamily:
		return Plan(s), nil
	}
	return "", fmt.Errorf("unknown plan: %q", s)
}

// IsPaid возвращает true для любого платного тарифа.
func (p Plan) IsPaid() bool {
	return p == PlanPro || p == PlanPremium || p == PlanFamily
}

// Has возвращает true, если тариф открывает указанную возможность.
func (p Plan) Has(c Capability) bool {
	for _, pc := range planCapabilities[p] {
		if pc == c {
			return true
		}
	}
	return false
}

// Capabilities возвращает копию набора возможностей тарифа.
func (p Plan) Capabilities() []Capability {
	caps := planCapabilities[p]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Covers возвращает true, если тариф p открывает все возможности тарифа
// required. Используется для проверок «минимальный тариф», где линейного
// ранга недостаточно.
func (p Plan) Covers(required Plan) bool {
	for _, c := range planCapabilities[required] {
		if !p.Has(c) {
			return false
		}
	}
	return true
}
