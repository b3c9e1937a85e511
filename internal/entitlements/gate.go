package entitlements

import (
	"fmt"

	"github.com/linkhoard/entitlements-service/internal/models"
)

// Requirement описывает условие доступа к защищённой функции: либо конкретная
// возможность, либо минимальный тариф, перекрывающий возможности требуемого.
type Requirement struct {
	Capability  models.Capability // пусто, если требование задано минимальным тарифом
	MinimumPlan models.Plan       // пусто, если требование задано возможностью
}

// RequireCapability строит требование по возможности.
func RequireCapability(c models.Capability) Requirement {
	return Requirement{Capability: c}
}

// RequireMinimumPlan строит требование по минимальному тарифу.
func RequireMinimumPlan(p models.Plan) Requirement {
	return Requirement{MinimumPlan: p}
}

// Decision представляет результат проверки гейта. При отказе RequiredPlan
// содержит самый дешёвый тариф, удовлетворяющий требованию, — его показывает
// апсейл вместо защищённого контента.
type Decision struct {
	Allowed      bool        `json:"allowed"`
	RequiredPlan models.Plan `json:"required_plan,omitempty"`
}

// upsellOrder — порядок перебора тарифов при подборе апсейла, от дешёвого
// к дорогому.
var upsellOrder = []models.Plan{models.PlanPro, models.PlanPremium, models.PlanFamily}

// Check выполняет чистую проверку гейта: возможности отвечаются булевыми
// флагами разрешённого плана, минимальный тариф — явным набором возможностей
// отображаемого плана. Побочных эффектов нет.
func Check(resolved models.ResolvedPlan, req Requirement) Decision {
	allowed := false
	switch {
	case req.Capability != "":
		switch req.Capability {
		case models.CapabilityPro:
			allowed = resolved.IsPro
		case models.CapabilityPremium:
			allowed = resolved.IsPremium
		case models.CapabilityFamily:
			allowed = resolved.IsFamily
		}
	case req.MinimumPlan != "":
		allowed = resolved.Plan.Covers(req.MinimumPlan)
	}
	if allowed {
		return Decision{Allowed: true}
	}
	return Decision{RequiredPlan: upsellPlan(req)}
}

// upsellPlan возвращает самый дешёвый тариф, удовлетворяющий требованию.
func upsellPlan(req Requirement) models.Plan {
	for _, p := range upsellOrder {
		if req.Capability != "" && p.Has(req.Capability) {
			return p
		}
		if req.MinimumPlan != "" && p.Covers(req.MinimumPlan) {
			return p
		}
	}
	return models.PlanFamily
}

// Features перечисляет защищённые функции продукта и их требования.
// Ключи совпадают с теми, что использует клиент при запросе гейта.
var Features = map[string]Requirement{
	"advanced_analytics": RequireCapability(models.CapabilityPro),
	"deal_alerts":        RequireCapability(models.CapabilityPro),
	"ai_summaries":       RequireCapability(models.CapabilityPremium),
	"streaming_sync":     RequireCapability(models.CapabilityPremium),
	"shared_boards":      RequireCapability(models.CapabilityFamily),
	"family_boards":      RequireCapability(models.CapabilityFamily),
	"unlimited_saves":    RequireMinimumPlan(models.PlanPro),
}

// FeatureRequirement возвращает требование для ключа функции.
func FeatureRequirement(key string) (Requirement, error) {
	req, ok := Features[key]
	if !ok {
		return Requirement{}, fmt.Errorf("unknown feature: %q", key)
	}
	return req, nil
}
