package entitlements

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/linkhoard/entitlements-service/internal/models"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func trial(plan models.Plan, end time.Time, active bool) models.TrialRecord {
	return models.TrialRecord{
		ID:         "trial-1",
		UserEmail:  "user@example.com",
		TrialPlan:  plan,
		TrialStart: end.AddDate(0, 0, -7),
		TrialEnd:   end,
		IsActive:   active,
	}
}

func special(tier models.Plan, expiration *time.Time, active bool) models.SpecialAccountRecord {
	return models.SpecialAccountRecord{
		ID:             "special-1",
		Email:          "user@example.com",
		Tier:           tier,
		AccountType:    models.AccountTypeGift,
		IsActive:       active,
		ExpirationDate: expiration,
	}
}

func subscription(plan models.Plan, status models.SubscriptionStatus) *models.SubscriptionRecord {
	return &models.SubscriptionRecord{
		UserEmail: "user@example.com",
		Plan:      plan,
		Status:    status,
	}
}

func TestResolve(t *testing.T) {
	future := now.AddDate(0, 0, 3)
	past := now.AddDate(0, 0, -3)

	tests := []struct {
		name string
		src  Sources
		want models.ResolvedPlan
	}{
		{
			name: "no records resolves to active free",
			src:  Sources{},
			want: models.ResolvedPlan{Plan: models.PlanFree},
		},
		{
			name: "valid premium trial elevates free",
			src: Sources{
				Trials: []models.TrialRecord{trial(models.PlanPremium, future, true)},
			},
			want: models.ResolvedPlan{
				Plan:       models.PlanPremium,
				IsPro:      true,
				IsPremium:  true,
				IsTrialing: true,
			},
		},
		{
			name: "trial does not elevate above free",
			src: Sources{
				Subscription: subscription(models.PlanPro, models.StatusActive),
				Trials:       []models.TrialRecord{trial(models.PlanPremium, future, true)},
			},
			want: models.ResolvedPlan{
				Plan:       models.PlanPro,
				IsPro:      true,
				IsTrialing: true,
			},
		},
		{
			name: "expired trial is ignored even with is_active true",
			src: Sources{
				Trials: []models.TrialRecord{trial(models.PlanPremium, past, true)},
			},
			want: models.ResolvedPlan{Plan: models.PlanFree},
		},
		{
			name: "deactivated trial inside window is ignored",
			src: Sources{
				Trials: []models.TrialRecord{trial(models.PlanPremium, future, false)},
			},
			want: models.ResolvedPlan{Plan: models.PlanFree},
		},
		{
			name: "special account overrides canceled subscription",
			src: Sources{
				Subscription:    subscription(models.PlanPro, models.StatusCanceled),
				SpecialAccounts: []models.SpecialAccountRecord{special(models.PlanFamily, nil, true)},
			},
			want: models.ResolvedPlan{
				Plan:             models.PlanFamily,
				IsPro:            true,
				IsPremium:        true,
				IsFamily:         true,
				IsSpecialAccount: true,
			},
		},
		{
			name: "expired special account falls back to trial",
			src: Sources{
				Trials:          []models.TrialRecord{trial(models.PlanPremium, future, true)},
				SpecialAccounts: []models.SpecialAccountRecord{special(models.PlanFamily, &past, true)},
			},
			want: models.ResolvedPlan{
				Plan:       models.PlanPremium,
				IsPro:      true,
				IsPremium:  true,
				IsTrialing: true,
			},
		},
		{
			name: "special account without expiration never expires",
			src: Sources{
				SpecialAccounts: []models.SpecialAccountRecord{special(models.PlanPremium, nil, true)},
			},
			want: models.ResolvedPlan{
				Plan:             models.PlanPremium,
				IsPro:            true,
				IsPremium:        true,
				IsSpecialAccount: true,
			},
		},
		{
			name: "debug override outranks special account",
			src: Sources{
				SpecialAccounts: []models.SpecialAccountRecord{special(models.PlanFamily, nil, true)},
				Debug:           models.DebugOverride{Enabled: true, Tier: models.PlanFree},
			},
			want: models.ResolvedPlan{
				Plan:             models.PlanFree,
				IsSpecialAccount: true,
				IsDebugMode:      true,
			},
		},
		{
			name: "debug override fakes premium for free user",
			src: Sources{
				Debug: models.DebugOverride{Enabled: true, Tier: models.PlanPremium},
			},
			want: models.ResolvedPlan{
				Plan:        models.PlanPremium,
				IsPro:       true,
				IsPremium:   true,
				IsDebugMode: true,
			},
		},
		{
			name: "active pro subscription",
			src: Sources{
				Subscription: subscription(models.PlanPro, models.StatusActive),
			},
			want: models.ResolvedPlan{
				Plan:  models.PlanPro,
				IsPro: true,
			},
		},
		{
			name: "family trial grants full capability chain",
			src: Sources{
				Trials: []models.TrialRecord{trial(models.PlanFamily, future, true)},
			},
			want: models.ResolvedPlan{
				Plan:       models.PlanFamily,
				IsPro:      true,
				IsPremium:  true,
				IsFamily:   true,
				IsTrialing: true,
			},
		},
		{
			name: "canceled premium keeps display plan but loses capabilities",
			src: Sources{
				Subscription: subscription(models.PlanPremium, models.StatusCanceled),
			},
			want: models.ResolvedPlan{Plan: models.PlanPremium},
		},
		{
			name: "trialing status counts as effective billing",
			src: Sources{
				Subscription: subscription(models.PlanPremium, models.StatusTrialing),
			},
			want: models.ResolvedPlan{
				Plan:      models.PlanPremium,
				IsPro:     true,
				IsPremium: true,
			},
		},
		{
			name: "past_due disables capabilities",
			src: Sources{
				Subscription: subscription(models.PlanFamily, models.StatusPastDue),
			},
			want: models.ResolvedPlan{Plan: models.PlanFamily},
		},
		{
			name: "first valid trial wins among several",
			src: Sources{
				Trials: []models.TrialRecord{
					trial(models.PlanPremium, past, true),
					trial(models.PlanFamily, future, true),
					trial(models.PlanPremium, future, true),
				},
			},
			want: models.ResolvedPlan{
				Plan:       models.PlanFamily,
				IsPro:      true,
				IsPremium:  true,
				IsFamily:   true,
				IsTrialing: true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.src, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestResolve_CapabilityChain проверяет, что в любом состоянии выполняется
// цепочка IsFamily => IsPremium => IsPro.
func TestResolve_CapabilityChain(t *testing.T) {
	future := now.AddDate(0, 0, 3)
	past := now.AddDate(0, 0, -3)

	plans := []models.Plan{models.PlanFree, models.PlanPro, models.PlanPremium, models.PlanFamily}
	statuses := []models.SubscriptionStatus{
		models.StatusActive, models.StatusTrialing, models.StatusPastDue, models.StatusCanceled,
	}

	var sources []Sources
	sources = append(sources, Sources{})
	for _, p := range plans {
		for _, st := range statuses {
			base := subscription(p, st)
			sources = append(sources,
				Sources{Subscription: base},
				Sources{Subscription: base, Trials: []models.TrialRecord{trial(models.PlanPremium, future, true)}},
				Sources{Subscription: base, Trials: []models.TrialRecord{trial(models.PlanFamily, past, true)}},
				Sources{Subscription: base, SpecialAccounts: []models.SpecialAccountRecord{special(p, nil, true)}},
				Sources{Subscription: base, Debug: models.DebugOverride{Enabled: true, Tier: p}},
			)
		}
	}

	for _, src := range sources {
		got := Resolve(src, now)
		if got.IsFamily {
			assert.True(t, got.IsPremium, "IsFamily must imply IsPremium: %+v", got)
		}
		if got.IsPremium {
			assert.True(t, got.IsPro, "IsPremium must imply IsPro: %+v", got)
		}
	}
}

// TestResolve_SecondSessionWithoutDebug проверяет, что переопределение
// действует только на тот запрос, в котором оно передано: та же идентичность
// без флага отладки видит тариф специального аккаунта.
func TestResolve_SecondSessionWithoutDebug(t *testing.T) {
	accounts := []models.SpecialAccountRecord{special(models.PlanFamily, nil, true)}

	withDebug := Resolve(Sources{
		SpecialAccounts: accounts,
		Debug:           models.DebugOverride{Enabled: true, Tier: models.PlanFree},
	}, now)
	assert.Equal(t, models.PlanFree, withDebug.Plan)
	assert.False(t, withDebug.IsPro)

	withoutDebug := Resolve(Sources{SpecialAccounts: accounts}, now)
	assert.Equal(t, models.PlanFamily, withoutDebug.Plan)
	assert.True(t, withoutDebug.IsFamily)
}
