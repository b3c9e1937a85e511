package resolution

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linkhoard/entitlements-service/internal/metrics"
	"github.com/linkhoard/entitlements-service/internal/models"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetSubscription(ctx context.Context, email string) (*models.SubscriptionRecord, error) {
	args := m.Called(ctx, email)
	sub, _ := args.Get(0).(*models.SubscriptionRecord)
	return sub, args.Error(1)
}

func (m *RepoMock) ListTrials(ctx context.Context, email string) ([]models.TrialRecord, error) {
	args := m.Called(ctx, email)
	trials, _ := args.Get(0).([]models.TrialRecord)
	return trials, args.Error(1)
}

func (m *RepoMock) ListSpecialAccounts(ctx context.Context, email string) ([]models.SpecialAccountRecord, error) {
	args := m.Called(ctx, email)
	accounts, _ := args.Get(0).([]models.SpecialAccountRecord)
	return accounts, args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(key string, result any) (bool, error) {
	args := m.Called(key, result)
	return args.Bool(0), args.Error(1)
}

func (m *CacheMock) Set(key string, value any, expiration time.Duration) error {
	return m.Called(key, value, expiration).Error(0)
}

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newService(repo *RepoMock, c *CacheMock) *ResolutionService {
	m := metrics.New(prometheus.NewRegistry())
	return NewResolutionService(repo, c, m, NewNoopLogger(), 30*time.Second)
}

func TestResolve_Unauthenticated(t *testing.T) {
	svc := newService(&RepoMock{}, &CacheMock{})

	resolved, err := svc.Resolve(context.Background(), "", models.DebugOverride{})
	require.ErrorIs(t, err, ErrUnauthenticated)
	assert.Nil(t, resolved)
}

func TestResolve_CacheHit(t *testing.T) {
	repo := &RepoMock{}
	c := &CacheMock{}
	cached := models.ResolvedPlan{Plan: models.PlanPro, IsPro: true}
	c.On("Get", "entitlements:user@example.com", mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(1).(*models.ResolvedPlan) = cached
		}).
		Return(true, nil).Once()

	svc := newService(repo, c)
	resolved, err := svc.Resolve(context.Background(), "user@example.com", models.DebugOverride{})
	require.NoError(t, err)
	assert.Equal(t, &cached, resolved)

	repo.AssertNotCalled(t, "GetSubscription", mock.Anything, mock.Anything)
	c.AssertExpectations(t)
}

func TestResolve_CacheMissResolvesAndCaches(t *testing.T) {
	repo := &RepoMock{}
	c := &CacheMock{}
	trialEnd := time.Now().UTC().AddDate(0, 0, 3)

	c.On("Get", "entitlements:user@example.com", mock.Anything).Return(false, nil).Once()
	repo.On("GetSubscription", mock.Anything, "user@example.com").Return(nil, nil).Once()
	repo.On("ListTrials", mock.Anything, "user@example.com").Return([]models.TrialRecord{{
		ID:        "trial-1",
		UserEmail: "user@example.com",
		TrialPlan: models.PlanPremium,
		TrialEnd:  trialEnd,
		IsActive:  true,
	}}, nil).Once()
	repo.On("ListSpecialAccounts", mock.Anything, "user@example.com").
		Return([]models.SpecialAccountRecord(nil), nil).Once()
	c.On("Set", "entitlements:user@example.com", mock.Anything, 30*time.Second).Return(nil).Once()

	svc := newService(repo, c)
	resolved, err := svc.Resolve(context.Background(), "user@example.com", models.DebugOverride{})
	require.NoError(t, err)
	assert.Equal(t, models.PlanPremium, resolved.Plan)
	assert.True(t, resolved.IsTrialing)
	assert.True(t, resolved.IsPremium)

	repo.AssertExpectations(t)
	c.AssertExpectations(t)
}

// TestResolve_SourceReadFailure проверяет, что сбой чтения источника
// прерывает разрешение ошибкой, а не тихо превращается в free.
func TestResolve_SourceReadFailure(t *testing.T) {
	repo := &RepoMock{}
	c := &CacheMock{}

	c.On("Get", "entitlements:user@example.com", mock.Anything).Return(false, nil).Once()
	repo.On("GetSubscription", mock.Anything, "user@example.com").Return(nil, nil)
	repo.On("ListTrials", mock.Anything, "user@example.com").
		Return(nil, errors.New("connection refused"))
	repo.On("ListSpecialAccounts", mock.Anything, "user@example.com").
		Return([]models.SpecialAccountRecord(nil), nil)

	svc := newService(repo, c)
	resolved, err := svc.Resolve(context.Background(), "user@example.com", models.DebugOverride{})
	require.Error(t, err)
	assert.Nil(t, resolved)

	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

// TestResolve_DebugOverrideBypassesCache проверяет, что результат с
// отладочным переопределением не читается из кеша и не пишется в него.
func TestResolve_DebugOverrideBypassesCache(t *testing.T) {
	repo := &RepoMock{}
	c := &CacheMock{}

	repo.On("GetSubscription", mock.Anything, "user@example.com").Return(nil, nil).Once()
	repo.On("ListTrials", mock.Anything, "user@example.com").
		Return([]models.TrialRecord(nil), nil).Once()
	repo.On("ListSpecialAccounts", mock.Anything, "user@example.com").
		Return([]models.SpecialAccountRecord(nil), nil).Once()

	svc := newService(repo, c)
	debug := models.DebugOverride{Enabled: true, Tier: models.PlanFamily}
	resolved, err := svc.Resolve(context.Background(), "user@example.com", debug)
	require.NoError(t, err)
	assert.Equal(t, models.PlanFamily, resolved.Plan)
	assert.True(t, resolved.IsDebugMode)

	c.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	c.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvalidate(t *testing.T) {
	c := &CacheMock{}
	c.On("Invalidate", "entitlements:user@example.com").Return(nil).Once()

	svc := newService(&RepoMock{}, c)
	require.NoError(t, svc.Invalidate("user@example.com"))
	c.AssertExpectations(t)
}
