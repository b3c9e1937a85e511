package trial

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/linkhoard/entitlements-service/internal/config"
	"github.com/linkhoard/entitlements-service/internal/models"
	"github.com/linkhoard/entitlements-service/internal/rabbitmq"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CountTrials(ctx context.Context, email string, plan models.Plan) (int, error) {
	args := m.Called(ctx, email, plan)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) CreateTrial(ctx context.Context, trial models.TrialRecord) error {
	return m.Called(ctx, trial).Error(0)
}

type InvalidatorMock struct{ mock.Mock }

func (m *InvalidatorMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) PublishTrialStarted(msg rabbitmq.TrialStartedMessage) error {
	return m.Called(msg).Error(0)
}

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

var windows = config.TrialWindows{PremiumDays: 7, FamilyDays: 14}

func TestStart_Success(t *testing.T) {
	repo := &RepoMock{}
	inv := &InvalidatorMock{}
	notifier := &NotifierMock{}

	repo.On("CountTrials", mock.Anything, "user@example.com", models.PlanPremium).Return(0, nil).Once()
	repo.On("CreateTrial", mock.Anything, mock.Anything).Return(nil).Once()
	inv.On("Invalidate", "entitlements:user@example.com").Return(nil).Once()
	notifier.On("PublishTrialStarted", mock.Anything).Return(nil).Once()

	svc := NewTrialService(repo, inv, notifier, windows, NewNoopLogger())
	start := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }

	trial, err := svc.Start(context.Background(), "user@example.com", models.PlanPremium)
	require.NoError(t, err)
	assert.NotEmpty(t, trial.ID)
	assert.Equal(t, "user@example.com", trial.UserEmail)
	assert.Equal(t, models.PlanPremium, trial.TrialPlan)
	assert.Equal(t, start, trial.TrialStart)
	assert.Equal(t, start.AddDate(0, 0, 7), trial.TrialEnd)
	assert.True(t, trial.IsActive)
	assert.False(t, trial.Converted)

	repo.AssertExpectations(t)
	inv.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestStart_FamilyWindow(t *testing.T) {
	repo := &RepoMock{}
	inv := &InvalidatorMock{}
	notifier := &NotifierMock{}

	repo.On("CountTrials", mock.Anything, "user@example.com", models.PlanFamily).Return(0, nil).Once()
	repo.On("CreateTrial", mock.Anything, mock.Anything).Return(nil).Once()
	inv.On("Invalidate", mock.Anything).Return(nil)
	notifier.On("PublishTrialStarted", mock.Anything).Return(nil)

	svc := NewTrialService(repo, inv, notifier, windows, NewNoopLogger())
	trial, err := svc.Start(context.Background(), "user@example.com", models.PlanFamily)
	require.NoError(t, err)
	assert.Equal(t, trial.TrialStart.AddDate(0, 0, 14), trial.TrialEnd)
}

// TestStart_AlreadyUsed проверяет идемпотентность по существованию записи:
// истекший пробный период так же блокирует повторный запуск.
func TestStart_AlreadyUsed(t *testing.T) {
	repo := &RepoMock{}
	repo.On("CountTrials", mock.Anything, "user@example.com", models.PlanPremium).Return(1, nil).Once()

	svc := NewTrialService(repo, &InvalidatorMock{}, &NotifierMock{}, windows, NewNoopLogger())
	trial, err := svc.Start(context.Background(), "user@example.com", models.PlanPremium)
	require.ErrorIs(t, err, ErrTrialAlreadyUsed)
	assert.Nil(t, trial)

	repo.AssertNotCalled(t, "CreateTrial", mock.Anything, mock.Anything)
}

func TestStart_PlanNotTrialable(t *testing.T) {
	svc := NewTrialService(&RepoMock{}, &InvalidatorMock{}, &NotifierMock{}, windows, NewNoopLogger())

	for _, plan := range []models.Plan{models.PlanFree, models.PlanPro} {
		trial, err := svc.Start(context.Background(), "user@example.com", plan)
		require.ErrorIs(t, err, ErrPlanNotTrialable)
		assert.Nil(t, trial)
	}
}

func TestStart_RepositoryError(t *testing.T) {
	repo := &RepoMock{}
	repo.On("CountTrials", mock.Anything, "user@example.com", models.PlanPremium).
		Return(0, errors.New("connection refused")).Once()

	svc := NewTrialService(repo, &InvalidatorMock{}, &NotifierMock{}, windows, NewNoopLogger())
	trial, err := svc.Start(context.Background(), "user@example.com", models.PlanPremium)
	require.Error(t, err)
	assert.Nil(t, trial)
}

// TestStart_NotificationFailureIsNotFatal проверяет, что сбой публикации
// уведомления не откатывает уже созданный пробный период.
func TestStart_NotificationFailureIsNotFatal(t *testing.T) {
	repo := &RepoMock{}
	inv := &InvalidatorMock{}
	notifier := &NotifierMock{}

	repo.On("CountTrials", mock.Anything, "user@example.com", models.PlanPremium).Return(0, nil).Once()
	repo.On("CreateTrial", mock.Anything, mock.Anything).Return(nil).Once()
	inv.On("Invalidate", mock.Anything).Return(nil)
	notifier.On("PublishTrialStarted", mock.Anything).Return(errors.New("channel closed"))

	svc := NewTrialService(repo, inv, notifier, windows, NewNoopLogger())
	trial, err := svc.Start(context.Background(), "user@example.com", models.PlanPremium)
	require.NoError(t, err)
	assert.NotNil(t, trial)
}
