// Package trial содержит бизнес-логику жизненного цикла пробных периодов.
package trial

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/linkhoard/entitlements-service/internal/cache"
	"github.com/linkhoard/entitlements-service/internal/config"
	"github.com/linkhoard/entitlements-service/internal/lib/sl"
	"github.com/linkhoard/entitlements-service/internal/models"
	"github.com/linkhoard/entitlements-service/internal/rabbitmq"
)

// Ошибки старта пробного периода.
var (
	// ErrTrialAlreadyUsed — пользователь уже брал пробный период этого тарифа.
	ErrTrialAlreadyUsed = errors.New("trial already used")
	// ErrPlanNotTrialable — тариф не поддерживает пробный период.
	ErrPlanNotTrialable = errors.New("plan does not support trials")
)

// TrialRepository определяет методы для работы с пробными периодами в хранилище.
type TrialRepository interface {
	// CountTrials считает все записи пары (пользователь, тариф), включая истекшие.
	CountTrials(ctx context.Context, email string, plan models.Plan) (int, error)
	// CreateTrial вставляет новую запись пробного периода.
	CreateTrial(ctx context.Context, trial models.TrialRecord) error
}

// Invalidator сбрасывает кешированные значения по ключу.
type Invalidator interface {
	Invalidate(key string) error
}

// Notifier публикует событие старта пробного периода.
type Notifier interface {
	PublishTrialStarted(msg rabbitmq.TrialStartedMessage) error
}

// TrialService реализует жизненный цикл пробного периода: создание записи
// с окном действия и идемпотентность «один пробный период на тариф».
type TrialService struct {
	repo     TrialRepository
	cache    Invalidator
	notifier Notifier
	windows  config.TrialWindows
	log      *slog.Logger
	now      func() time.Time
}

// NewTrialService создает новый экземпляр TrialService.
func NewTrialService(repo TrialRepository, c Invalidator, notifier Notifier,
	windows config.TrialWindows, log *slog.Logger) *TrialService {
	return &TrialService{
		repo:     repo,
		cache:    c,
		notifier: notifier,
		windows:  windows,
		log:      log,
		now:      time.Now,
	}
}

// Start создает пробный период для пользователя.
//
// Идемпотентность проверяется по существованию записи, а не по её
// валидности: истёкший или деактивированный пробный период так же блокирует
// повторный запуск. Проверка и запись не атомарны — одновременные запросы
// одной идентичности могут оба пройти проверку; это унаследованное
// check-then-act поведение, закрытое уровнем выше идемпотентным UX.
func (s *TrialService) Start(ctx context.Context, email string, plan models.Plan) (*models.TrialRecord, error) {
	const op = "services.trial.Start"

	days := s.windows.Window(string(plan))
	if days == 0 {
		return nil, ErrPlanNotTrialable
	}

	count, err := s.repo.CountTrials(ctx, email, plan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		return nil, ErrTrialAlreadyUsed
	}

	now := s.now().UTC()
	trial := models.TrialRecord{
		ID:         uuid.NewString(),
		UserEmail:  email,
		TrialPlan:  plan,
		TrialStart: now,
		TrialEnd:   now.AddDate(0, 0, days),
		IsActive:   true,
		Converted:  false,
	}
	if err := s.repo.CreateTrial(ctx, trial); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("started trial",
		slog.String("email", email),
		slog.String("plan", string(plan)),
		slog.Time("trial_end", trial.TrialEnd))

	if err := s.cache.Invalidate(cache.ResolutionKey(email)); err != nil {
		s.log.Warn("failed to invalidate resolution cache", sl.Err(err))
	}
	if err := s.notifier.PublishTrialStarted(rabbitmq.TrialStartedMessage{
		Email:     email,
		TrialPlan: string(plan),
		TrialEnd:  trial.TrialEnd,
	}); err != nil {
		s.log.Warn("failed to publish trial notification", sl.Err(err))
	}

	return &trial, nil
}
