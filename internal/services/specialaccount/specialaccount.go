// Package specialaccount содержит бизнес-логику администрирования специальных
// аккаунтов и прямой корректировки тарифа подписки.
//
// Все операции пакета доступны только администраторам: маршруты закрыты
// admin-middleware, сервис этому доверяет. Пересечение нескольких активных
// специальных аккаунтов одной идентичности не запрещается — резолвер берёт
// первую действующую запись в порядке хранилища.
package specialaccount

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/linkhoard/entitlements-service/internal/cache"
	"github.com/linkhoard/entitlements-service/internal/lib/sl"
	"github.com/linkhoard/entitlements-service/internal/models"
	"github.com/linkhoard/entitlements-service/internal/rabbitmq"
)

// ErrSpecialAccountNotFound — специальный аккаунт с данным id не существует.
var ErrSpecialAccountNotFound = errors.New("special account not found")

// SpecialAccountRepository определяет методы для работы со специальными
// аккаунтами в хранилище.
type SpecialAccountRepository interface {
	CreateSpecialAccount(ctx context.Context, account models.SpecialAccountRecord) error
	ListAllSpecialAccounts(ctx context.Context, limit, offset int) ([]models.SpecialAccountRecord, error)
	GetSpecialAccount(ctx context.Context, id string) (*models.SpecialAccountRecord, error)
	UpdateSpecialAccount(ctx context.Context, account models.SpecialAccountRecord) (int, error)
}

// SubscriptionWriter записывает тариф и статус базовой подписки.
type SubscriptionWriter interface {
	UpsertSubscription(ctx context.Context, email string, plan models.Plan, status models.SubscriptionStatus) error
}

// Invalidator сбрасывает кешированные значения по ключу.
type Invalidator interface {
	Invalidate(key string) error
}

// Notifier публикует приветственное уведомление.
type Notifier interface {
	PublishWelcome(msg rabbitmq.WelcomeMessage) error
}

// SpecialAccountService реализует админ-операции над специальными аккаунтами.
type SpecialAccountService struct {
	repo          SpecialAccountRepository
	subscriptions SubscriptionWriter
	cache         Invalidator
	notifier      Notifier
	log           *slog.Logger
	now           func() time.Time
}

// NewSpecialAccountService создает новый экземпляр SpecialAccountService.
func NewSpecialAccountService(repo SpecialAccountRepository, subscriptions SubscriptionWriter,
	c Invalidator, notifier Notifier, log *slog.Logger) *SpecialAccountService {
	return &SpecialAccountService{
		repo:          repo,
		subscriptions: subscriptions,
		cache:         c,
		notifier:      notifier,
		log:           log,
		now:           time.Now,
	}
}

// Create выдает специальный аккаунт: запись создаётся активной, срок действия
// опционален. Запись необратима по умолчанию — снять её можно только явной
// админ-операцией Deactivate.
func (s *SpecialAccountService) Create(ctx context.Context, email string, tier models.Plan,
	accountType models.AccountType, expiration *time.Time, notes string) (*models.SpecialAccountRecord, error) {
	const op = "services.specialaccount.Create"

	account := models.SpecialAccountRecord{
		ID:             uuid.NewString(),
		Email:          email,
		Tier:           tier,
		AccountType:    accountType,
		IsActive:       true,
		ExpirationDate: expiration,
		Notes:          notes,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.CreateSpecialAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created special account",
		slog.String("email", email),
		slog.String("tier", string(tier)),
		slog.String("account_type", string(accountType)))

	if err := s.cache.Invalidate(cache.ResolutionKey(email)); err != nil {
		s.log.Warn("failed to invalidate resolution cache", sl.Err(err))
	}
	if err := s.notifier.PublishWelcome(rabbitmq.WelcomeMessage{
		Email:       email,
		Tier:        string(tier),
		AccountType: string(accountType),
		GrantedAt:   account.CreatedAt,
	}); err != nil {
		s.log.Warn("failed to publish welcome notification", sl.Err(err))
	}

	return &account, nil
}

// List возвращает специальные аккаунты с пагинацией.
func (s *SpecialAccountService) List(ctx context.Context, limit, offset int) ([]models.SpecialAccountRecord, error) {
	return s.repo.ListAllSpecialAccounts(ctx, limit, offset)
}

// Update изменяет тариф, срок действия, активность или заметки специального
// аккаунта и сбрасывает кеш разрешения его идентичности.
func (s *SpecialAccountService) Update(ctx context.Context, id string, tier models.Plan,
	isActive bool, expiration *time.Time, notes string) (*models.SpecialAccountRecord, error) {
	const op = "services.specialaccount.Update"

	account, err := s.repo.GetSpecialAccount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if account == nil {
		return nil, ErrSpecialAccountNotFound
	}

	account.Tier = tier
	account.IsActive = isActive
	account.ExpirationDate = expiration
	account.Notes = notes
	count, err := s.repo.UpdateSpecialAccount(ctx, *account)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return nil, ErrSpecialAccountNotFound
	}
	s.log.Info("updated special account", slog.String("id", id), slog.Bool("is_active", isActive))

	if err := s.cache.Invalidate(cache.ResolutionKey(account.Email)); err != nil {
		s.log.Warn("failed to invalidate resolution cache", sl.Err(err))
	}
	return account, nil
}

// AdjustTier напрямую записывает тариф базовой подписки пользователя со
// статусом active. Причина корректировки фиксируется в логе.
func (s *SpecialAccountService) AdjustTier(ctx context.Context, email string, newTier models.Plan, reason string) error {
	const op = "services.specialaccount.AdjustTier"

	if err := s.subscriptions.UpsertSubscription(ctx, email, newTier, models.StatusActive); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("adjusted subscription tier",
		slog.String("email", email),
		slog.String("new_tier", string(newTier)),
		slog.String("reason", reason))

	if err := s.cache.Invalidate(cache.ResolutionKey(email)); err != nil {
		s.log.Warn("failed to invalidate resolution cache", sl.Err(err))
	}
	return nil
}
