// Package resolution содержит бизнес-логику разрешения эффективного плана:
// конкурентное чтение источников, вызов чистого резолвера и короткоживущий
// кеш результатов.
package resolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linkhoard/entitlements-service/internal/cache"
	"github.com/linkhoard/entitlements-service/internal/entitlements"
	"github.com/linkhoard/entitlements-service/internal/lib/sl"
	"github.com/linkhoard/entitlements-service/internal/metrics"
	"github.com/linkhoard/entitlements-service/internal/models"
)

// ErrUnauthenticated возвращается при попытке разрешить план без идентичности.
// Резолвер в этом случае не запускается: неуверенность никогда не трактуется
// как какой-либо тариф.
var ErrUnauthenticated = errors.New("unauthenticated")

// PlanSourceRepository определяет чтение трёх персистентных источников плана.
// Отсутствие записей — успешный результат; ошибка означает сбой чтения и
// никогда не интерпретируется как «записей нет».
type PlanSourceRepository interface {
	// GetSubscription возвращает базовую запись подписки или nil.
	GetSubscription(ctx context.Context, email string) (*models.SubscriptionRecord, error)
	// ListTrials возвращает все пробные периоды идентичности.
	ListTrials(ctx context.Context, email string) ([]models.TrialRecord, error)
	// ListSpecialAccounts возвращает все специальные аккаунты идентичности.
	ListSpecialAccounts(ctx context.Context, email string) ([]models.SpecialAccountRecord, error)
}

// Cache описывает методы для кэширования разрешённых планов.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// ResolutionService отвечает за вычисление разрешённого плана идентичности.
type ResolutionService struct {
	repo    PlanSourceRepository
	cache   Cache
	metrics *metrics.ResolutionMetrics
	log     *slog.Logger
	ttl     time.Duration
	now     func() time.Time
}

// NewResolutionService создает новый экземпляр ResolutionService.
func NewResolutionService(repo PlanSourceRepository, c Cache, m *metrics.ResolutionMetrics,
	log *slog.Logger, ttl time.Duration) *ResolutionService {
	return &ResolutionService{
		repo:    repo,
		cache:   c,
		metrics: m,
		log:     log,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Resolve вычисляет разрешённый план для идентичности. Отладочное
// переопределение приходит явным аргументом от middleware и действует только
// на текущий запрос: такие результаты не кешируются.
//
// Три чтения источников выполняются конкурентно, резолвер запускается только
// после завершения всех трёх — частичная комбинация дала бы переходно
// некорректный результат. Сбой любого чтения прерывает разрешение ошибкой,
// а не тихим даунгрейдом до free.
func (s *ResolutionService) Resolve(ctx context.Context, email string, debug models.DebugOverride) (*models.ResolvedPlan, error) {
	const op = "services.resolution.Resolve"
	if email == "" {
		return nil, ErrUnauthenticated
	}

	cacheKey := cache.ResolutionKey(email)
	if !debug.Enabled {
		var cached models.ResolvedPlan
		found, err := s.cache.Get(cacheKey, &cached)
		if err != nil {
			s.log.Warn("failed to read resolution cache", slog.String("key", cacheKey), sl.Err(err))
		}
		if found {
			s.metrics.CacheHits.Inc()
			return &cached, nil
		}
		s.metrics.CacheMisses.Inc()
	}

	var src entitlements.Sources
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sub, err := s.repo.GetSubscription(gctx, email)
		if err != nil {
			return fmt.Errorf("subscription read: %w", err)
		}
		src.Subscription = sub
		return nil
	})
	g.Go(func() error {
		trials, err := s.repo.ListTrials(gctx, email)
		if err != nil {
			return fmt.Errorf("trials read: %w", err)
		}
		src.Trials = trials
		return nil
	})
	g.Go(func() error {
		accounts, err := s.repo.ListSpecialAccounts(gctx, email)
		if err != nil {
			return fmt.Errorf("special accounts read: %w", err)
		}
		src.SpecialAccounts = accounts
		return nil
	})
	if err := g.Wait(); err != nil {
		s.metrics.ResolutionErrors.Inc()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	src.Debug = debug

	resolved := entitlements.Resolve(src, s.now().UTC())
	s.metrics.Resolutions.WithLabelValues(string(resolved.Plan)).Inc()

	if !debug.Enabled {
		if err := s.cache.Set(cacheKey, resolved, s.ttl); err != nil {
			s.log.Warn("failed to cache resolution", slog.String("key", cacheKey), sl.Err(err))
		}
	}
	return &resolved, nil
}

// Invalidate сбрасывает кешированный результат идентичности. Вызывается
// каждой мутацией источников плана.
func (s *ResolutionService) Invalidate(email string) error {
	return s.cache.Invalidate(cache.ResolutionKey(email))
}
