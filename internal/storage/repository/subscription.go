package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linkhoard/entitlements-service/internal/models"
)

// GetSubscription возвращает базовую запись подписки пользователя или nil,
// если записи нет. При нескольких записях используется первая по id —
// порядок хранилища, без дополнительного тай-брейка.
func (s *Storage) GetSubscription(ctx context.Context, email string) (*models.SubscriptionRecord, error) {
	const op = "storage.GetSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_email, plan, status, updated_at
			  FROM user_subscriptions
			  WHERE user_email = $1
			  ORDER BY id
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, email)

	var result models.SubscriptionRecord
	var plan, status string
	err := row.Scan(&result.ID, &result.UserEmail, &plan, &status, &result.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.Plan = models.Plan(plan)
	result.Status = models.SubscriptionStatus(status)
	return &result, nil
}

// UpsertSubscription записывает тариф и статус подписки пользователя,
// создавая запись при её отсутствии. Используется админ-операцией AdjustTier.
func (s *Storage) UpsertSubscription(ctx context.Context, email string, plan models.Plan, status models.SubscriptionStatus) error {
	const op = "storage.UpsertSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_subscriptions (user_email, plan, status, updated_at)
			  VALUES ($1, $2, $3, now())
			  ON CONFLICT (user_email)
			  DO UPDATE SET plan = $2, status = $3, updated_at = now()`
	if _, err := s.DB.ExecContext(ctx, query, email, string(plan), string(status)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
