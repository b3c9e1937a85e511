package repository

import (
	"context"
	"fmt"

	"github.com/linkhoard/entitlements-service/internal/models"
)

// ListTrials возвращает все пробные периоды пользователя в порядке создания.
// Валидность записей здесь не проверяется — это обязанность резолвера.
func (s *Storage) ListTrials(ctx context.Context, email string) ([]models.TrialRecord, error) {
	const op = "storage.ListTrials"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_email, trial_plan, trial_start, trial_end, is_active, converted
			  FROM premium_trials
			  WHERE user_email = $1
			  ORDER BY trial_start`
	rows, err := s.DB.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.TrialRecord
	for rows.Next() {
		var item models.TrialRecord
		var plan string
		if err := rows.Scan(&item.ID, &item.UserEmail, &plan, &item.TrialStart,
			&item.TrialEnd, &item.IsActive, &item.Converted); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.TrialPlan = models.Plan(plan)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountTrials возвращает число пробных периодов пользователя для тарифа,
// включая истекшие и деактивированные. Используется проверкой идемпотентности
// StartTrial: однажды использованный пробный период не выдаётся повторно.
func (s *Storage) CountTrials(ctx context.Context, email string, plan models.Plan) (int, error) {
	const op = "storage.CountTrials"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT COUNT(*) FROM premium_trials
			  WHERE user_email = $1 AND trial_plan = $2`
	var count int
	if err := s.DB.QueryRowContext(ctx, query, email, string(plan)).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// CreateTrial вставляет новую запись пробного периода.
func (s *Storage) CreateTrial(ctx context.Context, trial models.TrialRecord) error {
	const op = "storage.CreateTrial"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO premium_trials (id, user_email, trial_plan, trial_start,
			      trial_end, is_active, converted)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := s.DB.ExecContext(ctx, query, trial.ID, trial.UserEmail, string(trial.TrialPlan),
		trial.TrialStart, trial.TrialEnd, trial.IsActive, trial.Converted); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
