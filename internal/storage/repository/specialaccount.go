package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linkhoard/entitlements-service/internal/models"
)

// ListSpecialAccounts возвращает все специальные аккаунты для идентичности
// в порядке создания. Фильтрацию по валидности выполняет резолвер.
func (s *Storage) ListSpecialAccounts(ctx context.Context, email string) ([]models.SpecialAccountRecord, error) {
	const op = "storage.ListSpecialAccounts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, tier, account_type, is_active, expiration_date, notes, created_at
			  FROM special_accounts
			  WHERE email = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanSpecialAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAllSpecialAccounts возвращает все специальные аккаунты с пагинацией,
// используется админ-панелью.
func (s *Storage) ListAllSpecialAccounts(ctx context.Context, limit, offset int) ([]models.SpecialAccountRecord, error) {
	const op = "storage.ListAllSpecialAccounts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, tier, account_type, is_active, expiration_date, notes, created_at
			  FROM special_accounts
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result, err := scanSpecialAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateSpecialAccount вставляет новую запись специального аккаунта.
func (s *Storage) CreateSpecialAccount(ctx context.Context, account models.SpecialAccountRecord) error {
	const op = "storage.CreateSpecialAccount"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO special_accounts (id, email, tier, account_type, is_active,
			      expiration_date, notes, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := s.DB.ExecContext(ctx, query, account.ID, account.Email, string(account.Tier),
		string(account.AccountType), account.IsActive, account.ExpirationDate,
		account.Notes, account.CreatedAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetSpecialAccount возвращает специальный аккаунт по id или nil, если его нет.
func (s *Storage) GetSpecialAccount(ctx context.Context, id string) (*models.SpecialAccountRecord, error) {
	const op = "storage.GetSpecialAccount"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, tier, account_type, is_active, expiration_date, notes, created_at
			  FROM special_accounts
			  WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var item models.SpecialAccountRecord
	var tier, accountType string
	err := row.Scan(&item.ID, &item.Email, &tier, &accountType,
		&item.IsActive, &item.ExpirationDate, &item.Notes, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	item.Tier = models.Plan(tier)
	item.AccountType = models.AccountType(accountType)
	return &item, nil
}

// UpdateSpecialAccount обновляет изменяемые поля специального аккаунта
// и возвращает количество изменённых строк.
func (s *Storage) UpdateSpecialAccount(ctx context.Context, account models.SpecialAccountRecord) (int, error) {
	const op = "storage.UpdateSpecialAccount"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE special_accounts
			  SET tier = $1, account_type = $2, is_active = $3, expiration_date = $4, notes = $5
			  WHERE id = $6`
	result, err := s.DB.ExecContext(ctx, query, string(account.Tier), string(account.AccountType),
		account.IsActive, account.ExpirationDate, account.Notes, account.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

func scanSpecialAccounts(rows *sql.Rows) ([]models.SpecialAccountRecord, error) {
	var result []models.SpecialAccountRecord
	for rows.Next() {
		var item models.SpecialAccountRecord
		var tier, accountType string
		if err := rows.Scan(&item.ID, &item.Email, &tier, &accountType,
			&item.IsActive, &item.ExpirationDate, &item.Notes, &item.CreatedAt); err != nil {
			return nil, err
		}
		item.Tier = models.Plan(tier)
		item.AccountType = models.AccountType(accountType)
		result = append(result, item)
	}
	return result, rows.Err()
}
