package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linkhoard/entitlements-service/internal/models"
)

// RegisterUser сохраняет нового пользователя и возвращает его UUID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uuid, email, password_hash, role, created_at)
			  VALUES ($1, $2, $3, $4, now())
			  RETURNING uuid`
	var uuid string
	err := s.DB.QueryRowContext(ctx, query,
		user.UUID, user.Email, user.PasswordHash, user.Role).Scan(&uuid)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uuid, nil
}

// GetUserByEmail возвращает пользователя по email или nil, если он не найден.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uuid, email, password_hash, role, created_at
			  FROM users
			  WHERE email = $1`
	row := s.DB.QueryRowContext(ctx, query, email)

	var user models.User
	err := row.Scan(&user.UUID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}
