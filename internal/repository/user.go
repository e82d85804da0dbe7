package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finospark/backend/internal/models"
)

const userColumns = `id, username, email, password_hash, name, avatar_url, balance, savings_goal, created_at, updated_at`

type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository создает репозиторий пользователей.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// Create создает пользователя в базе.
func (r *UserRepository) Create(ctx context.Context, input models.NewUser) (models.User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, name, avatar_url, balance, savings_goal)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+userColumns,
		input.Username, input.Email, input.PasswordHash, input.Name, input.AvatarURL, input.Balance, input.SavingsGoal,
	)

	user, err := scanUser(row)
	if err != nil {
		return user, fmt.Errorf("create user: %w", mapError(err))
	}
	return user, nil
}

// Exists проверяет, заняты ли имя пользователя или email.
func (r *UserRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower($1) OR lower(email) = lower($2))`,
		username, email,
	).Scan(&exists)
	return exists, err
}

// GetByIdentifier ищет пользователя по email или имени пользователя.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE lower(email) = lower($1) OR lower(username) = lower($1)
		 LIMIT 1`,
		identifier,
	)
	return userOrNotFound(scanUser(row))
}

// GetByID возвращает пользователя по идентификатору.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+`
		 FROM users
		 WHERE id = $1`,
		id,
	)
	return userOrNotFound(scanUser(row))
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.AvatarURL,
		&user.Balance,
		&user.SavingsGoal,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func userOrNotFound(user models.User, err error) (models.User, error) {
	if err != nil {
		return user, mapError(err)
	}
	return user, nil
}
