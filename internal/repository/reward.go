package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finospark/backend/internal/models"
)

type RewardRepository struct {
	db *pgxpool.Pool
}

// NewRewardRepository создает репозиторий наград.
func NewRewardRepository(db *pgxpool.Pool) *RewardRepository {
	return &RewardRepository{db: db}
}

// Create начисляет награду.
func (r *RewardRepository) Create(ctx context.Context, reward models.Reward) (models.Reward, error) {
	createdAt := reward.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO rewards (user_id, points, description, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, points, description, created_at`,
		reward.UserID, reward.Points, reward.Description, createdAt,
	).Scan(&reward.ID, &reward.UserID, &reward.Points, &reward.Description, &reward.CreatedAt)
	if err != nil {
		return reward, fmt.Errorf("create reward: %w", mapError(err))
	}
	return reward, nil
}

// CreateBatch начисляет несколько наград в одной транзакции.
func (r *RewardRepository) CreateBatch(ctx context.Context, rewards []models.Reward) error {
	if len(rewards) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(rewards))
	for _, reward := range rewards {
		rows = append(rows, []any{uuid.New(), reward.UserID, reward.Points, reward.Description, reward.CreatedAt})
	}

	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"rewards"},
		[]string{"id", "user_id", "points", "description", "created_at"},
		pgx.CopyFromRows(rows),
	)
	return mapError(err)
}

// ListRecent возвращает последние награды пользователя.
func (r *RewardRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Reward, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, points, description, created_at
		 FROM rewards
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rewards := make([]models.Reward, 0)
	for rows.Next() {
		var reward models.Reward
		if err := rows.Scan(&reward.ID, &reward.UserID, &reward.Points, &reward.Description, &reward.CreatedAt); err != nil {
			return nil, err
		}
		rewards = append(rewards, reward)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rewards, nil
}

// TotalPoints возвращает сумму монет пользователя.
func (r *RewardRepository) TotalPoints(ctx context.Context, userID uuid.UUID) (int, error) {
	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM rewards WHERE user_id = $1`,
		userID,
	).Scan(&total)
	return total, err
}

// ExistsSince проверяет награду с описанием, начинающимся с prefix,
// в полуинтервале [from, to). Нулевой to означает "без верхней границы".
func (r *RewardRepository) ExistsSince(ctx context.Context, userID uuid.UUID, prefix string, from, to time.Time) (bool, error) {
	var upper *time.Time
	if !to.IsZero() {
		upper = &to
	}

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM rewards
		   WHERE user_id = $1
		     AND starts_with(description, $2)
		     AND created_at >= $3
		     AND ($4::timestamptz IS NULL OR created_at < $4)
		 )`,
		userID, prefix, from, upper,
	).Scan(&exists)
	return exists, err
}
