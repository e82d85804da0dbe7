package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/models"
)

// TransactionStore: хранилище транзакций, которым пользуются сценарии.
//
//go:generate mockgen -destination=mocks/mock_stores.go -package=mocks -source=interface.go
type TransactionStore interface {
	ListRecent(ctx context.Context, userID uuid.UUID, limit int, since *time.Time) ([]finance.RawTransaction, error)
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]finance.RawTransaction, error)
	CreateBatch(ctx context.Context, userID uuid.UUID, inputs []models.TransactionInput) ([]finance.RawTransaction, error)
}

type RewardStore interface {
	Create(ctx context.Context, reward models.Reward) (models.Reward, error)
	CreateBatch(ctx context.Context, rewards []models.Reward) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Reward, error)
	TotalPoints(ctx context.Context, userID uuid.UUID) (int, error)
	ExistsSince(ctx context.Context, userID uuid.UUID, prefix string, from, to time.Time) (bool, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
}
