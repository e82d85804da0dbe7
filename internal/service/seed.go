package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/models"
)

// Стартовые значения профиля нового пользователя.
var (
	SeedBalance     = decimal.RequireFromString("8240.55")
	SeedSavingsGoal = decimal.NewFromInt(12000)
)

type seedTransaction struct {
	amount      string
	txnType     finance.TransactionType
	category    string
	description string
	ago         time.Duration
}

var seedTransactions = []seedTransaction{
	{"56.3", finance.TransactionTypeDebit, "Dining", "Night market sushi", 0},
	{"120.75", finance.TransactionTypeDebit, "Groceries", "Whole Foods weekly restock", 2 * time.Hour},
	{"420.5", finance.TransactionTypeDebit, "Investments", "Recurring ETF buy", 2 * finance.DayDuration},
	{"1650", finance.TransactionTypeCredit, "Salary", "Finospark payroll", 3 * finance.DayDuration},
	{"89.99", finance.TransactionTypeDebit, "Fitness", "Studio pilates", 5 * finance.DayDuration},
	{"240.4", finance.TransactionTypeDebit, "Travel", "Weekend getaway", 6 * finance.DayDuration},
}

var seedRewards = []struct {
	points      int
	description string
	ago         time.Duration
}{
	{540, "Cashback from eco-spend", 0},
	{220, "Streak bonus", 3 * finance.DayDuration},
}

// Seed заполняет аккаунт нового пользователя демонстрационными транзакциями и наградами.
func (s *Service) Seed(ctx context.Context, userID uuid.UUID) error {
	now := s.Now()

	rewards := make([]models.Reward, 0, len(seedRewards))
	for _, reward := range seedRewards {
		rewards = append(rewards, models.Reward{
			UserID:      userID,
			Points:      reward.points,
			Description: reward.description,
			CreatedAt:   now.Add(-reward.ago),
		})
	}
	if err := s.rewards.CreateBatch(ctx, rewards); err != nil {
		return fmt.Errorf("seed rewards: %w", err)
	}

	if _, err := s.transactions.CreateBatch(ctx, userID, seedInputs(now)); err != nil {
		return fmt.Errorf("seed transactions: %w", err)
	}

	s.logger.Info("user seeded",
		slog.String("user_id", userID.String()),
		slog.Int("transactions", len(seedTransactions)),
		slog.Int("rewards", len(rewards)),
	)
	return nil
}

func seedInputs(now time.Time) []models.TransactionInput {
	inputs := make([]models.TransactionInput, 0, len(seedTransactions))
	for _, txn := range seedTransactions {
		inputs = append(inputs, models.TransactionInput{
			Amount:      decimal.RequireFromString(txn.amount),
			Type:        string(txn.txnType),
			Category:    txn.category,
			Description: txn.description,
			OccurredAt:  now.Add(-txn.ago),
			Source:      string(finance.SourceSystem),
		})
	}
	return inputs
}
