package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/models"
)

const (
	CheckInPoints       = 10
	WeeklySavingsPoints = 20

	checkInDescription  = "Daily check-in"
	weeklySavingsPrefix = "Weekly savings"
)

// RewardOutcome: результат попытки получить награду.
type RewardOutcome struct {
	Success      bool             `json:"success"`
	Message      string           `json:"message"`
	CoinsAwarded int              `json:"coinsAwarded,omitempty"`
	Coins        int              `json:"coins"`
	Savings      *decimal.Decimal `json:"savings,omitempty"`
}

// Coins возвращает баланс монет пользователя.
func (s *Service) Coins(ctx context.Context, userID uuid.UUID) (int, error) {
	coins, err := s.rewards.TotalPoints(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load coins: %w", err)
	}
	return coins, nil
}

// CheckIn начисляет монеты за ежедневный вход, не чаще раза в сутки по UTC.
func (s *Service) CheckIn(ctx context.Context, userID uuid.UUID) (RewardOutcome, error) {
	now := s.Now()
	dayStart := startOfDay(now)

	done, err := s.rewards.ExistsSince(ctx, userID, checkInDescription, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return RewardOutcome{}, fmt.Errorf("check daily reward: %w", err)
	}
	if done {
		return s.declined(ctx, userID, "You've already checked in today!")
	}

	if err := s.award(ctx, userID, CheckInPoints, checkInDescription, now); err != nil {
		return RewardOutcome{}, err
	}

	coins, err := s.Coins(ctx, userID)
	if err != nil {
		return RewardOutcome{}, err
	}

	return RewardOutcome{
		Success:      true,
		Message:      fmt.Sprintf("Daily check-in completed! +%d coins", CheckInPoints),
		CoinsAwarded: CheckInPoints,
		Coins:        coins,
	}, nil
}

// WeeklySavings начисляет монеты, если с начала недели поступления превысили расходы.
func (s *Service) WeeklySavings(ctx context.Context, userID uuid.UUID) (RewardOutcome, error) {
	now := s.Now()
	weekStart := startOfWeek(now)

	done, err := s.rewards.ExistsSince(ctx, userID, weeklySavingsPrefix, weekStart, time.Time{})
	if err != nil {
		return RewardOutcome{}, fmt.Errorf("check weekly reward: %w", err)
	}
	if done {
		return s.declined(ctx, userID, "You've already received your weekly savings reward!")
	}

	records, err := s.transactions.ListSince(ctx, userID, weekStart)
	if err != nil {
		return RewardOutcome{}, fmt.Errorf("load transactions: %w", err)
	}

	savings := finance.NetBalance(s.Enrich(userID, records))
	if !savings.IsPositive() {
		return s.declined(ctx, userID, "You need to save money this week to earn this reward!")
	}

	saved := "₹" + savings.StringFixed(0)
	description := fmt.Sprintf("%s reward (%s saved)", weeklySavingsPrefix, saved)
	if err := s.award(ctx, userID, WeeklySavingsPoints, description, now); err != nil {
		return RewardOutcome{}, err
	}

	coins, err := s.Coins(ctx, userID)
	if err != nil {
		return RewardOutcome{}, err
	}

	return RewardOutcome{
		Success:      true,
		Message:      fmt.Sprintf("Weekly savings achieved! +%d coins (%s saved)", WeeklySavingsPoints, saved),
		CoinsAwarded: WeeklySavingsPoints,
		Coins:        coins,
		Savings:      &savings,
	}, nil
}

func (s *Service) award(ctx context.Context, userID uuid.UUID, points int, description string, at time.Time) error {
	_, err := s.rewards.Create(ctx, models.Reward{
		UserID:      userID,
		Points:      points,
		Description: description,
		CreatedAt:   at,
	})
	if err != nil {
		return fmt.Errorf("award %q: %w", description, err)
	}
	return nil
}

func (s *Service) declined(ctx context.Context, userID uuid.UUID, message string) (RewardOutcome, error) {
	coins, err := s.Coins(ctx, userID)
	if err != nil {
		return RewardOutcome{}, err
	}
	return RewardOutcome{Message: message, Coins: coins}, nil
}
