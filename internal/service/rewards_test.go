package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/models"
)

var (
	referenceDay  = time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	referenceWeek = time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
)

// TestCheckInAwardsCoins проверяет начисление за первый вход за день.
func TestCheckInAwardsCoins(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	gomock.InOrder(
		f.rewards.EXPECT().ExistsSince(gomock.Any(), userID, "Daily check-in", referenceDay, referenceDay.AddDate(0, 0, 1)).Return(false, nil),
		f.rewards.EXPECT().Create(gomock.Any(), models.Reward{
			UserID:      userID,
			Points:      10,
			Description: "Daily check-in",
			CreatedAt:   referenceNow,
		}).Return(models.Reward{}, nil),
		f.rewards.EXPECT().TotalPoints(gomock.Any(), userID).Return(770, nil),
	)

	outcome, err := f.service.CheckIn(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, 10, outcome.CoinsAwarded)
	assert.Equal(t, 770, outcome.Coins)
	assert.Equal(t, "Daily check-in completed! +10 coins", outcome.Message)
}

// TestCheckInOncePerDay проверяет повторный вход в тот же день.
func TestCheckInOncePerDay(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	f.rewards.EXPECT().ExistsSince(gomock.Any(), userID, "Daily check-in", referenceDay, gomock.Any()).Return(true, nil)
	f.rewards.EXPECT().TotalPoints(gomock.Any(), userID).Return(770, nil)

	outcome, err := f.service.CheckIn(context.Background(), userID)
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Zero(t, outcome.CoinsAwarded)
	assert.Equal(t, 770, outcome.Coins)
	assert.Equal(t, "You've already checked in today!", outcome.Message)
}

// TestWeeklySavingsAwardsCoins проверяет награду за положительные сбережения.
func TestWeeklySavingsAwardsCoins(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	f.rewards.EXPECT().ExistsSince(gomock.Any(), userID, "Weekly savings", referenceWeek, time.Time{}).Return(false, nil)
	f.transactions.EXPECT().ListSince(gomock.Any(), userID, referenceWeek).Return([]finance.RawTransaction{
		raw("t1", "1650", "credit", "Salary", 3*finance.DayDuration),
		raw("t2", "1149.6", "debit", "Travel", finance.DayDuration),
	}, nil)
	f.rewards.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, reward models.Reward) (models.Reward, error) {
			assert.Equal(t, 20, reward.Points)
			assert.Equal(t, "Weekly savings reward (₹500 saved)", reward.Description)
			return reward, nil
		})
	f.rewards.EXPECT().TotalPoints(gomock.Any(), userID).Return(40, nil)

	outcome, err := f.service.WeeklySavings(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, 20, outcome.CoinsAwarded)
	assert.Equal(t, "Weekly savings achieved! +20 coins (₹500 saved)", outcome.Message)
	require.NotNil(t, outcome.Savings)
	assert.True(t, decimal.RequireFromString("500.4").Equal(*outcome.Savings))
}

// TestWeeklySavingsRequiresSavings проверяет отказ без сбережений.
func TestWeeklySavingsRequiresSavings(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	f.rewards.EXPECT().ExistsSince(gomock.Any(), userID, "Weekly savings", referenceWeek, time.Time{}).Return(false, nil)
	f.transactions.EXPECT().ListSince(gomock.Any(), userID, referenceWeek).Return([]finance.RawTransaction{
		raw("t1", "100", "credit", "Refund", finance.DayDuration),
		raw("t2", "100", "debit", "Dining", finance.DayDuration),
	}, nil)
	f.rewards.EXPECT().TotalPoints(gomock.Any(), userID).Return(20, nil)

	outcome, err := f.service.WeeklySavings(context.Background(), userID)
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Equal(t, "You need to save money this week to earn this reward!", outcome.Message)
	assert.Nil(t, outcome.Savings)
}

// TestWeeklySavingsOncePerWeek проверяет повторную попытку за неделю.
func TestWeeklySavingsOncePerWeek(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	f.rewards.EXPECT().ExistsSince(gomock.Any(), userID, "Weekly savings", referenceWeek, time.Time{}).Return(true, nil)
	f.rewards.EXPECT().TotalPoints(gomock.Any(), userID).Return(20, nil)

	outcome, err := f.service.WeeklySavings(context.Background(), userID)
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Equal(t, "You've already received your weekly savings reward!", outcome.Message)
}
