package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/models"
)

const (
	DefaultInsightsWindow = 28
	MaxInsightsWindow     = 365

	timeframeLookbackDays = 365
)

type RewardSummary struct {
	ID          uuid.UUID `json:"id"`
	Points      int       `json:"points"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Profile struct {
	ID          uuid.UUID       `json:"id"`
	Username    string          `json:"username"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	AvatarURL   string          `json:"avatarUrl,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	SavingsGoal decimal.Decimal `json:"savingsGoal"`
	Coins       int             `json:"coins"`
	Rewards     []RewardSummary `json:"rewards"`
}

type Dashboard struct {
	Profile      Profile                   `json:"profile"`
	Insights     finance.DashboardInsights `json:"insights"`
	Transactions []finance.Transaction     `json:"transactions"`
}

type SpendingHealthReport struct {
	TotalBalance decimal.Decimal          `json:"totalBalance"`
	Timeframes   finance.TimeframeSummary `json:"timeframes"`
	Results      []finance.SpendingResult `json:"results"`
}

// Snapshot: профиль и последние транзакции пользователя.
type Snapshot struct {
	Profile      Profile
	Transactions []finance.Transaction
}

// Snapshot параллельно загружает пользователя, награды, монеты и транзакции.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	var (
		user    models.User
		rewards []models.Reward
		coins   int
		records []finance.RawTransaction
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		user, err = s.users.GetByID(groupCtx, userID)
		if err != nil {
			return fmt.Errorf("load user: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		rewards, err = s.rewards.ListRecent(groupCtx, userID, s.cfg.DashboardRewardLimit)
		if err != nil {
			return fmt.Errorf("load rewards: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		coins, err = s.rewards.TotalPoints(groupCtx, userID)
		if err != nil {
			return fmt.Errorf("load coins: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		records, err = s.transactions.ListRecent(groupCtx, userID, s.cfg.DashboardTransactionLimit, nil)
		if err != nil {
			return fmt.Errorf("load transactions: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Profile:      buildProfile(user, coins, rewards),
		Transactions: s.Enrich(userID, records),
	}, nil
}

// Dashboard собирает профиль, аналитику и последние транзакции.
func (s *Service) Dashboard(ctx context.Context, userID uuid.UUID) (Dashboard, error) {
	snapshot, err := s.Snapshot(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		Profile:      snapshot.Profile,
		Insights:     finance.DeriveInsights(snapshot.Transactions, s.Now()),
		Transactions: snapshot.Transactions,
	}, nil
}

// ClampWindow приводит окно аналитики к диапазону [1, 365] дней.
func ClampWindow(days int) int {
	return min(max(days, 1), MaxInsightsWindow)
}

// Insights строит аналитику по транзакциям за последние windowDays дней.
func (s *Service) Insights(ctx context.Context, userID uuid.UUID, windowDays int) (finance.DashboardInsights, error) {
	now := s.Now()
	since := now.Add(-time.Duration(ClampWindow(windowDays)) * finance.DayDuration)

	records, err := s.transactions.ListSince(ctx, userID, since)
	if err != nil {
		return finance.DashboardInsights{}, fmt.Errorf("load transactions: %w", err)
	}

	return finance.DeriveInsights(s.Enrich(userID, records), now), nil
}

// Timeframes возвращает итоги за неделю, месяц и год.
func (s *Service) Timeframes(ctx context.Context, userID uuid.UUID) (finance.TimeframeSummary, error) {
	summary, _, err := s.timeframes(ctx, userID)
	return summary, err
}

// SpendingHealth оценивает расходы за один период.
func (s *Service) SpendingHealth(ctx context.Context, userID uuid.UUID, period finance.Timeframe) (finance.SpendingResult, error) {
	summary, balance, err := s.timeframes(ctx, userID)
	if err != nil {
		return finance.SpendingResult{}, err
	}

	return finance.AnalyzeTimeframe(summary.For(period), balance.InexactFloat64(), period), nil
}

// SpendingHealthAll оценивает расходы за все периоды.
func (s *Service) SpendingHealthAll(ctx context.Context, userID uuid.UUID) (SpendingHealthReport, error) {
	summary, balance, err := s.timeframes(ctx, userID)
	if err != nil {
		return SpendingHealthReport{}, err
	}

	results := make([]finance.SpendingResult, 0, len(finance.Timeframes))
	for _, period := range finance.Timeframes {
		results = append(results, finance.AnalyzeTimeframe(summary.For(period), balance.InexactFloat64(), period))
	}

	return SpendingHealthReport{
		TotalBalance: balance,
		Timeframes:   summary,
		Results:      results,
	}, nil
}

func (s *Service) timeframes(ctx context.Context, userID uuid.UUID) (finance.TimeframeSummary, decimal.Decimal, error) {
	now := s.Now()
	since := now.Add(-timeframeLookbackDays * finance.DayDuration)

	records, err := s.transactions.ListSince(ctx, userID, since)
	if err != nil {
		return finance.TimeframeSummary{}, decimal.Zero, fmt.Errorf("load transactions: %w", err)
	}

	transactions := s.Enrich(userID, records)
	return finance.SummarizeTimeframes(transactions, now), finance.NetBalance(transactions), nil
}

func buildProfile(user models.User, coins int, rewards []models.Reward) Profile {
	profile := Profile{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Balance:     user.Balance,
		SavingsGoal: user.SavingsGoal,
		Coins:       coins,
		Rewards:     make([]RewardSummary, 0, len(rewards)),
	}
	if user.Name != nil {
		profile.Name = *user.Name
	}
	if user.AvatarURL != nil {
		profile.AvatarURL = *user.AvatarURL
	}

	for _, reward := range rewards {
		profile.Rewards = append(profile.Rewards, RewardSummary{
			ID:          reward.ID,
			Points:      reward.Points,
			Description: reward.Description,
			CreatedAt:   reward.CreatedAt.UTC(),
		})
	}

	return profile
}
