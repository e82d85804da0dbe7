package service

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"example.com/finospark/backend/internal/config"
	"example.com/finospark/backend/internal/finance"
)

var ErrInvalidInput = errors.New("invalid input")

// Service объединяет сценарии дашборда, аналитики и наград поверх хранилищ.
type Service struct {
	transactions TransactionStore
	rewards      RewardStore
	users        UserStore
	cfg          config.FinanceConfig
	logger       *slog.Logger
	now          func() time.Time
}

// New создает сервис. logger может быть nil, тогда используется slog.Default().
func New(transactions TransactionStore, rewards RewardStore, users UserStore, cfg config.FinanceConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		transactions: transactions,
		rewards:      rewards,
		users:        users,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Now возвращает текущее время сервиса в UTC.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

// Enrich нормализует записи и журналирует отброшенные.
func (s *Service) Enrich(userID uuid.UUID, records []finance.RawTransaction) []finance.Transaction {
	transactions, err := finance.Enrich(records)
	if err != nil {
		s.logger.Warn("invalid transactions dropped",
			slog.String("user_id", userID.String()),
			slog.Int("dropped", len(records)-len(transactions)),
			slog.Any("error", err),
		)
	}
	return transactions
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// startOfWeek возвращает начало недели (воскресенье, 00:00 UTC).
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}
