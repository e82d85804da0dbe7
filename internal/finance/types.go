package finance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayDuration: длина суток, в которой меряются все окна агрегации.
const DayDuration = 24 * time.Hour

type TransactionType string

type Source string

type Timeframe string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"

	SourceSystem Source = "system"
	SourceManual Source = "manual"
	SourceAI     Source = "ai"

	TimeframeWeek  Timeframe = "week"
	TimeframeMonth Timeframe = "month"
	TimeframeYear  Timeframe = "year"
)

// Timeframes перечисляет периоды в порядке отображения.
var Timeframes = []Timeframe{TimeframeWeek, TimeframeMonth, TimeframeYear}

// Transaction: каноническая транзакция после нормализации.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
	Label       string          `json:"label,omitempty"`
	Note        string          `json:"note,omitempty"`
	Source      Source          `json:"source,omitempty"`
	Timeframe   Timeframe       `json:"timeframe,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// RawTransaction: запись из хранилища до нормализации.
// Amount, Timestamp и Tags приходят в произвольном виде.
type RawTransaction struct {
	ID          string
	Amount      any
	Type        string
	Category    string
	Description *string
	Timestamp   any
	Label       *string
	Note        *string
	Source      *string
	Timeframe   *string
	Tags        any
}

type InsightsTotals struct {
	Day             decimal.Decimal `json:"day"`
	Week            decimal.Decimal `json:"week"`
	Month           decimal.Decimal `json:"month"`
	SavingsProgress int             `json:"savingsProgress"`
}

type TrendPoint struct {
	Label  string          `json:"label"`
	Date   time.Time       `json:"date"`
	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`
}

type CategorySlice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

type DashboardInsights struct {
	Totals               InsightsTotals  `json:"totals"`
	Trend                []TrendPoint    `json:"trend"`
	CategoryDistribution []CategorySlice `json:"categoryDistribution"`
}

type TimeframeTotals struct {
	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`
	Due    decimal.Decimal `json:"due"`
}

type TimeframeSummary struct {
	Week  TimeframeTotals `json:"week"`
	Month TimeframeTotals `json:"month"`
	Year  TimeframeTotals `json:"year"`
}

// For возвращает итоги выбранного периода.
func (s TimeframeSummary) For(frame Timeframe) TimeframeTotals {
	switch frame {
	case TimeframeWeek:
		return s.Week
	case TimeframeMonth:
		return s.Month
	case TimeframeYear:
		return s.Year
	default:
		return TimeframeTotals{}
	}
}

// ParseTimeframe разбирает период без учета регистра.
func ParseTimeframe(value string) (Timeframe, bool) {
	switch Timeframe(strings.ToLower(strings.TrimSpace(value))) {
	case TimeframeWeek:
		return TimeframeWeek, true
	case TimeframeMonth:
		return TimeframeMonth, true
	case TimeframeYear:
		return TimeframeYear, true
	default:
		return "", false
	}
}

// ParseTransactionType разбирает тип транзакции.
func ParseTransactionType(value string) (TransactionType, bool) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(value))) {
	case TransactionTypeCredit:
		return TransactionTypeCredit, true
	case TransactionTypeDebit:
		return TransactionTypeDebit, true
	default:
		return "", false
	}
}

// ParseSource разбирает источник транзакции.
func ParseSource(value string) (Source, bool) {
	switch Source(strings.ToLower(strings.TrimSpace(value))) {
	case SourceSystem:
		return SourceSystem, true
	case SourceManual:
		return SourceManual, true
	case SourceAI:
		return SourceAI, true
	default:
		return "", false
	}
}
