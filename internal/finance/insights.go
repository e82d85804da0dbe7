package finance

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dayWindowDays   = 1
	weekWindowDays  = 7
	monthWindowDays = 28

	trendLabelLayout = "2 Jan"
)

var hundred = decimal.NewFromInt(100)

// DeriveInsights считает итоги, тренд и распределение по категориям
// относительно момента now.
func DeriveInsights(transactions []Transaction, now time.Time) DashboardInsights {
	return DashboardInsights{
		Totals:               WindowTotals(transactions, now),
		Trend:                BuildTrend(transactions),
		CategoryDistribution: CategoryDistribution(transactions),
	}
}

// WindowTotals возвращает суммы расходов за 1, 7 и 28 дней.
// savingsProgress: отношение недельной суммы к 28-дневной в процентах.
func WindowTotals(transactions []Transaction, now time.Time) InsightsTotals {
	day := DebitSince(transactions, now.Add(-dayWindowDays*DayDuration))
	week := DebitSince(transactions, now.Add(-weekWindowDays*DayDuration))
	month := DebitSince(transactions, now.Add(-monthWindowDays*DayDuration))

	return InsightsTotals{
		Day:             day,
		Week:            week,
		Month:           month,
		SavingsProgress: savingsProgress(week, month),
	}
}

// DebitSince суммирует расходы с моментом не раньше since.
func DebitSince(transactions []Transaction, since time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range transactions {
		if txn.Type != TransactionTypeDebit || txn.Timestamp.Before(since) {
			continue
		}
		total = total.Add(txn.Amount)
	}
	return total
}

func savingsProgress(week, month decimal.Decimal) int {
	if month.IsZero() {
		return 0
	}

	progress := week.Mul(hundred).Div(month).Round(0).IntPart()
	switch {
	case progress < 0:
		return 0
	case progress > 100:
		return 100
	default:
		return int(progress)
	}
}

// BuildTrend группирует транзакции по календарным дням UTC.
func BuildTrend(transactions []Transaction) []TrendPoint {
	buckets := make(map[time.Time]*TrendPoint)

	for _, txn := range transactions {
		ts := txn.Timestamp.UTC()
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)

		point, ok := buckets[day]
		if !ok {
			point = &TrendPoint{Date: day, Credit: decimal.Zero, Debit: decimal.Zero}
			buckets[day] = point
		}
		point.Label = ts.Format(trendLabelLayout)

		switch txn.Type {
		case TransactionTypeCredit:
			point.Credit = point.Credit.Add(txn.Amount)
		case TransactionTypeDebit:
			point.Debit = point.Debit.Add(txn.Amount)
		}
	}

	trend := make([]TrendPoint, 0, len(buckets))
	for _, point := range buckets {
		trend = append(trend, *point)
	}
	slices.SortFunc(trend, func(a, b TrendPoint) int {
		return a.Date.Compare(b.Date)
	})

	return trend
}

// CategoryDistribution суммирует расходы по категориям в порядке первого появления.
func CategoryDistribution(transactions []Transaction) []CategorySlice {
	return CategoryTotals(transactions, TransactionTypeDebit)
}

// CategoryTotals суммирует транзакции заданного типа по категориям.
func CategoryTotals(transactions []Transaction, txnType TransactionType) []CategorySlice {
	index := make(map[string]int)
	slicesOut := make([]CategorySlice, 0)

	for _, txn := range transactions {
		if txn.Type != txnType {
			continue
		}

		i, ok := index[txn.Category]
		if !ok {
			i = len(slicesOut)
			index[txn.Category] = i
			slicesOut = append(slicesOut, CategorySlice{Name: txn.Category, Value: decimal.Zero})
		}
		slicesOut[i].Value = slicesOut[i].Value.Add(txn.Amount)
	}

	return slicesOut
}

// TopCategories возвращает n крупнейших категорий, не меняя исходный срез.
func TopCategories(categories []CategorySlice, n int) []CategorySlice {
	sorted := slices.Clone(categories)
	slices.SortStableFunc(sorted, func(a, b CategorySlice) int {
		return b.Value.Cmp(a.Value)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// SumByType суммирует транзакции одного типа.
func SumByType(transactions []Transaction, txnType TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range transactions {
		if txn.Type == txnType {
			total = total.Add(txn.Amount)
		}
	}
	return total
}

// NetBalance: сумма поступлений минус сумма расходов.
func NetBalance(transactions []Transaction) decimal.Decimal {
	return SumByType(transactions, TransactionTypeCredit).Sub(SumByType(transactions, TransactionTypeDebit))
}
