package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referenceNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func txn(id string, amount string, txnType TransactionType, category string, ago time.Duration) Transaction {
	return Transaction{
		ID:        id,
		Amount:    dec(amount),
		Type:      txnType,
		Category:  category,
		Timestamp: referenceNow.Add(-ago),
	}
}

func sampleTransactions() []Transaction {
	return []Transaction{
		txn("t1", "56.3", TransactionTypeDebit, "Dining", 0),
		txn("t2", "120.75", TransactionTypeDebit, "Groceries", 2*time.Hour),
		txn("t3", "420.5", TransactionTypeDebit, "Investments", 2*DayDuration),
		txn("t4", "1650", TransactionTypeCredit, "Salary", 3*DayDuration),
		txn("t5", "89.99", TransactionTypeDebit, "Fitness", 5*DayDuration),
		txn("t6", "240.4", TransactionTypeDebit, "Travel", 6*DayDuration),
		txn("t7", "35", TransactionTypeDebit, "Dining", 20*DayDuration),
		txn("t8", "500", TransactionTypeDebit, "Rent", 40*DayDuration),
	}
}

// TestWindowTotalsMatchLiteralSums проверяет, что каждое окно равно сумме расходов внутри него.
func TestWindowTotalsMatchLiteralSums(t *testing.T) {
	txns := sampleTransactions()

	literal := func(days int) decimal.Decimal {
		since := referenceNow.Add(-time.Duration(days) * DayDuration)
		total := decimal.Zero
		for _, item := range txns {
			if item.Type == TransactionTypeDebit && !item.Timestamp.Before(since) {
				total = total.Add(item.Amount)
			}
		}
		return total
	}

	totals := WindowTotals(txns, referenceNow)

	assert.True(t, literal(1).Equal(totals.Day), "day: %s", totals.Day)
	assert.True(t, literal(7).Equal(totals.Week), "week: %s", totals.Week)
	assert.True(t, literal(28).Equal(totals.Month), "month: %s", totals.Month)
	assert.True(t, dec("177.05").Equal(totals.Day))
	assert.True(t, dec("927.94").Equal(totals.Week))
	assert.True(t, dec("962.94").Equal(totals.Month))
}

// TestWindowBoundaryIsInclusive проверяет включение транзакции ровно на границе окна.
func TestWindowBoundaryIsInclusive(t *testing.T) {
	txns := []Transaction{
		txn("edge", "10", TransactionTypeDebit, "Misc", 7*DayDuration),
		txn("outside", "99", TransactionTypeDebit, "Misc", 7*DayDuration+time.Millisecond),
	}

	totals := WindowTotals(txns, referenceNow)

	assert.True(t, dec("10").Equal(totals.Week))
	assert.True(t, dec("109").Equal(totals.Month))
	assert.True(t, totals.Day.IsZero())
}

// TestWindowTotalsIncludeFutureTransactions проверяет, что у окна есть только нижняя граница.
func TestWindowTotalsIncludeFutureTransactions(t *testing.T) {
	txns := []Transaction{txn("future", "15", TransactionTypeDebit, "Misc", -DayDuration)}

	totals := WindowTotals(txns, referenceNow)

	assert.True(t, dec("15").Equal(totals.Day))
	assert.Equal(t, 100, totals.SavingsProgress)
}

// TestSavingsProgress проверяет расчет прогресса сбережений.
func TestSavingsProgress(t *testing.T) {
	tests := []struct {
		name  string
		week  string
		month string
		want  int
	}{
		{name: "zero month", week: "0", month: "0", want: 0},
		{name: "half", week: "50", month: "100", want: 50},
		{name: "rounds half up", week: "1", month: "8", want: 13},
		{name: "equal windows", week: "927.94", month: "927.94", want: 100},
		{name: "rounds down", week: "927.94", month: "962.94", want: 96},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, savingsProgress(dec(tt.week), dec(tt.month)))
		})
	}
}

// TestCategoryDistributionSumsToDebits проверяет равенство суммы категорий сумме расходов.
func TestCategoryDistributionSumsToDebits(t *testing.T) {
	txns := sampleTransactions()

	distribution := CategoryDistribution(txns)

	total := decimal.Zero
	for _, slice := range distribution {
		total = total.Add(slice.Value)
	}
	assert.True(t, SumByType(txns, TransactionTypeDebit).Equal(total), "got %s", total)

	require.Len(t, distribution, 6)
	assert.Equal(t, "Dining", distribution[0].Name)
	assert.True(t, dec("91.3").Equal(distribution[0].Value))
	assert.Equal(t, "Rent", distribution[5].Name)
	for _, slice := range distribution {
		assert.NotEqual(t, "Salary", slice.Name)
	}
}

// TestCategoryDistributionEmpty проверяет распределение без расходов.
func TestCategoryDistributionEmpty(t *testing.T) {
	distribution := CategoryDistribution(nil)
	assert.NotNil(t, distribution)
	assert.Empty(t, distribution)
}

// TestBuildTrendGroupsByUTCDay проверяет группировку по дням и порядок по возрастанию даты.
func TestBuildTrendGroupsByUTCDay(t *testing.T) {
	txns := []Transaction{
		{ID: "a", Amount: dec("10"), Type: TransactionTypeDebit, Timestamp: time.Date(2025, 1, 3, 23, 59, 0, 0, time.UTC)},
		{ID: "b", Amount: dec("100"), Type: TransactionTypeCredit, Timestamp: time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)},
		{ID: "c", Amount: dec("5.5"), Type: TransactionTypeDebit, Timestamp: time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "d", Amount: dec("7"), Type: TransactionTypeDebit, Timestamp: time.Date(2025, 1, 2, 20, 0, 0, 0, time.UTC)},
	}

	trend := BuildTrend(txns)

	require.Len(t, trend, 2)
	assert.Equal(t, "2 Jan", trend[0].Label)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), trend[0].Date)
	assert.True(t, dec("100").Equal(trend[0].Credit))
	assert.True(t, dec("7").Equal(trend[0].Debit))

	assert.Equal(t, "3 Jan", trend[1].Label)
	assert.True(t, trend[1].Credit.IsZero())
	assert.True(t, dec("15.5").Equal(trend[1].Debit))
}

// TestDeriveInsights проверяет итоги по окнам.
func TestDeriveInsights(t *testing.T) {
	insights := DeriveInsights(sampleTransactions(), referenceNow)

	assert.Equal(t, 96, insights.Totals.SavingsProgress)
	assert.NotEmpty(t, insights.Trend)
	assert.Len(t, insights.CategoryDistribution, 6)
}

// TestTopCategoriesDoesNotMutateInput проверяет, что входной срез не меняется.
func TestTopCategoriesDoesNotMutateInput(t *testing.T) {
	slices := []CategorySlice{
		{Name: "a", Value: dec("1")},
		{Name: "b", Value: dec("3")},
		{Name: "c", Value: dec("2")},
	}

	top := TopCategories(slices, 2)

	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].Name)
	assert.Equal(t, "c", top[1].Name)
	assert.Equal(t, "a", slices[0].Name)
}

// TestNetBalance проверяет разницу поступлений и расходов.
func TestNetBalance(t *testing.T) {
	balance := NetBalance(sampleTransactions())
	assert.True(t, dec("187.06").Equal(balance), "got %s", balance)
}
