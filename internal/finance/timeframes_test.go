package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestSummarizeTimeframesWeekScenario проверяет базовый сценарий с тегом due.
func TestSummarizeTimeframesWeekScenario(t *testing.T) {
	due := txn("t3", "50", TransactionTypeDebit, "Utilities", 3*DayDuration)
	due.Tags = []string{"due"}
	txns := []Transaction{
		txn("t1", "1000", TransactionTypeCredit, "Salary", DayDuration),
		txn("t2", "100", TransactionTypeDebit, "Groceries", 2*DayDuration),
		due,
	}

	summary := SummarizeTimeframes(txns, referenceNow)

	assert.True(t, dec("1000").Equal(summary.Week.Credit))
	assert.True(t, dec("100").Equal(summary.Week.Debit))
	assert.True(t, dec("50").Equal(summary.Week.Due))
	assert.Equal(t, summary.Week, summary.Month)
	assert.Equal(t, summary.Week, summary.Year)
}

// TestSummarizeTimeframesResidualDue проверяет, что due не меньше превышения расходов над поступлениями.
func TestSummarizeTimeframesResidualDue(t *testing.T) {
	txns := []Transaction{
		txn("c", "100", TransactionTypeCredit, "Salary", DayDuration),
		txn("d", "300", TransactionTypeDebit, "Rent", DayDuration),
	}

	summary := SummarizeTimeframes(txns, referenceNow)

	assert.True(t, dec("200").Equal(summary.Week.Due), "got %s", summary.Week.Due)
}

// TestSummarizeTimeframesWindows проверяет границы окон недели, месяца и года.
func TestSummarizeTimeframesWindows(t *testing.T) {
	txns := []Transaction{
		txn("edge-week", "7", TransactionTypeDebit, "Misc", 7*DayDuration),
		txn("month-only", "8", TransactionTypeDebit, "Misc", 8*DayDuration),
		txn("edge-month", "30", TransactionTypeDebit, "Misc", 30*DayDuration),
		txn("year-only", "31", TransactionTypeDebit, "Misc", 31*DayDuration),
		txn("outside", "400", TransactionTypeDebit, "Misc", 366*DayDuration),
		txn("future", "1", TransactionTypeCredit, "Misc", -DayDuration),
	}

	summary := SummarizeTimeframes(txns, referenceNow)

	assert.True(t, dec("7").Equal(summary.Week.Debit))
	assert.True(t, dec("45").Equal(summary.Month.Debit))
	assert.True(t, dec("76").Equal(summary.Year.Debit))
	assert.True(t, dec("1").Equal(summary.Year.Credit))
}

// TestSummarizeTimeframesDueByCategory проверяет распознавание due по названию категории.
func TestSummarizeTimeframesDueByCategory(t *testing.T) {
	txns := []Transaction{
		txn("card", "120", TransactionTypeDebit, "Credit card DUES", DayDuration),
		txn("refund", "20", TransactionTypeCredit, "Overdue refund", DayDuration),
		txn("salary", "500", TransactionTypeCredit, "Salary", DayDuration),
	}

	summary := SummarizeTimeframes(txns, referenceNow)

	assert.True(t, dec("500").Equal(summary.Week.Credit))
	assert.True(t, summary.Week.Debit.IsZero())
	assert.True(t, dec("140").Equal(summary.Week.Due))
}

// TestSummarizeTimeframesDueInvariant проверяет due >= max(0, debit - credit) для всех периодов.
func TestSummarizeTimeframesDueInvariant(t *testing.T) {
	sets := [][]Transaction{
		nil,
		sampleTransactions(),
		{txn("a", "10", TransactionTypeDebit, "due soon", time.Hour)},
		{
			txn("a", "900", TransactionTypeDebit, "Rent", 10*DayDuration),
			txn("b", "50", TransactionTypeCredit, "Gift", 100*DayDuration),
		},
	}

	for _, set := range sets {
		summary := SummarizeTimeframes(set, referenceNow)
		for _, frame := range Timeframes {
			totals := summary.For(frame)
			residual := totals.Debit.Sub(totals.Credit)
			assert.False(t, totals.Due.IsNegative(), "%s due negative", frame)
			assert.True(t, totals.Due.GreaterThanOrEqual(residual), "%s due %s < residual %s", frame, totals.Due, residual)
		}
	}
}

// TestIsDue проверяет распознавание обязательств.
func TestIsDue(t *testing.T) {
	assert.True(t, IsDue(Transaction{Tags: []string{"due"}}))
	assert.True(t, IsDue(Transaction{Category: "Due · Rent"}))
	assert.False(t, IsDue(Transaction{Category: "Groceries", Tags: []string{"Due"}}))
}
