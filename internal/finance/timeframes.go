package finance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DueTag помечает транзакции-обязательства.
const DueTag = "due"

// TimeframeWindowDays: длина окна каждого периода в днях.
// Месяц здесь 30 дней, в отличие от 28-дневного окна WindowTotals.
var TimeframeWindowDays = map[Timeframe]float64{
	TimeframeWeek:  7,
	TimeframeMonth: 30,
	TimeframeYear:  365,
}

// IsDue сообщает, относится ли транзакция к обязательствам:
// тег "due" или "due" в названии категории без учета регистра.
func IsDue(txn Transaction) bool {
	return txn.HasTag(DueTag) || strings.Contains(strings.ToLower(txn.Category), DueTag)
}

// SummarizeTimeframes считает поступления, расходы и обязательства
// за неделю, месяц и год относительно now.
func SummarizeTimeframes(transactions []Transaction, now time.Time) TimeframeSummary {
	totals := make(map[Timeframe]*TimeframeTotals, len(Timeframes))
	dueEntries := make(map[Timeframe]decimal.Decimal, len(Timeframes))
	for _, frame := range Timeframes {
		totals[frame] = &TimeframeTotals{Credit: decimal.Zero, Debit: decimal.Zero, Due: decimal.Zero}
		dueEntries[frame] = decimal.Zero
	}

	for _, txn := range transactions {
		diffDays := now.Sub(txn.Timestamp).Hours() / 24
		due := IsDue(txn)

		for _, frame := range Timeframes {
			if diffDays > TimeframeWindowDays[frame] {
				continue
			}

			current := totals[frame]
			switch {
			case due:
				dueEntries[frame] = dueEntries[frame].Add(txn.Amount)
			case txn.Type == TransactionTypeCredit:
				current.Credit = current.Credit.Add(txn.Amount)
			case txn.Type == TransactionTypeDebit:
				current.Debit = current.Debit.Add(txn.Amount)
			}
		}
	}

	for _, frame := range Timeframes {
		current := totals[frame]
		residual := decimal.Max(decimal.Zero, current.Debit.Sub(current.Credit))
		current.Due = decimal.Max(residual, dueEntries[frame])
	}

	return TimeframeSummary{
		Week:  *totals[TimeframeWeek],
		Month: *totals[TimeframeMonth],
		Year:  *totals[TimeframeYear],
	}
}
