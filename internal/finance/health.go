package finance

import (
	"fmt"
	"math"
)

type SpendingStatus string

const (
	StatusOverspending     SpendingStatus = "overspending"
	StatusBalanced         SpendingStatus = "balanced"
	StatusInsufficientData SpendingStatus = "insufficient-data"
)

const insufficientCreditMessage = "Credited amount must be > 0 to assess overspending."

// SpendingThresholds: доля поступлений, которую расходы могут занять за период.
var SpendingThresholds = map[Timeframe]float64{
	TimeframeWeek:  0.2,
	TimeframeMonth: 0.5,
	TimeframeYear:  1.0,
}

type SpendingInput struct {
	Credited     float64   `json:"credited"`
	Debited      float64   `json:"debited"`
	Due          float64   `json:"due"`
	TotalBalance float64   `json:"totalBalance"`
	Period       Timeframe `json:"period"`
}

type SpendingResult struct {
	Period         Timeframe      `json:"period"`
	Credited       float64        `json:"credited"`
	EffectiveSpend float64        `json:"effectiveSpend"`
	Debited        float64        `json:"debited"`
	Due            float64        `json:"due"`
	TotalBalance   float64        `json:"totalBalance"`
	UtilizationPct float64        `json:"utilizationPct"`
	ThresholdPct   float64        `json:"thresholdPct"`
	Status         SpendingStatus `json:"status"`
	Message        string         `json:"message"`
}

// AnalyzeSpending сравнивает фактические расходы с порогом периода.
// Функция тотальна: вырожденный вход дает статус insufficient-data.
func AnalyzeSpending(input SpendingInput) SpendingResult {
	threshold, known := SpendingThresholds[input.Period]

	if !known {
		result := clampedResult(input, 0)
		result.Message = fmt.Sprintf("Unknown period %q: expected week, month or year.", string(input.Period))
		return result
	}

	if !isFinite(input.Credited) || input.Credited <= 0 {
		result := clampedResult(input, threshold)
		result.Message = insufficientCreditMessage
		return result
	}

	effectiveSpend := nonNegative(input.Debited) + nonNegative(input.Due)
	utilization := effectiveSpend / input.Credited

	result := SpendingResult{
		Period:         input.Period,
		Credited:       input.Credited,
		EffectiveSpend: effectiveSpend,
		Debited:        nonNegative(input.Debited),
		Due:            nonNegative(input.Due),
		TotalBalance:   nonNegative(input.TotalBalance),
		UtilizationPct: utilization,
		ThresholdPct:   threshold,
	}

	if utilization > threshold {
		result.Status = StatusOverspending
		result.Message = fmt.Sprintf("Overspending for %s: %.1f%% of credited exceeds %.0f%% threshold.",
			input.Period, utilization*100, threshold*100)
	} else {
		result.Status = StatusBalanced
		result.Message = fmt.Sprintf("Balanced for %s: %.1f%% of credited within %.0f%% threshold.",
			input.Period, utilization*100, threshold*100)
	}

	return result
}

// AnalyzeTimeframe строит вход анализатора из итогов периода.
func AnalyzeTimeframe(totals TimeframeTotals, totalBalance float64, period Timeframe) SpendingResult {
	return AnalyzeSpending(SpendingInput{
		Credited:     totals.Credit.InexactFloat64(),
		Debited:      totals.Debit.InexactFloat64(),
		Due:          totals.Due.InexactFloat64(),
		TotalBalance: totalBalance,
		Period:       period,
	})
}

func clampedResult(input SpendingInput, threshold float64) SpendingResult {
	return SpendingResult{
		Period:         input.Period,
		Credited:       nonNegative(input.Credited),
		EffectiveSpend: nonNegative(input.Debited + input.Due),
		Debited:        nonNegative(input.Debited),
		Due:            nonNegative(input.Due),
		TotalBalance:   nonNegative(input.TotalBalance),
		UtilizationPct: 0,
		ThresholdPct:   threshold,
		Status:         StatusInsufficientData,
	}
}

// nonNegative отсекает отрицательные и нечисловые значения до нуля.
func nonNegative(value float64) float64 {
	if !isFinite(value) || value < 0 {
		return 0
	}
	return value
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}
