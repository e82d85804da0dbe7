package ai

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"example.com/finospark/backend/internal/finance"
)

var (
	inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

	forecastLowFactor  = decimal.RequireFromString("0.9")
	forecastHighFactor = decimal.RequireFromString("1.15")
	hundred            = decimal.NewFromInt(100)
)

// FormatINR форматирует сумму в рупиях без дробной части и с группировкой en-IN.
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + "₹" + inrPrinter.Sprintf("%d", rounded.IntPart())
}

func localAdvice(question string, profile *Profile) string {
	balanceLine := "Balance signal unavailable — stay close to your cash map."
	goalLine := "Set a vivid savings goal so Spark can auto-calibrate each move."

	if profile != nil {
		balanceLine = "Balance pulse: " + FormatINR(profile.Balance)
		if !profile.SavingsGoal.IsZero() {
			progress := decimal.Min(hundred, profile.Balance.Div(profile.SavingsGoal).Mul(hundred))
			balanceLine += fmt.Sprintf(" (%s%% of your goal)", progress.StringFixed(0))
			goalLine = "Goal beacon: " + FormatINR(profile.SavingsGoal) + " target."
		}
		balanceLine += "."
	}

	return strings.Join([]string{
		"**Spark local insight**",
		"Question tracked: " + question,
		balanceLine,
		goalLine,
		"Focus move: route the next credit straight to your highest-impact bucket.",
		"Neon mantra: steady rupees, brighter runway.",
	}, "\n")
}

func localForecast(transactions []finance.Transaction, notes, errNote string) string {
	if len(transactions) == 0 {
		noteLine := "Add a note (travel, rent, etc.) for sharper pulses."
		if notes != "" {
			noteLine = "Note logged: " + notes
		}
		diagnostics := "Connect Spark to live data for richer foresight."
		if errNote != "" {
			diagnostics = "Diagnostics: " + errNote
		}

		return strings.Join([]string{
			"**Spark horizon scan**",
			"No transaction feed detected, so I'm projecting off your latest balance trend.",
			noteLine,
			diagnostics,
			"Neon mantra: plan the cash before the cash plans you.",
		}, "\n")
	}

	debits := finance.CategoryTotals(transactions, finance.TransactionTypeDebit)
	totalDebit := finance.SumByType(transactions, finance.TransactionTypeDebit)
	totalCredit := finance.SumByType(transactions, finance.TransactionTypeCredit)

	surge := "Lifestyle"
	if top := finance.TopCategories(debits, 1); len(top) > 0 {
		surge = top[0].Name
	}

	noteLine := "Add notes so Spark can tag real-life plans."
	if notes != "" {
		noteLine = "User note carried forward: " + notes
	}

	return strings.Join([]string{
		"**Spark horizon scan**",
		fmt.Sprintf("Projected spend band: %s – %s based on recent flow.",
			FormatINR(totalDebit.Mul(forecastLowFactor)), FormatINR(totalDebit.Mul(forecastHighFactor))),
		fmt.Sprintf("Likely surge: %s (watch for autopilot upgrades).", surge),
		fmt.Sprintf("Risk: credits at %s vs debits %s — keep the 50%% guardrail.", FormatINR(totalCredit), FormatINR(totalDebit)),
		"Micro-habits: (1) schedule a midweek audit (2) sweep surprise credits to savings within 12h.",
		noteLine,
		"Neon mantra: preview the month, then glow through it.",
	}, "\n")
}

func localSummary(transactions []finance.Transaction, profile *Profile, errNote string) string {
	if len(transactions) == 0 {
		diagnostics := "Feed me more swipes to get sharper."
		if errNote != "" {
			diagnostics = "Diagnostics: " + errNote
		}

		return strings.Join([]string{
			"**Spark local summary**",
			"No live transactions arrived, so I'm reusing cached intelligence.",
			diagnostics,
			"Neon mantra: even quiet weeks deserve intentional rupees.",
		}, "\n")
	}

	totalDebit := finance.SumByType(transactions, finance.TransactionTypeDebit)
	top := finance.TopCategories(finance.CategoryTotals(transactions, finance.TransactionTypeDebit), 3)

	shares := make([]string, 0, len(top))
	for _, slice := range top {
		share := "0"
		if !totalDebit.IsZero() {
			share = slice.Value.Div(totalDebit).Mul(hundred).StringFixed(0)
		}
		shares = append(shares, fmt.Sprintf("%s ~ %s%%", slice.Name, share))
	}
	topLine := strings.Join(shares, ", ")
	if topLine == "" {
		topLine = "Signal too light — diversify your tracking."
	}

	runway := "Balance pulse unavailable."
	if profile != nil {
		runway = fmt.Sprintf("Runway: %s still available.", FormatINR(profile.Balance))
	}

	return strings.Join([]string{
		"**Spark local summary**",
		"Top flows: " + topLine,
		behaviorLine(transactions),
		runway,
		"Idea: route next credit via auto-transfer to keep debits <50% of credits.",
		"Neon mantra: breathe, budget, brighten.",
	}, "\n")
}

// behaviorLine сравнивает расходы первой и второй половины списка.
func behaviorLine(transactions []finance.Transaction) string {
	half := max(1, len(transactions)/2)
	first := finance.SumByType(transactions[:half], finance.TransactionTypeDebit)
	second := finance.SumByType(transactions[half:], finance.TransactionTypeDebit)
	delta := second.Sub(first)

	switch {
	case delta.Abs().LessThan(decimal.NewFromInt(1)):
		return "Spending steady compared with the prior window."
	case delta.IsPositive():
		return fmt.Sprintf("Spend lifted by INR %s versus the previous window.", delta.StringFixed(0))
	default:
		return fmt.Sprintf("Spend dipped by INR %s versus the previous window.", delta.Abs().StringFixed(0))
	}
}
