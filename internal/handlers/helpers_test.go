package handlers

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/service"
)

// TestResolveLimit проверяет значение по умолчанию и верхнюю границу limit.
func TestResolveLimit(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: "", want: 40},
		{raw: "abc", want: 40},
		{raw: "0", want: 40},
		{raw: "-5", want: 40},
		{raw: "15", want: 15},
		{raw: " 200 ", want: 200},
		{raw: "1000", want: 200},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveLimit(tt.raw, 40, 200), "raw=%q", tt.raw)
	}
}

// TestParseSince проверяет разбор параметра since.
func TestParseSince(t *testing.T) {
	assert.Nil(t, parseSince(""))
	assert.Nil(t, parseSince("yesterday"))

	since := parseSince("2025-03-01")
	require.NotNil(t, since)
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), *since)

	since = parseSince("2025-03-01T10:30:00+05:30")
	require.NotNil(t, since)
	assert.Equal(t, time.Date(2025, time.March, 1, 5, 0, 0, 0, time.UTC), *since)
}

// TestParseExportRange проверяет окно выгрузки по умолчанию и ошибки разбора.
func TestParseExportRange(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	from, to, end, err := parseExportRange("", "", now)
	require.NoError(t, err)
	assert.Equal(t, now, to)
	assert.Equal(t, now.Add(time.Millisecond), end)
	assert.Equal(t, now.Add(-365*24*time.Hour), from)

	from, to, end, err = parseExportRange("2025-01-01", "2025-02-01T10:00:00Z", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, time.February, 1, 10, 0, 0, 0, time.UTC), to)
	assert.Equal(t, time.Date(2025, time.February, 1, 10, 0, 0, 1_000_000, time.UTC), end)

	_, _, _, err = parseExportRange("soon", "", now)
	assert.EqualError(t, err, "invalid from")

	_, _, _, err = parseExportRange("", "later", now)
	assert.EqualError(t, err, "invalid to")
}

// TestParseExportRangeWholeDay проверяет, что дата без времени в to включает весь день.
func TestParseExportRangeWholeDay(t *testing.T) {
	now := time.Date(2025, time.March, 20, 8, 0, 0, 0, time.UTC)

	from, to, end, err := parseExportRange("2025-03-14", "2025-03-14", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC), to)
	assert.Equal(t, time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC), end)

	noon := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)
	lastMoment := time.Date(2025, time.March, 14, 23, 59, 59, 999_000_000, time.UTC)
	assert.True(t, !noon.Before(from) && noon.Before(end))
	assert.True(t, lastMoment.Before(end))
	assert.Equal(t, "transactions-2025-03-14-2025-03-14.csv", exportFilename(from, to, "csv"))
}

// TestWriteTransactionsCSV проверяет строки CSV-выгрузки.
func TestWriteTransactionsCSV(t *testing.T) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	err := writeTransactionsCSV(writer, []finance.Transaction{{
		ID:          "txn-1",
		Amount:      decimal.RequireFromString("1250.5"),
		Type:        finance.TransactionTypeDebit,
		Category:    "Rent",
		Description: "March, rent",
		Timestamp:   time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC),
		Source:      finance.SourceManual,
		Timeframe:   finance.TimeframeMonth,
		Tags:        []string{"manual", finance.DueTag},
	}})
	require.NoError(t, err)
	writer.Flush()
	require.NoError(t, writer.Error())

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, transactionCSVHeader, records[0])
	assert.Equal(t, []string{
		"txn-1", "2025-03-01T09:00:00Z", "debit", "1250.50", "Rent", "March, rent",
		"", "", "manual", "month", "manual|due",
	}, records[1])
}

// TestExportFilename проверяет имя файла выгрузки.
func TestExportFilename(t *testing.T) {
	from := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	name := exportFilename(from, to, "csv")
	assert.Equal(t, "transactions-2024-03-15-2025-03-15.csv", name)
	assert.Equal(t, `attachment; filename="transactions-2024-03-15-2025-03-15.csv"`, attachment(name))
}

// TestValidationMessage проверяет текст ошибки валидации.
func TestValidationMessage(t *testing.T) {
	type payload struct {
		Question string `validate:"required"`
		Password string `validate:"min=8"`
	}

	err := validator.New().Struct(payload{Password: "short"})
	require.Error(t, err)
	assert.Equal(t, "Question: required, Password: min=8", validationMessage(err))

	assert.Equal(t, "validation failed", validationMessage(assert.AnError))
}

// TestUpdateTransactionRequestEmpty проверяет распознавание пустого обновления.
func TestUpdateTransactionRequestEmpty(t *testing.T) {
	assert.True(t, UpdateTransactionRequest{}.empty())

	category := "Food"
	assert.False(t, UpdateTransactionRequest{Category: &category}.empty())
	assert.False(t, UpdateTransactionRequest{Tags: []string{}}.empty())
}

// TestParseWindow проверяет разбор окна аналитики.
func TestParseWindow(t *testing.T) {
	assert.Equal(t, service.DefaultInsightsWindow, parseWindow(""))
	assert.Equal(t, service.DefaultInsightsWindow, parseWindow("month"))
	assert.Equal(t, 7, parseWindow(" 7 "))
	assert.Equal(t, 0, parseWindow("0"))
}
