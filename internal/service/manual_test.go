package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/models"
)

// TestBuildManualInputs проверяет категории, описания и теги ручного ввода.
func TestBuildManualInputs(t *testing.T) {
	inputs, err := BuildManualInputs(ManualEntriesInput{
		Frame: finance.TimeframeMonth,
		Entries: []ManualEntry{
			{Field: ManualFieldCredit, Amount: decimal.NewFromInt(5000)},
			{Field: ManualFieldDue, Amount: decimal.NewFromInt(1200)},
		},
		Label: "  Rent cycle ",
	}, referenceNow)
	require.NoError(t, err)
	require.Len(t, inputs, 2)

	credit := inputs[0]
	assert.Equal(t, "credit", credit.Type)
	assert.Equal(t, "Credit · Rent cycle", credit.Category)
	assert.Equal(t, "Manual credit entry for 1 Month plan", credit.Description)
	assert.Equal(t, "manual", credit.Source)
	assert.Equal(t, "month", *credit.Timeframe)
	assert.Equal(t, "Rent cycle", *credit.Label)
	assert.Nil(t, credit.Note)
	assert.Empty(t, credit.Tags)
	assert.Equal(t, referenceNow, credit.OccurredAt)

	due := inputs[1]
	assert.Equal(t, "debit", due.Type)
	assert.Equal(t, "Due · Rent cycle", due.Category)
	assert.Equal(t, []string{"due"}, due.Tags)
}

// TestBuildManualInputsWithNote проверяет описание с заметкой и подпись по умолчанию.
func TestBuildManualInputsWithNote(t *testing.T) {
	inputs, err := BuildManualInputs(ManualEntriesInput{
		Frame:   finance.TimeframeWeek,
		Entries: []ManualEntry{{Field: ManualFieldDebit, Amount: decimal.NewFromInt(300)}},
		Note:    " groceries run ",
	}, referenceNow)
	require.NoError(t, err)
	require.Len(t, inputs, 1)

	assert.Equal(t, "Debit · 1 Week plan", inputs[0].Category)
	assert.Equal(t, "groceries run · 1 Week plan", inputs[0].Description)
	require.NotNil(t, inputs[0].Note)
	assert.Equal(t, "groceries run", *inputs[0].Note)
}

// TestBuildManualInputsRejectsInvalid проверяет ошибки валидации.
func TestBuildManualInputsRejectsInvalid(t *testing.T) {
	cases := []struct {
		name  string
		input ManualEntriesInput
	}{
		{
			name:  "unknown frame",
			input: ManualEntriesInput{Frame: "quarter", Entries: []ManualEntry{{Field: ManualFieldDebit, Amount: decimal.NewFromInt(1)}}},
		},
		{
			name:  "no entries",
			input: ManualEntriesInput{Frame: finance.TimeframeWeek},
		},
		{
			name:  "unknown field",
			input: ManualEntriesInput{Frame: finance.TimeframeWeek, Entries: []ManualEntry{{Field: "loan", Amount: decimal.NewFromInt(1)}}},
		},
		{
			name:  "zero amount",
			input: ManualEntriesInput{Frame: finance.TimeframeWeek, Entries: []ManualEntry{{Field: ManualFieldDebit, Amount: decimal.Zero}}},
		},
		{
			name:  "fractional paise",
			input: ManualEntriesInput{Frame: finance.TimeframeWeek, Entries: []ManualEntry{{Field: ManualFieldCredit, Amount: decimal.RequireFromString("10.005")}}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildManualInputs(tc.input, referenceNow)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

// TestManualEntriesSavesBatch проверяет сохранение и нормализацию ответа.
func TestManualEntriesSavesBatch(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	f.transactions.EXPECT().CreateBatch(gomock.Any(), userID, gomock.Len(1)).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, inputs []models.TransactionInput) ([]finance.RawTransaction, error) {
			input := inputs[0]
			return []finance.RawTransaction{{
				ID:        "m1",
				Amount:    input.Amount,
				Type:      input.Type,
				Category:  input.Category,
				Timestamp: input.OccurredAt,
				Label:     input.Label,
				Source:    &input.Source,
				Timeframe: input.Timeframe,
				Tags:      input.Tags,
			}}, nil
		})

	created, err := f.service.ManualEntries(context.Background(), userID, ManualEntriesInput{
		Frame:   finance.TimeframeYear,
		Entries: []ManualEntry{{Field: ManualFieldDue, Amount: decimal.NewFromInt(900)}},
	})
	require.NoError(t, err)
	require.Len(t, created, 1)

	assert.Equal(t, finance.SourceManual, created[0].Source)
	assert.Equal(t, finance.TimeframeYear, created[0].Timeframe)
	assert.True(t, finance.IsDue(created[0]))
}
