package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/models"
)

type ManualField string

const (
	ManualFieldCredit ManualField = "credit"
	ManualFieldDebit  ManualField = "debit"
	ManualFieldDue    ManualField = "due"
)

type manualFieldMeta struct {
	txnType        finance.TransactionType
	categoryPrefix string
	tags           []string
}

var manualFields = map[ManualField]manualFieldMeta{
	ManualFieldCredit: {txnType: finance.TransactionTypeCredit, categoryPrefix: "Credit"},
	ManualFieldDebit:  {txnType: finance.TransactionTypeDebit, categoryPrefix: "Debit"},
	ManualFieldDue:    {txnType: finance.TransactionTypeDebit, categoryPrefix: "Due", tags: []string{finance.DueTag}},
}

// FrameLabels: подписи периодов ручного ввода.
var FrameLabels = map[finance.Timeframe]string{
	finance.TimeframeWeek:  "1 Week plan",
	finance.TimeframeMonth: "1 Month plan",
	finance.TimeframeYear:  "1 Year plan",
}

type ManualEntry struct {
	Field  ManualField
	Amount decimal.Decimal
}

type ManualEntriesInput struct {
	Frame   finance.Timeframe
	Entries []ManualEntry
	Note    string
	Label   string
}

// ManualEntries сохраняет суммы, введенные вручную для периода, как транзакции.
func (s *Service) ManualEntries(ctx context.Context, userID uuid.UUID, input ManualEntriesInput) ([]finance.Transaction, error) {
	inputs, err := BuildManualInputs(input, s.Now())
	if err != nil {
		return nil, err
	}

	created, err := s.transactions.CreateBatch(ctx, userID, inputs)
	if err != nil {
		return nil, fmt.Errorf("save manual entries: %w", err)
	}

	return s.Enrich(userID, created), nil
}

// BuildManualInputs превращает ручной ввод в транзакции для сохранения.
func BuildManualInputs(input ManualEntriesInput, now time.Time) ([]models.TransactionInput, error) {
	frameLabel, ok := FrameLabels[input.Frame]
	if !ok {
		return nil, fmt.Errorf("%w: unknown frame %q", ErrInvalidInput, input.Frame)
	}
	if len(input.Entries) == 0 {
		return nil, fmt.Errorf("%w: at least one entry is required", ErrInvalidInput)
	}

	label := strings.TrimSpace(input.Label)
	if label == "" {
		label = frameLabel
	}
	note := strings.TrimSpace(input.Note)
	frame := string(input.Frame)

	inputs := make([]models.TransactionInput, 0, len(input.Entries))
	for i, entry := range input.Entries {
		meta, ok := manualFields[entry.Field]
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: unknown field %q", ErrInvalidInput, i, entry.Field)
		}
		if !entry.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: entry %d: amount must be positive", ErrInvalidInput, i)
		}
		if !finance.FitsMoneyScale(entry.Amount) {
			return nil, fmt.Errorf("%w: entry %d: amount has more than %d decimal places", ErrInvalidInput, i, finance.MoneyScale)
		}

		description := fmt.Sprintf("Manual %s entry for %s", entry.Field, frameLabel)
		var notePtr *string
		if note != "" {
			description = note + " · " + frameLabel
			notePtr = &note
		}

		inputs = append(inputs, models.TransactionInput{
			Amount:      entry.Amount,
			Type:        string(meta.txnType),
			Category:    meta.categoryPrefix + " · " + label,
			Description: description,
			OccurredAt:  now,
			Label:       &label,
			Note:        notePtr,
			Source:      string(finance.SourceManual),
			Timeframe:   &frame,
			Tags:        meta.tags,
		})
	}

	return inputs, nil
}
