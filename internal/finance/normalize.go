package finance

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidType      = errors.New("invalid transaction type")
)

// RecordError описывает отброшенную при нормализации запись.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Enrich приводит сырые записи к каноническому виду.
// Записи с некорректной суммой, типом или датой не попадают в результат,
// а возвращаются в составе ошибки (errors.Join из *RecordError).
func Enrich(records []RawTransaction) ([]Transaction, error) {
	out := make([]Transaction, 0, len(records))
	var errs []error

	for i, record := range records {
		txn, err := enrichOne(record)
		if err != nil {
			errs = append(errs, &RecordError{Index: i, ID: record.ID, Err: err})
			continue
		}
		out = append(out, txn)
	}

	return out, errors.Join(errs...)
}

func enrichOne(record RawTransaction) (Transaction, error) {
	amount, err := ToDecimal(record.Amount)
	if err != nil {
		return Transaction{}, err
	}

	txnType, ok := ParseTransactionType(record.Type)
	if !ok {
		return Transaction{}, fmt.Errorf("%w: %q", ErrInvalidType, record.Type)
	}

	timestamp, err := ToTimestamp(record.Timestamp)
	if err != nil {
		return Transaction{}, err
	}

	txn := Transaction{
		ID:          record.ID,
		Amount:      amount,
		Type:        txnType,
		Category:    record.Category,
		Description: deref(record.Description),
		Timestamp:   timestamp,
		Label:       deref(record.Label),
		Note:        deref(record.Note),
		Tags:        NormalizeTags(record.Tags),
	}

	if source, ok := ParseSource(deref(record.Source)); ok {
		txn.Source = source
	}
	if frame, ok := ParseTimeframe(deref(record.Timeframe)); ok {
		txn.Timeframe = frame
	}

	return txn, nil
}

// toRaw превращает каноническую транзакцию обратно в сырую запись.
func (t Transaction) toRaw() RawTransaction {
	raw := RawTransaction{
		ID:          t.ID,
		Amount:      t.Amount,
		Type:        string(t.Type),
		Category:    t.Category,
		Description: &t.Description,
		Timestamp:   t.Timestamp,
		Label:       optional(t.Label),
		Note:        optional(t.Note),
		Source:      optional(string(t.Source)),
		Timeframe:   optional(string(t.Timeframe)),
	}
	if t.Tags != nil {
		raw.Tags = append([]string(nil), t.Tags...)
	}
	return raw
}

// MoneyScale: число знаков после запятой, с которым суммы хранятся в базе.
const MoneyScale = 2

// FitsMoneyScale сообщает, что сумма хранится без округления.
func FitsMoneyScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(MoneyScale))
}

// ToDecimal приводит сумму к decimal. nil считается нулем.
func ToDecimal(value any) (decimal.Decimal, error) {
	var amount decimal.Decimal

	switch v := value.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		amount = v
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, nil
		}
		amount = *v
	case int:
		amount = decimal.NewFromInt(int64(v))
	case int32:
		amount = decimal.NewFromInt32(v)
	case int64:
		amount = decimal.NewFromInt(v)
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	case string:
		return fromString(v)
	case []byte:
		return fromString(string(v))
	case json.Number:
		return fromString(v.String())
	case pgtype.Numeric:
		return fromNumeric(v)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidAmount, value)
	}

	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, amount.String())
	}
	return amount, nil
}

func fromFloat(value float64) (decimal.Decimal, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return decimal.Zero, fmt.Errorf("%w: non-finite value", ErrInvalidAmount)
	}
	if value < 0 {
		return decimal.Zero, fmt.Errorf("%w: negative value %v", ErrInvalidAmount, value)
	}
	return decimal.NewFromFloat(value), nil
}

func fromString(value string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("%w: empty string", ErrInvalidAmount)
	}

	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative value %q", ErrInvalidAmount, value)
	}
	return amount, nil
}

func fromNumeric(value pgtype.Numeric) (decimal.Decimal, error) {
	if !value.Valid {
		return decimal.Zero, nil
	}
	if value.NaN || value.InfinityModifier != pgtype.Finite || value.Int == nil {
		return decimal.Zero, fmt.Errorf("%w: non-finite numeric", ErrInvalidAmount)
	}

	amount := decimal.NewFromBigInt(value.Int, value.Exp)
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, amount.String())
	}
	return amount, nil
}

// ToTimestamp приводит момент времени к UTC с точностью до миллисекунд.
func ToTimestamp(value any) (time.Time, error) {
	var ts time.Time

	switch v := value.(type) {
	case time.Time:
		ts = v
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("%w: missing", ErrInvalidTimestamp)
		}
		ts = *v
	case pgtype.Timestamptz:
		if !v.Valid {
			return time.Time{}, fmt.Errorf("%w: null", ErrInvalidTimestamp)
		}
		ts = v.Time
	case string:
		parsed, err := parseTimestamp(v)
		if err != nil {
			return time.Time{}, err
		}
		ts = parsed
	case []byte:
		parsed, err := parseTimestamp(string(v))
		if err != nil {
			return time.Time{}, err
		}
		ts = parsed
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidTimestamp, value)
	}

	if ts.IsZero() {
		return time.Time{}, fmt.Errorf("%w: zero time", ErrInvalidTimestamp)
	}

	return ts.UTC().Truncate(time.Millisecond), nil
}

func parseTimestamp(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// NormalizeTags оставляет в наборе тегов только строки.
// Пустое значение и нераспознанная форма дают nil.
func NormalizeTags(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		if v == nil {
			return nil
		}
		return append(make([]string, 0, len(v)), v...)
	case []any:
		return stringsOnly(v)
	case string:
		return tagsFromJSON([]byte(v))
	case []byte:
		return tagsFromJSON(v)
	case json.RawMessage:
		return tagsFromJSON(v)
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return tagsFromJSON(payload)
	}
}

func tagsFromJSON(payload []byte) []string {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return nil
	}

	var items []any
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil
	}
	if items == nil {
		return nil
	}
	return stringsOnly(items)
}

func stringsOnly(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// HasTag проверяет точное вхождение тега.
func (t Transaction) HasTag(tag string) bool {
	for _, value := range t.Tags {
		if value == tag {
			return true
		}
	}
	return false
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
