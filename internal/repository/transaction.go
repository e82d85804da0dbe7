package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/models"
)

const transactionColumns = `id, amount, type, category, description, occurred_at, label, note, source, timeframe, tags`

type TransactionRepository struct {
	db *pgxpool.Pool
}

// NewTransactionRepository создает репозиторий транзакций.
func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListRecent возвращает последние транзакции пользователя, новые первыми.
func (r *TransactionRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int, since *time.Time) ([]finance.RawTransaction, error) {
	if limit <= 0 {
		return nil, ErrInvalid
	}

	if since != nil {
		return r.query(ctx,
			`SELECT `+transactionColumns+`
			 FROM transactions
			 WHERE user_id = $1 AND occurred_at >= $2
			 ORDER BY occurred_at DESC
			 LIMIT $3`,
			userID, *since, limit,
		)
	}

	return r.query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE user_id = $1
		 ORDER BY occurred_at DESC
		 LIMIT $2`,
		userID, limit,
	)
}

// ListSince возвращает все транзакции пользователя не раньше since.
func (r *TransactionRepository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]finance.RawTransaction, error) {
	return r.query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE user_id = $1 AND occurred_at >= $2
		 ORDER BY occurred_at DESC`,
		userID, since,
	)
}

// ListRange возвращает транзакции в полуинтервале [from, to) по возрастанию времени.
func (r *TransactionRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]finance.RawTransaction, error) {
	if !to.After(from) {
		return nil, ErrInvalid
	}

	return r.query(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		 ORDER BY occurred_at ASC`,
		userID, from, to,
	)
}

// Get возвращает транзакцию пользователя.
func (r *TransactionRepository) Get(ctx context.Context, userID, id uuid.UUID) (finance.RawTransaction, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+transactionColumns+`
		 FROM transactions
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	record, err := scanTransaction(row)
	return record, mapError(err)
}

// Create сохраняет одну транзакцию.
func (r *TransactionRepository) Create(ctx context.Context, userID uuid.UUID, input models.TransactionInput) (finance.RawTransaction, error) {
	tags, err := encodeTags(input.Tags)
	if err != nil {
		return finance.RawTransaction{}, err
	}

	row := r.db.QueryRow(ctx, insertTransactionSQL, insertTransactionArgs(userID, input, tags)...)
	record, err := scanTransaction(row)
	if err != nil {
		return record, fmt.Errorf("create transaction: %w", mapError(err))
	}
	return record, nil
}

// CreateBatch сохраняет пачку транзакций атомарно.
func (r *TransactionRepository) CreateBatch(ctx context.Context, userID uuid.UUID, inputs []models.TransactionInput) ([]finance.RawTransaction, error) {
	if len(inputs) == 0 {
		return []finance.RawTransaction{}, nil
	}

	batch := &pgx.Batch{}
	for _, input := range inputs {
		tags, err := encodeTags(input.Tags)
		if err != nil {
			return nil, err
		}
		batch.Queue(insertTransactionSQL, insertTransactionArgs(userID, input, tags)...)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	results := tx.SendBatch(ctx, batch)
	created := make([]finance.RawTransaction, 0, len(inputs))
	for range inputs {
		record, err := scanTransaction(results.QueryRow())
		if err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("create transaction batch: %w", mapError(err))
		}
		created = append(created, record)
	}
	if err := results.Close(); err != nil {
		return nil, mapError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return created, nil
}

// Update применяет частичное обновление. Поля nil остаются без изменений.
func (r *TransactionRepository) Update(ctx context.Context, userID, id uuid.UUID, patch models.TransactionPatch) (finance.RawTransaction, error) {
	var tags []byte
	if patch.Tags != nil {
		encoded, err := encodeTags(patch.Tags)
		if err != nil {
			return finance.RawTransaction{}, err
		}
		tags = encoded
	}

	var amount any
	if patch.Amount != nil {
		amount = *patch.Amount
	}

	row := r.db.QueryRow(ctx,
		`UPDATE transactions
		 SET amount = COALESCE($3, amount),
		     type = COALESCE($4, type),
		     category = COALESCE($5, category),
		     description = COALESCE($6, description),
		     occurred_at = COALESCE($7, occurred_at),
		     label = COALESCE($8, label),
		     note = COALESCE($9, note),
		     timeframe = COALESCE($10, timeframe),
		     tags = COALESCE($11::jsonb, tags),
		     source = COALESCE($12, source),
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+transactionColumns,
		id, userID, amount, patch.Type, patch.Category, patch.Description, patch.OccurredAt,
		patch.Label, patch.Note, patch.Timeframe, nullableJSON(tags), patch.Source,
	)

	record, err := scanTransaction(row)
	return record, mapError(err)
}

// Delete удаляет транзакцию пользователя.
func (r *TransactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	cmd, err := r.db.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const insertTransactionSQL = `INSERT INTO transactions
	 (user_id, amount, type, category, description, occurred_at, label, note, source, timeframe, tags)
	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb)
	 RETURNING ` + transactionColumns

func insertTransactionArgs(userID uuid.UUID, input models.TransactionInput, tags []byte) []any {
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	source := input.Source
	if source == "" {
		source = string(finance.SourceSystem)
	}

	return []any{
		userID,
		input.Amount,
		strings.ToLower(input.Type),
		input.Category,
		input.Description,
		occurredAt,
		input.Label,
		input.Note,
		source,
		input.Timeframe,
		nullableJSON(tags),
	}
}

func (r *TransactionRepository) query(ctx context.Context, sql string, args ...any) ([]finance.RawTransaction, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]finance.RawTransaction, 0)
	for rows.Next() {
		record, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// scanTransaction читает строку без приведения типов: сумма, время и теги
// остаются в формате драйвера и нормализуются в finance.Enrich.
func scanTransaction(row pgx.Row) (finance.RawTransaction, error) {
	var (
		record    finance.RawTransaction
		id        uuid.UUID
		amount    pgtype.Numeric
		timestamp pgtype.Timestamptz
		tags      []byte
	)

	err := row.Scan(
		&id,
		&amount,
		&record.Type,
		&record.Category,
		&record.Description,
		&timestamp,
		&record.Label,
		&record.Note,
		&record.Source,
		&record.Timeframe,
		&tags,
	)
	if err != nil {
		return record, err
	}

	record.ID = id.String()
	record.Amount = amount
	record.Timestamp = timestamp
	if len(tags) > 0 {
		record.Tags = tags
	}

	return record, nil
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		return nil, nil
	}

	payload, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return payload, nil
}

func nullableJSON(payload []byte) any {
	if payload == nil {
		return nil
	}
	return string(payload)
}
