package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type AdminRepository struct {
	db *pgxpool.Pool
}

type AdminUser struct {
	ID           uuid.UUID
	Username     string
	Email        string
	Name         *string
	Transactions int
	Coins        int
	CreatedAt    time.Time
}

type AIRequestFilter struct {
	UserID      *uuid.UUID
	Success     *bool
	Fallback    *bool
	RequestType *string
}

type AIRequestRecord struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	RequestType     string
	Provider        string
	Model           string
	Prompt          *string
	RequestPayload  []byte
	ResponsePayload []byte
	RawResponse     *string
	Success         bool
	Fallback        bool
	LatencyMS       int64
	ErrorMessage    *string
	CreatedAt       time.Time
}

type DailyCount struct {
	Day   time.Time
	Count int
}

type UsageStats struct {
	Users           int
	Transactions    int
	ManualEntries   int
	TotalCredit     decimal.Decimal
	TotalDebit      decimal.Decimal
	CoinsIssued     int
	AIRequests      int
	AISuccess       int
	AIFail          int
	AIFallback      int
	AIRequestsByDay []DailyCount
}

// NewAdminRepository создает репозиторий для админских запросов.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// ListUsers возвращает пользователей с числом транзакций и монет.
func (r *AdminRepository) ListUsers(ctx context.Context, limit, offset int) ([]AdminUser, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.username, u.email, u.name, u.created_at,
		        (SELECT COUNT(*) FROM transactions t WHERE t.user_id = u.id),
		        (SELECT COALESCE(SUM(points), 0) FROM rewards rw WHERE rw.user_id = u.id)
		 FROM users u
		 ORDER BY u.created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]AdminUser, 0)
	for rows.Next() {
		var user AdminUser
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Name, &user.CreatedAt, &user.Transactions, &user.Coins); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// CountUsers возвращает общее количество пользователей.
func (r *AdminRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ListAIRequests возвращает логи AI-запросов с фильтрацией.
func (r *AdminRepository) ListAIRequests(ctx context.Context, filter AIRequestFilter, limit, offset int, includePayloads bool) ([]AIRequestRecord, error) {
	where, args := buildAIRequestWhere(filter)

	columns := "id, user_id, request_type, provider, model, success, fallback, latency_ms, error_message, created_at"
	if includePayloads {
		columns += ", prompt, request_payload, response_payload, raw_response"
	}

	query := fmt.Sprintf("SELECT %s FROM ai_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		columns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]AIRequestRecord, 0)
	for rows.Next() {
		var record AIRequestRecord
		dest := []any{
			&record.ID,
			&record.UserID,
			&record.RequestType,
			&record.Provider,
			&record.Model,
			&record.Success,
			&record.Fallback,
			&record.LatencyMS,
			&record.ErrorMessage,
			&record.CreatedAt,
		}
		if includePayloads {
			dest = append(dest, &record.Prompt, &record.RequestPayload, &record.ResponsePayload, &record.RawResponse)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		requests = append(requests, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return requests, nil
}

// CountAIRequests возвращает количество AI-запросов по фильтру.
func (r *AdminRepository) CountAIRequests(ctx context.Context, filter AIRequestFilter) (int, error) {
	where, args := buildAIRequestWhere(filter)

	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM ai_requests"+where, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// UsageStats возвращает агрегированную статистику за N дней.
func (r *AdminRepository) UsageStats(ctx context.Context, days int) (UsageStats, error) {
	stats := UsageStats{}
	if days <= 0 {
		return stats, ErrInvalid
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.Users); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE source = 'manual'),
		        COALESCE(SUM(amount) FILTER (WHERE type = 'credit'), 0),
		        COALESCE(SUM(amount) FILTER (WHERE type = 'debit'), 0)
		 FROM transactions`,
	).Scan(&stats.Transactions, &stats.ManualEntries, &stats.TotalCredit, &stats.TotalDebit); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(points), 0) FROM rewards`).Scan(&stats.CoinsIssued); err != nil {
		return stats, err
	}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE success),
		        COUNT(*) FILTER (WHERE NOT success),
		        COUNT(*) FILTER (WHERE fallback)
		 FROM ai_requests`,
	).Scan(&stats.AIRequests, &stats.AISuccess, &stats.AIFail, &stats.AIFallback); err != nil {
		return stats, err
	}

	start := time.Now().UTC().AddDate(0, 0, -days+1)
	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('day', created_at)::date AS day,
		        COUNT(*)
		 FROM ai_requests
		 WHERE created_at >= $1
		 GROUP BY day
		 ORDER BY day DESC`,
		start,
	)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	stats.AIRequestsByDay = make([]DailyCount, 0)
	for rows.Next() {
		var row DailyCount
		if err := rows.Scan(&row.Day, &row.Count); err != nil {
			return stats, err
		}
		stats.AIRequestsByDay = append(stats.AIRequestsByDay, row)
	}

	return stats, rows.Err()
}

func buildAIRequestWhere(filter AIRequestFilter) (string, []any) {
	clauses := make([]string, 0)
	args := make([]any, 0)

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.UserID != nil {
		add("user_id", *filter.UserID)
	}
	if filter.Success != nil {
		add("success", *filter.Success)
	}
	if filter.Fallback != nil {
		add("fallback", *filter.Fallback)
	}
	if filter.RequestType != nil {
		add("request_type", *filter.RequestType)
	}

	if len(clauses) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}
