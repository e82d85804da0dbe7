package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/finospark/backend/internal/auth"
	"example.com/finospark/backend/internal/config"
	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/models"
	"example.com/finospark/backend/internal/notifications"
	"example.com/finospark/backend/internal/repository"
	"example.com/finospark/backend/internal/service"
)

const (
	msgTransactionNotFound = "Transaction not found"
	msgAmountScale         = "amount: max 2 decimal places"
)

type TransactionHandler struct {
	Transactions *repository.TransactionRepository
	Finance      *service.Service
	Notifier     *notifications.Hub
	PageSize     int
	MaxPageSize  int
}

// NewTransactionHandler создает обработчик транзакций.
func NewTransactionHandler(transactions *repository.TransactionRepository, finance *service.Service, notifier *notifications.Hub, cfg config.FinanceConfig) *TransactionHandler {
	return &TransactionHandler{
		Transactions: transactions,
		Finance:      finance,
		Notifier:     notifier,
		PageSize:     cfg.TransactionPageSize,
		MaxPageSize:  cfg.TransactionMaxPageSize,
	}
}

type CreateTransactionRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type" validate:"required,oneof=credit debit"`
	Category    string          `json:"category" validate:"required,min=1,max=120"`
	Description string          `json:"description" validate:"max=500"`
	Timestamp   *time.Time      `json:"timestamp"`
	Label       *string         `json:"label" validate:"omitempty,max=120"`
	Note        *string         `json:"note" validate:"omitempty,max=500"`
	Timeframe   *string         `json:"timeframe" validate:"omitempty,oneof=week month year"`
	Tags        []string        `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	Source      *string         `json:"source" validate:"omitempty,oneof=system manual ai"`
}

type UpdateTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Type        *string          `json:"type" validate:"omitempty,oneof=credit debit"`
	Category    *string          `json:"category" validate:"omitempty,min=1,max=120"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	Timestamp   *time.Time       `json:"timestamp"`
	Label       *string          `json:"label" validate:"omitempty,max=120"`
	Note        *string          `json:"note" validate:"omitempty,max=500"`
	Timeframe   *string          `json:"timeframe" validate:"omitempty,oneof=week month year"`
	Tags        []string         `json:"tags" validate:"omitempty,max=20,dive,max=40"`
	Source      *string          `json:"source" validate:"omitempty,oneof=system manual ai"`
}

func (r UpdateTransactionRequest) empty() bool {
	return r.Amount == nil && r.Type == nil && r.Category == nil && r.Description == nil &&
		r.Timestamp == nil && r.Label == nil && r.Note == nil && r.Timeframe == nil &&
		r.Tags == nil && r.Source == nil
}

// List возвращает последние транзакции пользователя.
func (h *TransactionHandler) List(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	limit := resolveLimit(c.QueryParam("limit"), h.PageSize, h.MaxPageSize)
	since := parseSince(c.QueryParam("since"))

	records, err := h.Transactions.ListRecent(c.Request().Context(), userID, limit, since)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, h.Finance.Enrich(userID, records))
}

// Create добавляет транзакцию.
func (h *TransactionHandler) Create(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	if !req.Amount.IsPositive() {
		return badRequest(c, "amount: gt=0")
	}
	if !finance.FitsMoneyScale(req.Amount) {
		return badRequest(c, msgAmountScale)
	}

	input := models.TransactionInput{
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    strings.TrimSpace(req.Category),
		Description: req.Description,
		Label:       req.Label,
		Note:        req.Note,
		Source:      string(finance.SourceSystem),
		Timeframe:   req.Timeframe,
		Tags:        req.Tags,
	}
	if req.Timestamp != nil {
		input.OccurredAt = req.Timestamp.UTC()
	}
	if req.Source != nil {
		input.Source = *req.Source
	}

	record, err := h.Transactions.Create(c.Request().Context(), userID, input)
	if err != nil {
		if errors.Is(err, repository.ErrInvalid) {
			return badRequest(c, "invalid transaction")
		}
		return serverError(c)
	}

	created, ok := h.single(userID, record)
	if !ok {
		return serverError(c)
	}

	publishTransactionsChanged(h.Notifier, userID, "created", 1)
	return c.JSON(http.StatusCreated, created)
}

// Get возвращает транзакцию пользователя.
func (h *TransactionHandler) Get(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return notFound(c, msgTransactionNotFound)
	}

	record, err := h.Transactions.Get(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, msgTransactionNotFound)
		}
		return serverError(c)
	}

	txn, ok := h.single(userID, record)
	if !ok {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, txn)
}

// Update частично обновляет транзакцию.
func (h *TransactionHandler) Update(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return notFound(c, msgTransactionNotFound)
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	if req.empty() {
		return badRequest(c, "Provide at least one field to update.")
	}
	if req.Amount != nil && !req.Amount.IsPositive() {
		return badRequest(c, "amount: gt=0")
	}
	if req.Amount != nil && !finance.FitsMoneyScale(*req.Amount) {
		return badRequest(c, msgAmountScale)
	}

	patch := models.TransactionPatch{
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Description: req.Description,
		Label:       req.Label,
		Note:        req.Note,
		Timeframe:   req.Timeframe,
		Source:      req.Source,
		Tags:        req.Tags,
	}
	if req.Timestamp != nil {
		occurredAt := req.Timestamp.UTC()
		patch.OccurredAt = &occurredAt
	}

	record, err := h.Transactions.Update(c.Request().Context(), userID, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return notFound(c, msgTransactionNotFound)
		case errors.Is(err, repository.ErrInvalid):
			return badRequest(c, "invalid transaction")
		}
		return serverError(c)
	}

	updated, ok := h.single(userID, record)
	if !ok {
		return serverError(c)
	}

	publishTransactionsChanged(h.Notifier, userID, "updated", 1)
	return c.JSON(http.StatusOK, updated)
}

// Delete удаляет транзакцию.
func (h *TransactionHandler) Delete(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return notFound(c, msgTransactionNotFound)
	}

	if err := h.Transactions.Delete(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, msgTransactionNotFound)
		}
		return serverError(c)
	}

	publishTransactionsChanged(h.Notifier, userID, "deleted", 1)
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}

func (h *TransactionHandler) single(userID uuid.UUID, record finance.RawTransaction) (finance.Transaction, bool) {
	enriched := h.Finance.Enrich(userID, []finance.RawTransaction{record})
	if len(enriched) == 0 {
		return finance.Transaction{}, false
	}
	return enriched[0], true
}

// resolveLimit разбирает limit: нечисловое или непозитивное значение дает limit по умолчанию.
func resolveLimit(raw string, defaultLimit, maxLimit int) int {
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	return min(limit, maxLimit)
}

// parseSince разбирает RFC 3339 или дату; некорректное значение игнорируется.
func parseSince(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, dateLayout} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			since := parsed.UTC()
			return &since
		}
	}
	return nil
}
