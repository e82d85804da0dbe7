package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/finospark/backend/internal/auth"
	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/notifications"
	"example.com/finospark/backend/internal/repository"
	"example.com/finospark/backend/internal/service"
)

type InsightsHandler struct {
	Finance  *service.Service
	Notifier *notifications.Hub
}

// NewInsightsHandler создает обработчик дашборда и аналитики.
func NewInsightsHandler(finance *service.Service, notifier *notifications.Hub) *InsightsHandler {
	return &InsightsHandler{Finance: finance, Notifier: notifier}
}

type ManualEntryRequest struct {
	Field  string          `json:"field" validate:"required,oneof=credit debit due"`
	Amount decimal.Decimal `json:"amount"`
}

type ManualEntriesRequest struct {
	Frame   string               `json:"frame" validate:"required,oneof=week month year"`
	Entries []ManualEntryRequest `json:"entries" validate:"required,min=1,max=20,dive"`
	Note    string               `json:"note" validate:"max=500"`
	Label   string               `json:"label" validate:"max=120"`
}

type SpendingHealthRequest struct {
	Credited     float64 `json:"credited"`
	Debited      float64 `json:"debited"`
	Due          float64 `json:"due"`
	TotalBalance float64 `json:"totalBalance"`
	Period       string  `json:"period" validate:"required,oneof=week month year"`
}

// Dashboard возвращает профиль, аналитику и последние транзакции.
func (h *InsightsHandler) Dashboard(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	dashboard, err := h.Finance.Dashboard(c.Request().Context(), userID)
	if err != nil {
		return financeError(c, err)
	}

	return c.JSON(http.StatusOK, dashboard)
}

// Insights возвращает аналитику за окно window дней (по умолчанию 28).
func (h *InsightsHandler) Insights(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	insights, err := h.Finance.Insights(c.Request().Context(), userID, parseWindow(c.QueryParam("window")))
	if err != nil {
		return financeError(c, err)
	}

	return c.JSON(http.StatusOK, insights)
}

// Timeframes возвращает итоги за неделю, месяц и год.
func (h *InsightsHandler) Timeframes(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	summary, err := h.Finance.Timeframes(c.Request().Context(), userID)
	if err != nil {
		return financeError(c, err)
	}

	return c.JSON(http.StatusOK, summary)
}

// Manual сохраняет суммы, введенные вручную для периода.
func (h *InsightsHandler) Manual(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ManualEntriesRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	input := service.ManualEntriesInput{
		Frame:   finance.Timeframe(req.Frame),
		Entries: make([]service.ManualEntry, 0, len(req.Entries)),
		Note:    req.Note,
		Label:   req.Label,
	}
	for _, entry := range req.Entries {
		input.Entries = append(input.Entries, service.ManualEntry{
			Field:  service.ManualField(entry.Field),
			Amount: entry.Amount,
		})
	}

	created, err := h.Finance.ManualEntries(c.Request().Context(), userID, input)
	if err != nil {
		return financeError(c, err)
	}

	publishTransactionsChanged(h.Notifier, userID, "created", len(created))
	return c.JSON(http.StatusCreated, created)
}

// SpendingHealth оценивает расходы за период из query period или за все периоды.
func (h *InsightsHandler) SpendingHealth(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	raw := strings.TrimSpace(c.QueryParam("period"))
	if raw == "" {
		report, err := h.Finance.SpendingHealthAll(c.Request().Context(), userID)
		if err != nil {
			return financeError(c, err)
		}
		return c.JSON(http.StatusOK, report)
	}

	period, ok := finance.ParseTimeframe(raw)
	if !ok {
		return badRequest(c, "period must be one of week, month, year")
	}

	result, err := h.Finance.SpendingHealth(c.Request().Context(), userID, period)
	if err != nil {
		return financeError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// AnalyzeSpending оценивает переданные суммы без обращения к хранилищу.
func (h *InsightsHandler) AnalyzeSpending(c echo.Context) error {
	var req SpendingHealthRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Period = strings.ToLower(strings.TrimSpace(req.Period))
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	return c.JSON(http.StatusOK, finance.AnalyzeSpending(finance.SpendingInput{
		Credited:     req.Credited,
		Debited:      req.Debited,
		Due:          req.Due,
		TotalBalance: req.TotalBalance,
		Period:       finance.Timeframe(req.Period),
	}))
}

// parseWindow разбирает окно аналитики; нечисловое значение дает окно по умолчанию.
func parseWindow(raw string) int {
	window, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return service.DefaultInsightsWindow
	}
	return window
}

func financeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return badRequest(c, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, "user not found")
	}

	slog.Error("finance request failed", slog.String("path", c.Path()), slog.Any("error", err))
	return serverError(c)
}
