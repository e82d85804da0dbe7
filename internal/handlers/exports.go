package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finospark/backend/internal/auth"
	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/repository"
)

const (
	timeLayout          = time.RFC3339
	dateLayout          = "2006-01-02"
	defaultExportWindow = 365 * finance.DayDuration
)

var transactionCSVHeader = []string{
	"id",
	"timestamp",
	"type",
	"amount",
	"category",
	"description",
	"label",
	"note",
	"source",
	"timeframe",
	"tags",
}

// ExportJSON выгружает транзакции за период в JSON-файл.
func (h *TransactionHandler) ExportJSON(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	from, to, end, err := parseExportRange(c.QueryParam("from"), c.QueryParam("to"), h.Finance.Now())
	if err != nil {
		return badRequest(c, err.Error())
	}

	transactions, err := h.loadRange(c.Request().Context(), userID, from, end)
	if err != nil {
		return exportError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, attachment(exportFilename(from, to, "json")))
	return c.JSON(http.StatusOK, transactions)
}

// ExportCSV выгружает транзакции за период в CSV-файл.
func (h *TransactionHandler) ExportCSV(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	from, to, end, err := parseExportRange(c.QueryParam("from"), c.QueryParam("to"), h.Finance.Now())
	if err != nil {
		return badRequest(c, err.Error())
	}

	transactions, err := h.loadRange(c.Request().Context(), userID, from, end)
	if err != nil {
		return exportError(c, err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writeTransactionsCSV(writer, transactions); err != nil {
		return serverError(c)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return serverError(c)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, attachment(exportFilename(from, to, "csv")))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// loadRange загружает транзакции из полуинтервала [from, end).
func (h *TransactionHandler) loadRange(ctx context.Context, userID uuid.UUID, from, end time.Time) ([]finance.Transaction, error) {
	records, err := h.Transactions.ListRange(ctx, userID, from, end)
	if err != nil {
		return nil, err
	}

	transactions := h.Finance.Enrich(userID, records)
	if transactions == nil {
		transactions = []finance.Transaction{}
	}
	return transactions, nil
}

func exportError(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrInvalid) {
		return badRequest(c, "from must be before to")
	}
	return serverError(c)
}

// parseExportRange разбирает границы выгрузки; по умолчанию последние 365 дней до now.
// Граница to включается: end это исключающая верхняя граница запроса.
// Для to без времени выгружается весь этот день.
func parseExportRange(rawFrom, rawTo string, now time.Time) (from, to, end time.Time, err error) {
	to = now
	end = now.Add(time.Millisecond)
	if raw := strings.TrimSpace(rawTo); raw != "" {
		if day, dateErr := time.Parse(dateLayout, raw); dateErr == nil {
			to = day
			end = day.AddDate(0, 0, 1)
		} else {
			parsed := parseSince(raw)
			if parsed == nil {
				return time.Time{}, time.Time{}, time.Time{}, errors.New("invalid to")
			}
			to = *parsed
			end = to.Add(time.Millisecond)
		}
	}

	from = to.Add(-defaultExportWindow)
	if strings.TrimSpace(rawFrom) != "" {
		parsed := parseSince(rawFrom)
		if parsed == nil {
			return time.Time{}, time.Time{}, time.Time{}, errors.New("invalid from")
		}
		from = *parsed
	}

	return from, to, end, nil
}

func writeTransactionsCSV(writer *csv.Writer, transactions []finance.Transaction) error {
	if err := writer.Write(transactionCSVHeader); err != nil {
		return err
	}

	for _, txn := range transactions {
		record := []string{
			txn.ID,
			txn.Timestamp.Format(timeLayout),
			string(txn.Type),
			txn.Amount.StringFixed(2),
			txn.Category,
			txn.Description,
			txn.Label,
			txn.Note,
			string(txn.Source),
			string(txn.Timeframe),
			strings.Join(txn.Tags, "|"),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func exportFilename(from, to time.Time, ext string) string {
	return "transactions-" + from.Format(dateLayout) + "-" + to.Format(dateLayout) + "." + ext
}

func attachment(filename string) string {
	return "attachment; filename=\"" + filename + "\""
}
