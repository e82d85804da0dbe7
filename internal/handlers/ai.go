package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finospark/backend/internal/ai"
	"example.com/finospark/backend/internal/auth"
	"example.com/finospark/backend/internal/finance"
	"example.com/finospark/backend/internal/notifications"
	"example.com/finospark/backend/internal/repository"
	"example.com/finospark/backend/internal/service"
)

type AIHandler struct {
	Service  *ai.Service
	Finance  *service.Service
	AIRepo   *repository.AIRepository
	Notifier *notifications.Hub
}

// NewAIHandler создает обработчик AI-запросов.
func NewAIHandler(service *ai.Service, finance *service.Service, aiRepo *repository.AIRepository, notifier *notifications.Hub) *AIHandler {
	return &AIHandler{
		Service:  service,
		Finance:  finance,
		AIRepo:   aiRepo,
		Notifier: notifier,
	}
}

type AdviceRequest struct {
	Question string `json:"question" validate:"required,max=2000"`
}

type PredictRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type SpendingSummaryRequest struct {
	Context string `json:"context" validate:"max=4000"`
}

// Advice отвечает на вопрос пользователя с учетом его профиля.
func (h *AIHandler) Advice(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req AdviceRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Question = strings.TrimSpace(req.Question)
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx := c.Request().Context()
	snapshot, loaded := h.snapshot(ctx, userID)

	input := ai.AdviceInput{Question: req.Question}
	if loaded {
		input.Profile = toAIProfile(snapshot.Profile)
	}

	reply, trace := h.Service.Advice(ctx, input)
	return h.respond(c, userID, req, reply, trace)
}

// Predict прогнозирует расходы следующего месяца по последним транзакциям.
func (h *AIHandler) Predict(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req PredictRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Notes = strings.TrimSpace(req.Notes)
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx := c.Request().Context()
	snapshot, _ := h.snapshot(ctx, userID)

	reply, trace := h.Service.Predict(ctx, ai.PredictInput{
		Transactions: snapshot.Transactions,
		Notes:        req.Notes,
	})
	return h.respond(c, userID, req, reply, trace)
}

// SpendingSummary кратко описывает тренды расходов пользователя.
func (h *AIHandler) SpendingSummary(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req SpendingSummaryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Context = strings.TrimSpace(req.Context)
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx := c.Request().Context()
	snapshot, loaded := h.snapshot(ctx, userID)

	input := ai.SummaryInput{
		Context:      req.Context,
		Transactions: snapshot.Transactions,
	}
	if loaded {
		input.Profile = toAIProfile(snapshot.Profile)
		if input.Context == "" {
			input.Context = summaryContext(snapshot)
		}
	}

	reply, trace := h.Service.SpendingSummary(ctx, input)
	return h.respond(c, userID, req, reply, trace)
}

// snapshot загружает профиль и транзакции; ошибка не прерывает запрос, ответ строится без контекста.
func (h *AIHandler) snapshot(ctx context.Context, userID uuid.UUID) (service.Snapshot, bool) {
	snapshot, err := h.Finance.Snapshot(ctx, userID)
	if err != nil {
		slog.Warn("ai context unavailable", slog.String("user_id", userID.String()), slog.Any("error", err))
		return service.Snapshot{}, false
	}
	return snapshot, true
}

func (h *AIHandler) respond(c echo.Context, userID uuid.UUID, request any, reply ai.Reply, trace ai.Trace) error {
	h.logAIRequest(c.Request().Context(), userID, request, reply, trace)

	if trace.Fallback {
		slog.Warn("ai fallback used",
			slog.String("request_type", trace.RequestType),
			slog.String("user_id", userID.String()),
		)
	}

	publishAIResponse(h.Notifier, userID, trace.RequestType, reply.Fallback)
	return c.JSON(http.StatusOK, map[string]ai.Reply{"message": reply})
}

func (h *AIHandler) logAIRequest(ctx context.Context, userID uuid.UUID, request any, reply ai.Reply, trace ai.Trace) {
	if h.AIRepo == nil {
		return
	}

	requestPayload, _ := json.Marshal(request)
	responsePayload, _ := json.Marshal(reply)

	log := repository.AIRequestLog{
		UserID:          userID,
		RequestType:     trace.RequestType,
		Provider:        trace.Provider,
		Model:           trace.Model,
		Prompt:          trace.Prompt,
		RequestPayload:  requestPayload,
		ResponsePayload: responsePayload,
		RawResponse:     string(trace.Raw),
		Success:         trace.Err == nil,
		Fallback:        trace.Fallback,
		Latency:         trace.Latency,
	}
	if trace.Err != nil {
		errMsg := trace.Err.Error()
		log.ErrorMessage = &errMsg
	}

	if err := h.AIRepo.LogRequest(ctx, log); err != nil {
		slog.Error("ai request log failed", slog.String("user_id", userID.String()), slog.Any("error", err))
	}
}

func toAIProfile(profile service.Profile) *ai.Profile {
	return &ai.Profile{
		Name:        profile.Name,
		Balance:     profile.Balance,
		SavingsGoal: profile.SavingsGoal,
		Coins:       profile.Coins,
	}
}

// summaryContext собирает контекст для сводки из последних транзакций.
func summaryContext(snapshot service.Snapshot) string {
	credit := finance.SumByType(snapshot.Transactions, finance.TransactionTypeCredit)
	debit := finance.SumByType(snapshot.Transactions, finance.TransactionTypeDebit)

	lines := []string{
		"Recent credits: " + ai.FormatINR(credit),
		"Recent debits: " + ai.FormatINR(debit),
		"Balance: " + ai.FormatINR(snapshot.Profile.Balance),
	}
	for _, slice := range finance.TopCategories(finance.CategoryTotals(snapshot.Transactions, finance.TransactionTypeDebit), 3) {
		lines = append(lines, slice.Name+": "+ai.FormatINR(slice.Value))
	}
	return strings.Join(lines, "\n")
}
