package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"example.com/finospark/backend/internal/auth"
	"example.com/finospark/backend/internal/notifications"
	"example.com/finospark/backend/internal/service"
)

type RewardHandler struct {
	Finance  *service.Service
	Notifier *notifications.Hub
}

// NewRewardHandler создает обработчик наград.
func NewRewardHandler(finance *service.Service, notifier *notifications.Hub) *RewardHandler {
	return &RewardHandler{Finance: finance, Notifier: notifier}
}

// CheckIn начисляет монеты за ежедневный вход.
func (h *RewardHandler) CheckIn(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	outcome, err := h.Finance.CheckIn(c.Request().Context(), userID)
	if err != nil {
		return financeError(c, err)
	}

	h.publish(userID, outcome)
	return c.JSON(http.StatusOK, outcome)
}

// WeeklySavings начисляет монеты за сбережения текущей недели.
func (h *RewardHandler) WeeklySavings(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	outcome, err := h.Finance.WeeklySavings(c.Request().Context(), userID)
	if err != nil {
		return financeError(c, err)
	}

	h.publish(userID, outcome)
	return c.JSON(http.StatusOK, outcome)
}

// Coins возвращает баланс монет.
func (h *RewardHandler) Coins(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	coins, err := h.Finance.Coins(c.Request().Context(), userID)
	if err != nil {
		return financeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]int{"coins": coins})
}

func (h *RewardHandler) publish(userID uuid.UUID, outcome service.RewardOutcome) {
	if !outcome.Success {
		return
	}

	h.Notifier.Publish(userID, notifications.EventRewardsUpdated, map[string]int{
		"coins":        outcome.Coins,
		"coinsAwarded": outcome.CoinsAwarded,
	})
}
