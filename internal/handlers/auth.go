package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"example.com/finospark/backend/internal/auth"
	"example.com/finospark/backend/internal/models"
	"example.com/finospark/backend/internal/repository"
	"example.com/finospark/backend/internal/service"
)

const (
	msgCredentialsInvalid = "Invalid credentials."
	msgIdentityTaken      = "Username or email already in use."
)

type AuthHandler struct {
	Users        *repository.UserRepository
	Tokens       *repository.RefreshTokenRepository
	TokenManager *auth.TokenManager
	Finance      *service.Service
	SeedNewUsers bool
}

// NewAuthHandler создает обработчик авторизации.
func NewAuthHandler(users *repository.UserRepository, tokens *repository.RefreshTokenRepository, manager *auth.TokenManager, finance *service.Service, seedNewUsers bool) *AuthHandler {
	return &AuthHandler{
		Users:        users,
		Tokens:       tokens,
		TokenManager: manager,
		Finance:      finance,
		SeedNewUsers: seedNewUsers,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,handle"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type AuthUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     *string   `json:"name,omitempty"`
	Email    string    `json:"email"`
}

type AuthResponse struct {
	auth.TokenPair
	User AuthUser `json:"user"`
}

type SessionResponse struct {
	User  AuthUser `json:"user"`
	Coins int      `json:"coins"`
}

// Register регистрирует пользователя, заполняет демо-данными и выдает токены.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx := c.Request().Context()

	exists, err := h.Users.Exists(ctx, req.Username, req.Email)
	if err != nil {
		return serverError(c)
	}
	if exists {
		return conflict(c, msgIdentityTaken)
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return serverError(c)
	}

	newUser := models.NewUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         &req.Name,
		Balance:      decimal.Zero,
		SavingsGoal:  decimal.Zero,
	}
	if h.SeedNewUsers {
		newUser.Balance = service.SeedBalance
		newUser.SavingsGoal = service.SeedSavingsGoal
	}

	user, err := h.Users.Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return conflict(c, msgIdentityTaken)
		}
		return serverError(c)
	}

	if h.SeedNewUsers {
		if err := h.Finance.Seed(ctx, user.ID); err != nil {
			slog.Warn("seed new user failed", slog.String("user_id", user.ID.String()), slog.Any("error", err))
		}
	}

	response, err := h.issueTokens(ctx, user)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusCreated, response)
}

// Login выполняет вход по email или имени пользователя.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	user, err := h.Users.GetByIdentifier(c.Request().Context(), strings.TrimSpace(req.Identifier))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.CompareMissing(req.Password)
			return invalidCredentials(c)
		}
		return serverError(c)
	}

	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return invalidCredentials(c)
	}

	response, err := h.issueTokens(c.Request().Context(), user)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, response)
}

// Refresh обновляет пару токенов и отзывает предъявленный refresh-токен.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	ctx := c.Request().Context()

	parsed, err := h.TokenManager.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return unauthorized(c)
	}

	stored, err := h.Tokens.GetByID(ctx, parsed.TokenID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	if err := auth.VerifyStored(stored, parsed, req.RefreshToken, time.Now()); err != nil {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(ctx, parsed.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	pair, err := h.TokenManager.NewTokenPair(user.ID)
	if err != nil {
		return serverError(c)
	}

	if err := h.Tokens.Rotate(ctx, stored.ID, auth.RefreshRecord(user.ID, pair)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return serverError(c)
	}

	return c.JSON(http.StatusOK, AuthResponse{TokenPair: pair, User: toAuthUser(user)})
}

// Logout отзывает refresh-токен. Неизвестный токен не считается ошибкой.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}

	parsed, err := h.TokenManager.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return unauthorized(c)
	}

	if err := h.Tokens.Revoke(c.Request().Context(), parsed.TokenID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return serverError(c)
	}

	return c.NoContent(http.StatusNoContent)
}

// Me возвращает текущего пользователя и баланс монет.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	user, err := h.Users.GetByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "user not found")
		}
		return serverError(c)
	}

	coins, err := h.Finance.Coins(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, SessionResponse{User: toAuthUser(user), Coins: coins})
}

func (h *AuthHandler) issueTokens(ctx context.Context, user models.User) (AuthResponse, error) {
	pair, err := h.TokenManager.NewTokenPair(user.ID)
	if err != nil {
		return AuthResponse{}, err
	}

	if err := h.Tokens.Create(ctx, auth.RefreshRecord(user.ID, pair)); err != nil {
		return AuthResponse{}, err
	}

	return AuthResponse{TokenPair: pair, User: toAuthUser(user)}, nil
}

func toAuthUser(user models.User) AuthUser {
	return AuthUser{
		ID:       user.ID,
		Username: user.Username,
		Name:     user.Name,
		Email:    user.Email,
	}
}

// validationMessage собирает ошибки валидатора в одну строку.
func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return "validation failed"
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		if fieldErr.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s: %s=%s", fieldErr.Field(), fieldErr.Tag(), fieldErr.Param()))
			continue
		}
		messages = append(messages, fmt.Sprintf("%s: %s", fieldErr.Field(), fieldErr.Tag()))
	}

	return strings.Join(messages, ", ")
}

func validationFailed(c echo.Context, err error) error {
	return badRequest(c, validationMessage(err))
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
}

func invalidCredentials(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msgCredentialsInvalid})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, map[string]string{"error": message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, map[string]string{"error": message})
}

func forbidden(c echo.Context) error {
	return c.JSON(http.StatusForbidden, map[string]string{"error": "access denied"})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
