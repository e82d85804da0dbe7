package auth

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	ContextUserIDKey = "user_id"

	// AccessTokenQuery используется SSE-клиентами, которые не умеют задавать заголовки.
	AccessTokenQuery = "access_token"
)

// JWTMiddleware проверяет access-токен из заголовка Authorization и сохраняет user_id в контексте.
func JWTMiddleware(manager *TokenManager) echo.MiddlewareFunc {
	return jwtMiddleware(manager, false)
}

// StreamJWTMiddleware дополнительно принимает токен из query access_token.
// Подключается только к SSE-потоку.
func StreamJWTMiddleware(manager *TokenManager) echo.MiddlewareFunc {
	return jwtMiddleware(manager, true)
}

func jwtMiddleware(manager *TokenManager, allowQuery bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, ok := bearerToken(c, allowQuery)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing or invalid authorization"})
			}

			parsed, err := manager.ParseAccessToken(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			c.Set(ContextUserIDKey, parsed.UserID)
			return next(c)
		}
	}
}

func bearerToken(c echo.Context, allowQuery bool) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		if !allowQuery {
			return "", false
		}
		token := strings.TrimSpace(c.QueryParam(AccessTokenQuery))
		return token, token != ""
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// UserIDFromContext извлекает идентификатор пользователя из контекста.
func UserIDFromContext(c echo.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(ContextUserIDKey).(uuid.UUID)
	return userID, ok
}
