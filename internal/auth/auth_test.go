package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/finospark/backend/internal/config"
)

func testManager(now time.Time) *TokenManager {
	manager := NewTokenManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		JWTIssuer:       "finospark",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	manager.now = func() time.Time { return now }
	return manager
}

// TestTokenPairRoundTrip проверяет выпуск и разбор токенов.
func TestTokenPairRoundTrip(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	manager := testManager(now)
	userID := uuid.New()

	pair, err := manager.NewTokenPair(userID)
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), pair.AccessExpiresAt)

	access, err := manager.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, access.UserID)

	refresh, err := manager.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshID, refresh.TokenID)

	_, err = manager.ParseAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

// TestExpiredToken проверяет отказ для просроченного токена.
func TestExpiredToken(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	manager := testManager(now)

	pair, err := manager.NewTokenPair(uuid.New())
	require.NoError(t, err)

	manager.now = func() time.Time { return now.Add(time.Hour) }
	_, err = manager.ParseAccessToken(pair.AccessToken)
	assert.Error(t, err)
}

// TestVerifyStored проверяет сверку refresh-токена с записью.
func TestVerifyStored(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	manager := testManager(now)
	userID := uuid.New()

	pair, err := manager.NewTokenPair(userID)
	require.NoError(t, err)
	parsed, err := manager.ParseRefreshToken(pair.RefreshToken)
	require.NoError(t, err)

	stored := RefreshRecord(userID, pair)
	assert.NoError(t, VerifyStored(stored, parsed, pair.RefreshToken, now))
	assert.ErrorIs(t, VerifyStored(stored, parsed, "other", now), ErrRefreshRejected)
	assert.ErrorIs(t, VerifyStored(stored, parsed, pair.RefreshToken, now.Add(48*time.Hour)), ErrRefreshRejected)

	revokedAt := now
	stored.RevokedAt = &revokedAt
	assert.ErrorIs(t, VerifyStored(stored, parsed, pair.RefreshToken, now), ErrRefreshRejected)
}

// TestComparePassword проверяет хэширование пароля.
func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("neon-secret")
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "neon-secret"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), ErrPasswordMismatch)
}

// TestJWTMiddleware проверяет заголовок и отказ для токена в query.
func TestJWTMiddleware(t *testing.T) {
	manager := testManager(time.Now())
	userID := uuid.New()
	pair, err := manager.NewTokenPair(userID)
	require.NoError(t, err)

	e := echo.New()
	handler := JWTMiddleware(manager)(func(c echo.Context) error {
		id, ok := UserIDFromContext(c)
		require.True(t, ok)
		return c.String(http.StatusOK, id.String())
	})

	cases := []struct {
		name   string
		target string
		header string
		status int
	}{
		{name: "bearer header", target: "/", header: "Bearer " + pair.AccessToken, status: http.StatusOK},
		{name: "query token rejected", target: "/?access_token=" + pair.AccessToken, status: http.StatusUnauthorized},
		{name: "missing", target: "/", status: http.StatusUnauthorized},
		{name: "wrong scheme", target: "/", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "refresh token", target: "/", header: "Bearer " + pair.RefreshToken, status: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()

			require.NoError(t, handler(e.NewContext(req, rec)))
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, userID.String(), rec.Body.String())
			}
		})
	}
}

// TestStreamJWTMiddleware проверяет, что SSE-поток принимает токен из query.
func TestStreamJWTMiddleware(t *testing.T) {
	manager := testManager(time.Now())
	userID := uuid.New()
	pair, err := manager.NewTokenPair(userID)
	require.NoError(t, err)

	e := echo.New()
	handler := StreamJWTMiddleware(manager)(func(c echo.Context) error {
		id, ok := UserIDFromContext(c)
		require.True(t, ok)
		return c.String(http.StatusOK, id.String())
	})

	cases := []struct {
		name   string
		target string
		header string
		status int
	}{
		{name: "query token", target: "/stream?access_token=" + pair.AccessToken, status: http.StatusOK},
		{name: "bearer header", target: "/stream", header: "Bearer " + pair.AccessToken, status: http.StatusOK},
		{name: "query refresh token", target: "/stream?access_token=" + pair.RefreshToken, status: http.StatusUnauthorized},
		{name: "empty query", target: "/stream?access_token=", status: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()

			require.NoError(t, handler(e.NewContext(req, rec)))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
