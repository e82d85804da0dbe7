package server

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// TestRedactURI проверяет, что токен из query не попадает в лог.
func TestRedactURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{uri: "/api/v1/transactions", want: "/api/v1/transactions"},
		{uri: "/api/v1/transactions?limit=10", want: "/api/v1/transactions?limit=10"},
		{uri: "/api/v1/notifications/stream?access_token=secret.jwt", want: "/api/v1/notifications/stream?access_token=REDACTED"},
		{uri: "/api/v1/notifications/stream?access_token=secret.jwt&x=1", want: "/api/v1/notifications/stream?access_token=REDACTED&x=1"},
		{uri: "/api/v1/stream?%zz", want: "/api/v1/stream"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, redactURI(tt.uri), tt.uri)
	}
}

// TestRequestLoggerHidesAccessToken проверяет запись лога запроса с токеном в query.
func TestRequestLoggerHidesAccessToken(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	e := echo.New()
	e.Use(requestLogger(logger))
	e.GET("/api/v1/notifications/stream", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream?access_token=secret.jwt", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "request completed")
	assert.Contains(t, buf.String(), "access_token=REDACTED")
	assert.NotContains(t, buf.String(), "secret.jwt")
}
