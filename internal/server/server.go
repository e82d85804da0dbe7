package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/finospark/backend/internal/ai"
	"example.com/finospark/backend/internal/auth"
	"example.com/finospark/backend/internal/config"
	"example.com/finospark/backend/internal/handlers"
	"example.com/finospark/backend/internal/notifications"
	"example.com/finospark/backend/internal/repository"
	"example.com/finospark/backend/internal/service"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) (*echo.Echo, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	aiClient, err := ai.NewClient(ctx, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("create ai client: %w", err)
	}
	if aiClient == nil {
		logger.Warn("ai provider is not configured, local replies will be used")
	}

	tokenManager := auth.NewTokenManager(cfg.Auth)
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	aiRepo := repository.NewAIRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	notificationHub := notifications.NewHub()

	financeService := service.New(transactionRepo, rewardRepo, userRepo, cfg.Finance, logger)
	aiService := ai.NewService(aiClient)

	registerRoutes(e, routeHandlers{
		health:        handlers.NewHealthHandler(db),
		auth:          handlers.NewAuthHandler(userRepo, tokenRepo, tokenManager, financeService, cfg.Finance.SeedNewUsers),
		transactions:  handlers.NewTransactionHandler(transactionRepo, financeService, notificationHub, cfg.Finance),
		insights:      handlers.NewInsightsHandler(financeService, notificationHub),
		rewards:       handlers.NewRewardHandler(financeService, notificationHub),
		ai:            handlers.NewAIHandler(aiService, financeService, aiRepo, notificationHub),
		notifications: handlers.NewNotificationHandler(notificationHub),
		admin:         handlers.NewAdminHandler(adminRepo),
	}, routeMiddleware{
		auth:          auth.JWTMiddleware(tokenManager),
		streamAuth:    auth.StreamJWTMiddleware(tokenManager),
		admin:         handlers.AdminMiddleware(userRepo, cfg.Admin.Emails),
		authRateLimit: authRateLimiter(cfg.Auth),
		aiRateLimit:   aiRateLimiter(cfg.AI),
	})

	return e, nil
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", redactURI(v.URI)),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func authRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}

func aiRateLimiter(cfg config.AIConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}

// redactURI скрывает значение access_token в строке запроса для логов.
func redactURI(uri string) string {
	path, rawQuery, found := strings.Cut(uri, "?")
	if !found {
		return uri
	}

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return path
	}
	if !query.Has(auth.AccessTokenQuery) {
		return uri
	}

	query.Set(auth.AccessTokenQuery, "REDACTED")
	return path + "?" + query.Encode()
}
