package server

import (
	"github.com/labstack/echo/v4"

	"example.com/finospark/backend/internal/handlers"
)

type routeHandlers struct {
	health        *handlers.HealthHandler
	auth          *handlers.AuthHandler
	transactions  *handlers.TransactionHandler
	insights      *handlers.InsightsHandler
	rewards       *handlers.RewardHandler
	ai            *handlers.AIHandler
	notifications *handlers.NotificationHandler
	admin         *handlers.AdminHandler
}

type routeMiddleware struct {
	auth          echo.MiddlewareFunc
	streamAuth    echo.MiddlewareFunc
	admin         echo.MiddlewareFunc
	authRateLimit echo.MiddlewareFunc
	aiRateLimit   echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, h routeHandlers, mw routeMiddleware) {
	e.GET("/health", h.health.Health)

	api := e.Group("/api/v1")
	api.GET("/health", h.health.Health)

	authGroup := api.Group("/auth", mw.authRateLimit)
	authGroup.POST("/register", h.auth.Register)
	authGroup.POST("/login", h.auth.Login)
	authGroup.POST("/refresh", h.auth.Refresh)
	authGroup.POST("/logout", h.auth.Logout)
	authGroup.GET("/me", h.auth.Me, mw.auth)

	transactions := api.Group("/transactions", mw.auth)
	transactions.GET("", h.transactions.List)
	transactions.POST("", h.transactions.Create)
	transactions.GET("/export/json", h.transactions.ExportJSON)
	transactions.GET("/export/csv", h.transactions.ExportCSV)
	transactions.GET("/:id", h.transactions.Get)
	transactions.PUT("/:id", h.transactions.Update)
	transactions.DELETE("/:id", h.transactions.Delete)

	api.GET("/dashboard", h.insights.Dashboard, mw.auth)

	insights := api.Group("/insights", mw.auth)
	insights.GET("", h.insights.Insights)
	insights.POST("/manual", h.insights.Manual)
	insights.GET("/timeframes", h.insights.Timeframes)
	insights.GET("/spending-health", h.insights.SpendingHealth)
	insights.POST("/spending-health", h.insights.AnalyzeSpending)

	rewards := api.Group("/rewards", mw.auth)
	rewards.GET("/coins", h.rewards.Coins)
	rewards.POST("/check-in", h.rewards.CheckIn)
	rewards.POST("/weekly-savings", h.rewards.WeeklySavings)

	notifications := api.Group("/notifications", mw.streamAuth)
	notifications.GET("/stream", h.notifications.Stream)

	admin := api.Group("/admin", mw.auth, mw.admin)
	admin.GET("/users", h.admin.ListUsers)
	admin.GET("/ai-requests", h.admin.ListAIRequests)
	admin.GET("/usage", h.admin.Usage)

	aiGroup := api.Group("/ai", mw.auth, mw.aiRateLimit)
	aiGroup.POST("/advice", h.ai.Advice)
	aiGroup.POST("/predict", h.ai.Predict)
	aiGroup.POST("/spending-summary", h.ai.SpendingSummary)
}
