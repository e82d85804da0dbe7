package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"example.com/finospark/backend/internal/config"
)

const (
	defaultMaxTokens   = 800
	defaultTemperature = 0.4

	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options: общие параметры клиентов моделей.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// Client: провайдер текстовых ответов модели.
// Chat возвращает текст ответа и сырой ответ API для журнала.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, []byte, error)
	Provider() string
	Model() string
}

// NewClient выбирает клиента по конфигурации. Без ключа возвращает nil:
// сервис в этом случае отвечает локальными подсказками.
func NewClient(ctx context.Context, cfg config.AIConfig) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, nil
	}

	options := Options{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Timeout:     cfg.Timeout,
		MaxTokens:   cfg.MaxOutputTokens,
		Temperature: cfg.Temperature,
	}

	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return NewGeminiClient(ctx, options)
	case "groq":
		return NewGroqClient(options), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}

func resolveTemperature(value float64) float64 {
	if value > 0 {
		return value
	}

	return defaultTemperature
}
