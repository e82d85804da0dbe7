package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	client Client
	now    func() time.Time
}

// NewService создает сервис работы с AI-клиентом. client может быть nil.
func NewService(client Client) *Service {
	return &Service{client: client, now: time.Now}
}

// Enabled сообщает, настроен ли внешний провайдер.
func (s *Service) Enabled() bool {
	return s.client != nil
}

// Advice отвечает на вопрос пользователя о финансах.
func (s *Service) Advice(ctx context.Context, input AdviceInput) (Reply, Trace) {
	profile := "N/A"
	if input.Profile != nil {
		if payload, err := json.MarshalIndent(input.Profile, "", "  "); err == nil {
			profile = string(payload)
		}
	}

	prompt := fmt.Sprintf(`
You are Finospark, a neon-green themed AI wealth co-pilot.
User question: %s
User profile (optional): %s

Respond with concise, confidence-inspiring advice.
Use bold headers, short sentences, and end with a single motivating mantra.
Always express money in Indian Rupees (₹) with en-IN digit grouping—never use dollars.
`, input.Question, profile)

	return s.complete(ctx, RequestAdvice, prompt, func(string) string {
		return localAdvice(input.Question, input.Profile)
	})
}

// Predict строит прогноз расходов на следующий месяц.
func (s *Service) Predict(ctx context.Context, input PredictInput) (Reply, Trace) {
	transactions := "[]"
	if payload, err := json.MarshalIndent(input.Transactions, "", "  "); err == nil && len(input.Transactions) > 0 {
		transactions = string(payload)
	}

	notes := input.Notes
	if strings.TrimSpace(notes) == "" {
		notes = "None"
	}

	prompt := fmt.Sprintf(`
You are Finospark, forecasting spend for next month.
Transactions JSON:
%s

Notes from user: %s

Provide:
- Expected total spend range
- Categories likely to surge
- Risk factors to watch
- Two micro-habits that keep spending aligned with goals
Always format money as Indian Rupees (₹) with en-IN digit grouping—never use dollars.
`, transactions, notes)

	return s.complete(ctx, RequestPredict, prompt, func(errNote string) string {
		return localForecast(input.Transactions, input.Notes, errNote)
	})
}

// SpendingSummary кратко описывает тренды расходов.
func (s *Service) SpendingSummary(ctx context.Context, input SummaryInput) (Reply, Trace) {
	summaryContext := input.Context
	if strings.TrimSpace(summaryContext) == "" {
		summaryContext = "No additional context provided."
	}

	prompt := fmt.Sprintf(`
You are Finospark, an upbeat AI money coach. Summarize the user's spending trends.
Context:
%s

Structure the answer with three concise bullets:
1. Top spend categories (+ %% share estimate)
2. Behavior shifts versus last period
3. One actionable idea in neon-optimistic tone
`, summaryContext)

	return s.complete(ctx, RequestSpendingSummary, prompt, func(errNote string) string {
		return localSummary(input.Transactions, input.Profile, errNote)
	})
}

// complete вызывает модель, а при ее отсутствии или ошибке отдает локальный ответ.
func (s *Service) complete(ctx context.Context, requestType, prompt string, fallback func(errNote string) string) (Reply, Trace) {
	trace := Trace{
		RequestType: requestType,
		Provider:    providerLocal,
		Prompt:      prompt,
	}

	if s.client == nil {
		trace.Fallback = true
		return s.reply(fallback(""), true), trace
	}

	trace.Provider = s.client.Provider()
	trace.Model = s.client.Model()

	started := s.now()
	content, raw, err := s.client.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}})
	trace.Latency = s.now().Sub(started)
	trace.Raw = raw

	if err != nil {
		trace.Err = err
		trace.Fallback = true
		return s.reply(fallback(err.Error()), true), trace
	}

	return s.reply(content, false), trace
}

func (s *Service) reply(content string, fallback bool) Reply {
	return Reply{
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: s.now().UTC(),
		Fallback:  fallback,
	}
}
