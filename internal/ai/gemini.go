package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// contentGenerator: часть genai.Models, которой пользуется клиент.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient вызывает Gemini через google.golang.org/genai.
type GeminiClient struct {
	models      contentGenerator
	model       string
	maxTokens   int
	temperature float64
}

// NewGeminiClient создает клиент Gemini с заданными параметрами.
func NewGeminiClient(ctx context.Context, options Options) (*GeminiClient, error) {
	if strings.TrimSpace(options.APIKey) == "" {
		return nil, errors.New("gemini api key is missing")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     options.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: options.Timeout},
	}
	if baseURL := strings.TrimRight(options.BaseURL, "/"); baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGeminiClient(client.Models, options), nil
}

func newGeminiClient(models contentGenerator, options Options) *GeminiClient {
	return &GeminiClient{
		models:      models,
		model:       options.Model,
		maxTokens:   options.MaxTokens,
		temperature: options.Temperature,
	}
}

func (c *GeminiClient) Provider() string {
	return "gemini"
}

func (c *GeminiClient) Model() string {
	return c.model
}

// Chat отправляет сообщения в Gemini и возвращает текст ответа и сырой ответ API.
func (c *GeminiClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	contents, system := buildGeminiContents(messages)
	if len(contents) == 0 {
		return "", nil, errors.New("gemini request has no user content")
	}

	generation := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(resolveTemperature(c.temperature))),
		MaxOutputTokens: int32(resolveMaxTokens(c.maxTokens)),
	}
	if system != nil {
		generation.SystemInstruction = system
	}

	response, err := c.models.GenerateContent(ctx, c.model, contents, generation)
	if err != nil {
		return "", nil, fmt.Errorf("gemini generate content: %w", err)
	}

	raw, err := json.Marshal(response)
	if err != nil {
		raw = nil
	}

	text := strings.TrimSpace(response.Text())
	if text == "" {
		return "", raw, errors.New("gemini response missing content")
	}

	return text, raw, nil
}

func buildGeminiContents(messages []Message) ([]*genai.Content, *genai.Content) {
	contents := make([]*genai.Content, 0, len(messages))
	systemParts := make([]*genai.Part, 0)

	for _, message := range messages {
		text := strings.TrimSpace(message.Content)
		if text == "" {
			continue
		}

		switch strings.ToLower(strings.TrimSpace(message.Role)) {
		case RoleSystem:
			systemParts = append(systemParts, genai.NewPartFromText(text))
		case RoleAssistant, "model":
			contents = append(contents, genai.NewContentFromText(text, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(text, genai.RoleUser))
		}
	}

	if len(systemParts) == 0 {
		return contents, nil
	}

	return contents, &genai.Content{Parts: systemParts}
}
