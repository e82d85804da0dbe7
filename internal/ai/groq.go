package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const groqDefaultBaseURL = "https://api.groq.com/openai/v1"

// GroqClient calls the Groq OpenAI-compatible chat completions API.
type GroqClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

type groqChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type groqChatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewGroqClient создает клиент Groq с заданными параметрами.
func NewGroqClient(options Options) *GroqClient {
	baseURL := strings.TrimRight(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = groqDefaultBaseURL
	}

	return &GroqClient{
		apiKey:      options.APIKey,
		baseURL:     baseURL,
		model:       options.Model,
		maxTokens:   options.MaxTokens,
		temperature: options.Temperature,
		httpClient: &http.Client{
			Timeout: options.Timeout,
		},
	}
}

func (c *GroqClient) Provider() string {
	return "groq"
}

func (c *GroqClient) Model() string {
	return c.model
}

// Chat отправляет сообщения в Groq и возвращает текст ответа и сырой ответ API.
func (c *GroqClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", nil, errors.New("groq api key is missing")
	}

	payload, err := json.Marshal(groqChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: resolveTemperature(c.temperature),
		MaxTokens:   resolveMaxTokens(c.maxTokens),
	})
	if err != nil {
		return "", nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", nil, err
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", nil, err
	}

	var parsed groqChatResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		if decodeErr == nil && parsed.Error != nil {
			return "", body, fmt.Errorf("groq api error (%d): %s", response.StatusCode, parsed.Error.Message)
		}
		return "", body, fmt.Errorf("groq api error (%d): %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	if decodeErr != nil {
		return "", body, decodeErr
	}

	if len(parsed.Choices) == 0 {
		return "", body, errors.New("groq response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", body, fmt.Errorf("groq response is empty (finish_reason=%s)", parsed.Choices[0].FinishReason)
	}

	return content, body, nil
}
