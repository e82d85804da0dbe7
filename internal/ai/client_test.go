package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"example.com/finospark/backend/internal/config"
)

// TestNewClientWithoutKey проверяет, что без ключа клиент не создается.
func TestNewClientWithoutKey(t *testing.T) {
	client, err := NewClient(context.Background(), config.AIConfig{Provider: "groq"})
	require.NoError(t, err)
	assert.Nil(t, client)
}

// TestNewClientUnknownProvider проверяет ошибку для неизвестного провайдера.
func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), config.AIConfig{Provider: "other", APIKey: "key"})
	assert.Error(t, err)
}

// TestGroqChat проверяет запрос к Groq и разбор ответа.
func TestGroqChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var request groqChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		assert.Equal(t, "llama", request.Model)
		assert.Equal(t, defaultMaxTokens, request.MaxTokens)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" Stay neon. "},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	client := NewGroqClient(Options{APIKey: "secret", BaseURL: server.URL + "/", Model: "llama"})
	content, raw, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "Stay neon.", content)
	assert.NotEmpty(t, raw)
}

// TestGroqChatError проверяет обработку ошибки API.
func TestGroqChatError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	client := NewGroqClient(Options{APIKey: "secret", BaseURL: server.URL, Model: "llama"})
	_, _, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})

	assert.EqualError(t, err, "groq api error (429): rate limited")
}

type fakeGenerator struct {
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
	response *genai.GenerateContentResponse
	err      error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.contents = contents
	f.config = config
	return f.response, f.err
}

// TestGeminiChat проверяет сборку запроса к Gemini.
func TestGeminiChat(t *testing.T) {
	generator := &fakeGenerator{
		response: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: genai.NewContentFromText("Budget bright.", genai.RoleModel)}},
		},
	}
	client := newGeminiClient(generator, Options{Model: "gemini-2.5-flash", Temperature: 0.7})

	content, _, err := client.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Budget bright.", content)
	assert.Equal(t, "gemini-2.5-flash", generator.model)
	require.Len(t, generator.contents, 2)
	assert.Equal(t, genai.RoleUser, generator.contents[0].Role)
	assert.Equal(t, genai.RoleModel, generator.contents[1].Role)
	require.NotNil(t, generator.config.SystemInstruction)
	assert.Equal(t, "be brief", generator.config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, int32(defaultMaxTokens), generator.config.MaxOutputTokens)
}

// TestGeminiChatError проверяет пробрасывание ошибки генерации.
func TestGeminiChatError(t *testing.T) {
	client := newGeminiClient(&fakeGenerator{err: errors.New("quota")}, Options{Model: "m"})

	_, _, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hello"}})
	assert.ErrorContains(t, err, "quota")
}

// TestGeminiChatRequiresUserContent проверяет пустой запрос.
func TestGeminiChatRequiresUserContent(t *testing.T) {
	client := newGeminiClient(&fakeGenerator{}, Options{Model: "m"})

	_, _, err := client.Chat(context.Background(), []Message{{Role: RoleSystem, Content: "only system"}})
	assert.Error(t, err)
}
