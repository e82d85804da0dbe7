package config

import (
	"reflect"
	"testing"
)

// TestParseCSVEnv проверяет разбор списка email из ENV.
func TestParseCSVEnv(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Admin@example.com, ,USER@Example.com ")

	got := parseCSVEnv("ADMIN_EMAILS")
	want := []string{"admin@example.com", "user@example.com"}

	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestParseCSVEnvMissing проверяет поведение при отсутствии переменной.
func TestParseCSVEnvMissing(t *testing.T) {
	got := parseCSVEnv("MISSING_ENV")
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

// TestParseBoolEnv проверяет разбор булевых флагов.
func TestParseBoolEnv(t *testing.T) {
	t.Setenv("DB_AUTO_MIGRATE", "false")

	got, err := parseBoolEnv("DB_AUTO_MIGRATE", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Fatal("expected false")
	}

	t.Setenv("DB_AUTO_MIGRATE", "maybe")
	if _, err := parseBoolEnv("DB_AUTO_MIGRATE", true); err == nil {
		t.Fatal("expected error for invalid boolean")
	}

	got, err = parseBoolEnv("MISSING_BOOL_ENV", true)
	if err != nil || !got {
		t.Fatalf("expected fallback true, got %v %v", got, err)
	}
}

// TestLoadFinanceDefaults проверяет значения по умолчанию для дашборда.
func TestLoadFinanceDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("AI_PROVIDER", "gemini")
	t.Setenv("AI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Finance.DashboardTransactionLimit != 200 {
		t.Fatalf("expected 200 dashboard transactions, got %d", cfg.Finance.DashboardTransactionLimit)
	}
	if cfg.Finance.DashboardRewardLimit != 10 {
		t.Fatalf("expected 10 dashboard rewards, got %d", cfg.Finance.DashboardRewardLimit)
	}
	if cfg.Finance.TransactionPageSize != 40 || cfg.Finance.TransactionMaxPageSize != 200 {
		t.Fatalf("unexpected page sizes %d/%d", cfg.Finance.TransactionPageSize, cfg.Finance.TransactionMaxPageSize)
	}
	if cfg.AI.APIKey != "gemini-key" {
		t.Fatalf("expected GEMINI_API_KEY fallback, got %q", cfg.AI.APIKey)
	}
	if cfg.AI.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %s", cfg.AI.Model)
	}
}

// TestLoadRejectsUnknownProvider проверяет валидацию провайдера.
func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("AI_PROVIDER", "openai")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
