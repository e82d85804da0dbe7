package ai

import (
	"time"

	"github.com/shopspring/decimal"

	"example.com/finospark/backend/internal/finance"
)

const (
	RequestAdvice          = "advice"
	RequestPredict         = "predict"
	RequestSpendingSummary = "spending_summary"

	providerLocal = "local"
)

// Profile: сведения о пользователе, которые попадают в подсказки.
type Profile struct {
	Name        string          `json:"name,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	SavingsGoal decimal.Decimal `json:"savingsGoal"`
	Coins       int             `json:"coins"`
}

type AdviceInput struct {
	Question string
	Profile  *Profile
}

type PredictInput struct {
	Transactions []finance.Transaction
	Notes        string
}

type SummaryInput struct {
	Context      string
	Transactions []finance.Transaction
	Profile      *Profile
}

// Reply: ответ ассистента в формате чата.
type Reply struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Fallback  bool      `json:"fallback"`
}

// Trace описывает обращение к модели для журнала ai_requests.
type Trace struct {
	RequestType string
	Provider    string
	Model       string
	Prompt      string
	Raw         []byte
	Latency     time.Duration
	Fallback    bool
	Err         error
}
