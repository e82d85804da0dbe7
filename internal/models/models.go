package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID           uuid.UUID       `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Name         *string         `json:"name,omitempty"`
	AvatarURL    *string         `json:"avatar_url,omitempty"`
	Balance      decimal.Decimal `json:"balance"`
	SavingsGoal  decimal.Decimal `json:"savings_goal"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewUser: данные для регистрации пользователя.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Name         *string
	AvatarURL    *string
	Balance      decimal.Decimal
	SavingsGoal  decimal.Decimal
}

type Reward struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Points      int       `json:"points"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionInput: транзакция перед записью в хранилище.
type TransactionInput struct {
	Amount      decimal.Decimal
	Type        string
	Category    string
	Description string
	OccurredAt  time.Time
	Label       *string
	Note        *string
	Source      string
	Timeframe   *string
	Tags        []string
}

// TransactionPatch: частичное обновление транзакции, nil означает "не менять".
type TransactionPatch struct {
	Amount      *decimal.Decimal
	Type        *string
	Category    *string
	Description *string
	OccurredAt  *time.Time
	Label       *string
	Note        *string
	Timeframe   *string
	Source      *string
	Tags        []string
}

type RefreshToken struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	ReplacedBy *uuid.UUID `json:"replaced_by,omitempty"`
}
