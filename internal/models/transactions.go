package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

var (
	ErrEmptyDescription   = errors.New("description is required")
	ErrInvalidType        = errors.New("type must be income or expense")
	ErrNegativeAmount     = errors.New("amount must not be negative")
	ErrEmptyCategory      = errors.New("category is required")
	ErrZeroTransactionDay = errors.New("date is required")
)

type Transaction struct {
	ID          int             `json:"id,omitempty" db:"id,omitempty"`
	UserID      int             `json:"user_id,omitempty" db:"user_id,omitempty"`
	Description string          `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Type        TransactionType `json:"type" db:"type"`
	Category    string          `json:"category" db:"category"`
	Date        time.Time       `json:"date" db:"date"`
	ClientRef   string          `json:"client_ref,omitempty" db:"client_ref,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

func (t Transaction) IsIncome() bool  { return t.Type == Income }
func (t Transaction) IsExpense() bool { return t.Type == Expense }

// Normalize trims text fields and rounds the amount to cents.
func (t *Transaction) Normalize() {
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	t.Amount = t.Amount.Round(2)
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Date.IsZero() {
		return ErrZeroTransactionDay
	}
	return nil
}

// TransactionFilter narrows a listing. Zero values mean "no constraint".
type TransactionFilter struct {
	Type   TransactionType
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}
