package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
)

// BillingEvent is one processed webhook delivery or payment capture.
// Reference is unique per provider and makes processing idempotent.
type BillingEvent struct {
	ID        int             `json:"id,omitempty" db:"id,omitempty"`
	Provider  string          `json:"provider" db:"provider"`
	Reference string          `json:"reference" db:"reference"`
	UserID    int             `json:"user_id" db:"user_id"`
	Kind      string          `json:"kind" db:"kind"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Currency  string          `json:"currency" db:"currency"`
	Status    string          `json:"status" db:"status"`
	CreatedAt time.Time       `json:"created_at,omitempty" db:"created_at,omitempty"`
}
