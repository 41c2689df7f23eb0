package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validTransaction() Transaction {
	return Transaction{
		Description: "Mercado",
		Amount:      decimal.RequireFromString("120.50"),
		Type:        Expense,
		Category:    "Alimentação",
		Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransactionValidate(t *testing.T) {
	assert.NoError(t, validTransaction().Validate())

	cases := map[string]struct {
		mutate func(*Transaction)
		want   error
	}{
		"blank description": {func(tx *Transaction) { tx.Description = "  " }, ErrEmptyDescription},
		"bad type":          {func(tx *Transaction) { tx.Type = "transfer" }, ErrInvalidType},
		"negative amount":   {func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-1) }, ErrNegativeAmount},
		"blank category":    {func(tx *Transaction) { tx.Category = "" }, ErrEmptyCategory},
		"zero date":         {func(tx *Transaction) { tx.Date = time.Time{} }, ErrZeroTransactionDay},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			tx := validTransaction()
			tc.mutate(&tx)
			assert.ErrorIs(t, tx.Validate(), tc.want)
		})
	}
}

func TestTransactionZeroAmountAllowed(t *testing.T) {
	tx := validTransaction()
	tx.Amount = decimal.Zero
	assert.NoError(t, tx.Validate())
}

func TestTransactionNormalize(t *testing.T) {
	tx := Transaction{Description: "  Uber ", Category: " Transporte ", Amount: decimal.RequireFromString("10.005")}
	tx.Normalize()

	assert.Equal(t, "Uber", tx.Description)
	assert.Equal(t, "Transporte", tx.Category)
	assert.Equal(t, "10.01", tx.Amount.StringFixed(2))
}

func TestReportUsageRemaining(t *testing.T) {
	assert.Equal(t, 3, ReportUsage{Used: 2, Limit: 5}.Remaining())
	assert.Equal(t, 0, ReportUsage{Used: 7, Limit: 5}.Remaining())
	assert.Equal(t, -1, ReportUsage{Used: 70, Limit: 5, IsPro: true}.Remaining())
	assert.Equal(t, "2025-03", UsagePeriod(time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)))
}
