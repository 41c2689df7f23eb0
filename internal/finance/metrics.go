// Package finance derives dashboard aggregates and the financial health
// score from a user's transaction list.
package finance

import (
	"math"
	"strings"
	"time"

	"finance_io/internal/models"

	"github.com/shopspring/decimal"
)

// EssentialCategories are matched against the lower-cased category name.
var EssentialCategories = []string{
	"moradia",
	"alimentação",
	"saúde",
	"transporte",
	"educação",
	"contas",
	"utilities",
}

const (
	savingsCategory     = "poupança"
	emergencyFundMonths = 6
)

var debtKeywords = []string{"dívida", "financiamento"}

var hundred = decimal.NewFromInt(100)

type ExpenseBreakdown struct {
	Essential    decimal.Decimal `json:"essential"`
	NonEssential decimal.Decimal `json:"nonEssential"`
	Savings      decimal.Decimal `json:"savings"`
}

type Metrics struct {
	MonthlyIncome      decimal.Decimal  `json:"monthlyIncome"`
	MonthlyExpenses    decimal.Decimal  `json:"monthlyExpenses"`
	SavingsRate        float64          `json:"savingsRate"`
	EmergencyFundRatio float64          `json:"emergencyFundRatio"`
	DebtToIncomeRatio  float64          `json:"debtToIncomeRatio"`
	ExpenseCategories  ExpenseBreakdown `json:"expenseCategories"`
}

func IsEssential(category string) bool {
	c := strings.ToLower(strings.TrimSpace(category))
	for _, e := range EssentialCategories {
		if c == e {
			return true
		}
	}
	return false
}

func isDebt(category string) bool {
	c := strings.ToLower(category)
	for _, k := range debtKeywords {
		if strings.Contains(c, k) {
			return true
		}
	}
	return false
}

// MonthBounds returns [first day of now's month, first day of the next month).
// Transaction dates are calendar days stored at UTC midnight, so the bounds
// take now's calendar month and place it in UTC.
func MonthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// percent returns num/den*100 unrounded, or 0 when den is zero.
// Thresholds compare against this value; round2 is for output only.
func percent(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}
	return num.Div(den).Mul(hundred).InexactFloat64()
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// CalculateMetrics computes the metrics for the calendar month containing now.
// The emergency fund balance is all-time income booked under "poupança".
func CalculateMetrics(transactions []models.Transaction, now time.Time) Metrics {
	from, to := MonthBounds(now)

	income := decimal.Zero
	expenses := decimal.Zero
	essential := decimal.Zero
	nonEssential := decimal.Zero
	debt := decimal.Zero
	currentSavings := decimal.Zero

	for _, t := range transactions {
		if t.IsIncome() && strings.ToLower(strings.TrimSpace(t.Category)) == savingsCategory {
			currentSavings = currentSavings.Add(t.Amount)
		}

		if !inRange(t.Date, from, to) {
			continue
		}

		switch t.Type {
		case models.Income:
			income = income.Add(t.Amount)
		case models.Expense:
			expenses = expenses.Add(t.Amount)
			if IsEssential(t.Category) {
				essential = essential.Add(t.Amount)
			} else {
				nonEssential = nonEssential.Add(t.Amount)
			}
			if isDebt(t.Category) {
				debt = debt.Add(t.Amount)
			}
		}
	}

	return Metrics{
		MonthlyIncome:      income,
		MonthlyExpenses:    expenses,
		SavingsRate:        percent(income.Sub(expenses), income),
		EmergencyFundRatio: percent(currentSavings, essential.Mul(decimal.NewFromInt(emergencyFundMonths))),
		DebtToIncomeRatio:  percent(debt, income),
		ExpenseCategories: ExpenseBreakdown{
			Essential:    essential,
			NonEssential: nonEssential,
			Savings:      income.Sub(expenses),
		},
	}
}
