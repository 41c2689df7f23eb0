package report

import (
	"errors"
	"sort"
	"time"

	"finance_io/internal/finance"
	"finance_io/internal/models"

	"github.com/shopspring/decimal"
)

type Timeframe string

const (
	Week  Timeframe = "week"
	Month Timeframe = "month"
	Year  Timeframe = "year"
)

var ErrInvalidTimeframe = errors.New("timeframe must be week, month or year")

func ParseTimeframe(s string) (Timeframe, error) {
	switch Timeframe(s) {
	case Week, Month, Year:
		return Timeframe(s), nil
	case "":
		return Month, nil
	}
	return "", ErrInvalidTimeframe
}

// Label is the Portuguese adjective used in report headings.
func (t Timeframe) Label() string {
	switch t {
	case Week:
		return "Semanal"
	case Year:
		return "Anual"
	default:
		return "Mensal"
	}
}

// Bounds returns the [from, to) window for the timeframe relative to now:
// the last 7 days, the current calendar month or the current calendar year.
// The calendar day comes from now; the bounds are UTC midnights like
// transaction dates.
func (t Timeframe) Bounds(now time.Time) (time.Time, time.Time) {
	switch t {
	case Week:
		end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
		return end.AddDate(0, 0, -7), end
	case Year:
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0)
	default:
		return finance.MonthBounds(now)
	}
}

type TopExpense struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Date        string          `json:"date"`
}

type FinancialData struct {
	Timeframe          Timeframe               `json:"timeframe"`
	TotalIncome        decimal.Decimal         `json:"totalIncome"`
	TotalExpenses      decimal.Decimal         `json:"totalExpenses"`
	Balance            decimal.Decimal         `json:"balance"`
	ExpensesByCategory []finance.CategoryTotal `json:"expensesByCategory"`
	TopExpenses        []TopExpense            `json:"topExpenses"`
}

const topExpenseCount = 3

// BuildData aggregates the transactions that fall inside the timeframe window.
func BuildData(transactions []models.Transaction, tf Timeframe, now time.Time) FinancialData {
	from, to := tf.Bounds(now)

	var window []models.Transaction
	for _, t := range transactions {
		if !t.Date.Before(from) && t.Date.Before(to) {
			window = append(window, t)
		}
	}

	income, expenses, balance := finance.Totals(window)

	return FinancialData{
		Timeframe:          tf,
		TotalIncome:        income,
		TotalExpenses:      expenses,
		Balance:            balance,
		ExpensesByCategory: finance.ExpensesByCategory(window),
		TopExpenses:        topExpenses(window, topExpenseCount),
	}
}

// topExpenses picks the n largest single expenses, newest first on ties.
func topExpenses(transactions []models.Transaction, n int) []TopExpense {
	var expenses []models.Transaction
	for _, t := range transactions {
		if t.IsExpense() {
			expenses = append(expenses, t)
		}
	}

	sort.SliceStable(expenses, func(i, j int) bool {
		if c := expenses[i].Amount.Cmp(expenses[j].Amount); c != 0 {
			return c > 0
		}
		return expenses[i].Date.After(expenses[j].Date)
	})

	if len(expenses) > n {
		expenses = expenses[:n]
	}

	out := make([]TopExpense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, TopExpense{
			Description: e.Description,
			Amount:      e.Amount,
			Category:    e.Category,
			Date:        e.Date.Format("2006-01-02"),
		})
	}
	return out
}
