package finance

import (
	"sort"

	"finance_io/internal/models"

	"github.com/shopspring/decimal"
)

type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Share    float64         `json:"share"`
}

type MonthPoint struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

type Summary struct {
	TotalIncome        decimal.Decimal `json:"totalIncome"`
	TotalExpenses      decimal.Decimal `json:"totalExpenses"`
	Balance            decimal.Decimal `json:"balance"`
	TransactionCount   int             `json:"transactionCount"`
	ExpensesByCategory []CategoryTotal `json:"expensesByCategory"`
	Monthly            []MonthPoint    `json:"monthly"`
}

// Totals sums income and expenses. Balance is always income minus expenses.
func Totals(transactions []models.Transaction) (income, expenses, balance decimal.Decimal) {
	income, expenses = decimal.Zero, decimal.Zero
	for _, t := range transactions {
		switch t.Type {
		case models.Income:
			income = income.Add(t.Amount)
		case models.Expense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return income, expenses, income.Sub(expenses)
}

// ExpensesByCategory groups expenses by category name, largest first.
// Ties are ordered by name so the output is stable.
func ExpensesByCategory(transactions []models.Transaction) []CategoryTotal {
	totals := map[string]decimal.Decimal{}
	all := decimal.Zero
	for _, t := range transactions {
		if !t.IsExpense() {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
		all = all.Add(t.Amount)
	}

	out := make([]CategoryTotal, 0, len(totals))
	for name, amount := range totals {
		out = append(out, CategoryTotal{Category: name, Amount: amount, Share: percent(amount, all)})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlySeries buckets transactions per calendar month in ascending order.
func MonthlySeries(transactions []models.Transaction) []MonthPoint {
	byMonth := map[string]*MonthPoint{}
	for _, t := range transactions {
		key := models.UsagePeriod(t.Date)
		p, ok := byMonth[key]
		if !ok {
			p = &MonthPoint{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
			byMonth[key] = p
		}
		switch t.Type {
		case models.Income:
			p.Income = p.Income.Add(t.Amount)
		case models.Expense:
			p.Expenses = p.Expenses.Add(t.Amount)
		}
	}

	out := make([]MonthPoint, 0, len(byMonth))
	for _, p := range byMonth {
		p.Balance = p.Income.Sub(p.Expenses)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

func Summarize(transactions []models.Transaction) Summary {
	income, expenses, balance := Totals(transactions)
	return Summary{
		TotalIncome:        income,
		TotalExpenses:      expenses,
		Balance:            balance,
		TransactionCount:   len(transactions),
		ExpensesByCategory: ExpensesByCategory(transactions),
		Monthly:            MonthlySeries(transactions),
	}
}
