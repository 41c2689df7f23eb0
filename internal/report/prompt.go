package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const systemPrompt = "Você é um consultor financeiro pessoal. Responda sempre em português do Brasil, " +
	"de forma clara, objetiva e com recomendações práticas."

// BuildPrompt renders the data as the user message sent to the chat API.
func BuildPrompt(data FinancialData) (string, error) {
	categories := make(map[string]decimal.Decimal, len(data.ExpensesByCategory))
	for _, c := range data.ExpensesByCategory {
		categories[c.Category] = c.Amount
	}

	categoriesJSON, err := json.MarshalIndent(categories, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode categories: %w", err)
	}

	topJSON, err := json.MarshalIndent(data.TopExpenses, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode top expenses: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Analise os dados financeiros do período (%s) e gere um relatório.\n\n", strings.ToLower(data.Timeframe.Label()))
	fmt.Fprintf(&b, "Receita total: R$ %s\n", data.TotalIncome.StringFixed(2))
	fmt.Fprintf(&b, "Despesas totais: R$ %s\n", data.TotalExpenses.StringFixed(2))
	fmt.Fprintf(&b, "Saldo: R$ %s\n\n", data.Balance.StringFixed(2))
	fmt.Fprintf(&b, "Despesas por categoria:\n%s\n\n", categoriesJSON)
	fmt.Fprintf(&b, "Maiores gastos:\n%s\n\n", topJSON)
	b.WriteString("INSTRUÇÕES:\n")
	b.WriteString("1. Faça uma visão geral da situação financeira.\n")
	b.WriteString("2. Analise os gastos por categoria e destaque excessos.\n")
	b.WriteString("3. Dê recomendações práticas e metas para o próximo período.\n")
	b.WriteString("4. Termine com uma dica do mês.\n")

	return b.String(), nil
}
