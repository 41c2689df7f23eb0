package report

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var monthlyTips = []string{
	"Estabeleça metas financeiras específicas e mensuráveis para manter o foco.",
	"Considere usar a regra 50/30/20: 50% para necessidades, 30% para desejos e 20% para economia.",
	"Revise suas assinaturas e serviços recorrentes para identificar gastos desnecessários.",
	"Pesquise preços e use aplicativos de desconto antes de fazer compras significativas.",
	"Mantenha um registro detalhado de todos os gastos para identificar padrões e oportunidades de economia.",
}

var (
	highExpenseShare  = decimal.RequireFromString("0.8")
	highCategoryShare = decimal.RequireFromString("0.3")
)

// TemplateGenerator renders the fixed Portuguese report locally.
type TemplateGenerator struct {
	pick func(n int) int
}

// NewTemplateGenerator uses pick to choose the monthly tip; nil means math/rand.
func NewTemplateGenerator(pick func(n int) int) *TemplateGenerator {
	if pick == nil {
		pick = rand.Intn
	}
	return &TemplateGenerator{pick: pick}
}

func (g *TemplateGenerator) Generate(_ context.Context, data FinancialData) (string, error) {
	return g.Render(data), nil
}

// SavingsRate is (income - expenses) / income in percent, 0 without income.
func SavingsRate(data FinancialData) float64 {
	if data.TotalIncome.IsZero() {
		return 0
	}
	rate := data.TotalIncome.Sub(data.TotalExpenses).Div(data.TotalIncome).Mul(decimal.NewFromInt(100))
	return math.Round(rate.InexactFloat64()*10) / 10
}

func money(d decimal.Decimal) string {
	return "R$ " + d.StringFixed(2)
}

func pct(num, den decimal.Decimal) string {
	if den.IsZero() {
		return "0.0"
	}
	return num.Div(den).Mul(decimal.NewFromInt(100)).StringFixed(1)
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (g *TemplateGenerator) Render(data FinancialData) string {
	positive := !data.Balance.IsNegative()
	rate := SavingsRate(data)

	var b strings.Builder

	fmt.Fprintf(&b, "📊 RELATÓRIO FINANCEIRO %s 📊\n\n", strings.ToUpper(data.Timeframe.Label()))

	b.WriteString("💰 VISÃO GERAL\n")
	if positive {
		b.WriteString("✅ Positivo\n")
	} else {
		b.WriteString("⚠️ Negativo\n")
	}
	fmt.Fprintf(&b, "- Receitas: %s 📈\n", money(data.TotalIncome))
	fmt.Fprintf(&b, "- Despesas: %s 📉\n", money(data.TotalExpenses))
	balanceMark := "🟢"
	if !positive {
		balanceMark = "🔴"
	}
	fmt.Fprintf(&b, "- Saldo: %s %s\n", money(data.Balance), balanceMark)
	star := ""
	if rate > 20 {
		star = " 🌟"
	}
	fmt.Fprintf(&b, "- Taxa de Economia: %.1f%%%s\n\n", rate, star)

	b.WriteString("📋 ANÁLISE DE DESPESAS POR CATEGORIA\n")
	for _, c := range data.ExpensesByCategory {
		fmt.Fprintf(&b, "- %s: %s (%s%%)\n", c.Category, money(c.Amount), pct(c.Amount, data.TotalExpenses))
	}
	b.WriteString("\n")

	b.WriteString("💸 MAIORES GASTOS\n")
	for i, e := range data.TopExpenses {
		fmt.Fprintf(&b, "%d. %s: %s (%s)\n", i+1, e.Description, money(e.Amount), e.Category)
	}
	b.WriteString("\n")

	b.WriteString(strings.Join(Recommendations(data), "\n"))
	b.WriteString("\n\n")

	b.WriteString("🎯 METAS SUGERIDAS\n")
	if positive {
		target := math.Min(math.Round((rate+5)*10)/10, 30)
		fmt.Fprintf(&b, "1. Manter o saldo positivo e aumentar a taxa de economia para %s%%\n", trimFloat(target))
	} else {
		b.WriteString("1. Reduzir despesas para alcançar um saldo positivo nos próximos meses\n")
	}
	b.WriteString("2. Criar um fundo de emergência equivalente a 3-6 meses de despesas\n")
	if rate < 20 {
		b.WriteString("3. Aumentar a taxa de economia para pelo menos 20%\n")
	} else {
		b.WriteString("3. Considerar investimentos para seu dinheiro guardado\n")
	}
	b.WriteString("\n")

	b.WriteString("💡 DICA DO MÊS\n")
	b.WriteString(g.tip(data))
	b.WriteString("\n")

	return b.String()
}

// Recommendations lists the rule-based advice lines, heading first.
func Recommendations(data FinancialData) []string {
	lines := []string{"📝 RECOMENDAÇÕES"}

	if data.Balance.IsNegative() {
		lines = append(lines, "- ⚠️ Reduzir despesas imediatamente para evitar endividamento")
	}

	// both share rules are relative to income and skipped without it
	if data.TotalIncome.IsPositive() {
		if data.TotalExpenses.GreaterThan(data.TotalIncome.Mul(highExpenseShare)) {
			lines = append(lines, "- 📉 Seus gastos estão muito altos em relação à sua renda")
		}

		limit := data.TotalIncome.Mul(highCategoryShare)
		for _, c := range data.ExpensesByCategory {
			if c.Amount.GreaterThan(limit) {
				lines = append(lines, fmt.Sprintf("- 🔍 Gastos com %s estão muito altos (%s%% da renda)",
					c.Category, pct(c.Amount, data.TotalIncome)))
			}
		}
	}

	if len(lines) == 1 {
		lines = append(lines, "- ✨ Continue mantendo o controle dos seus gastos!")
	}
	return lines
}

func (g *TemplateGenerator) tip(data FinancialData) string {
	if data.Balance.IsNegative() {
		return monthlyTips[0]
	}
	i := g.pick(len(monthlyTips))
	if i < 0 || i >= len(monthlyTips) {
		i = 0
	}
	return monthlyTips[i]
}
