package finance

type HealthStatus string

const (
	StatusExcellent HealthStatus = "Excelente"
	StatusGood      HealthStatus = "Bom"
	StatusFair      HealthStatus = "Regular"
	StatusPoor      HealthStatus = "Preocupante"
)

const (
	recSavingsRate   = "Tente aumentar sua taxa de economia para pelo menos 20% da renda"
	recEmergencyFund = "Continue construindo seu fundo de emergência até ter 6 meses de despesas essenciais"
	recDebt          = "Considere reduzir suas dívidas para melhorar sua saúde financeira"
	recEssential     = "Tente reduzir a proporção de gastos com despesas essenciais"
)

type Health struct {
	Score           int          `json:"score"`
	Status          HealthStatus `json:"status"`
	Recommendations []string     `json:"recommendations"`
}

// EssentialRatio is the essential share of monthly expenses, in percent.
func (m Metrics) EssentialRatio() float64 {
	total := m.ExpenseCategories.Essential.Add(m.ExpenseCategories.NonEssential)
	return percent(m.ExpenseCategories.Essential, total)
}

func savingsScore(rate float64) int {
	switch {
	case rate >= 20:
		return 30
	case rate >= 10:
		return 20
	case rate > 0:
		return 10
	}
	return 0
}

func emergencyScore(ratio float64) int {
	switch {
	case ratio >= 100:
		return 30
	case ratio >= 50:
		return 20
	case ratio >= 25:
		return 10
	}
	return 0
}

func debtScore(ratio float64) int {
	switch {
	case ratio <= 30:
		return 20
	case ratio <= 40:
		return 10
	}
	return 0
}

func essentialScore(ratio float64) int {
	switch {
	case ratio <= 60:
		return 20
	case ratio <= 70:
		return 10
	}
	return 0
}

func statusFor(score int) HealthStatus {
	switch {
	case score >= 80:
		return StatusExcellent
	case score >= 60:
		return StatusGood
	case score >= 40:
		return StatusFair
	}
	return StatusPoor
}

// Assess maps the metrics to the weighted 30/30/20/20 health score.
func Assess(m Metrics) Health {
	essentialRatio := m.EssentialRatio()
	recommendations := []string{}

	score := savingsScore(m.SavingsRate)
	if m.SavingsRate < 20 {
		recommendations = append(recommendations, recSavingsRate)
	}

	score += emergencyScore(m.EmergencyFundRatio)
	if m.EmergencyFundRatio < 100 {
		recommendations = append(recommendations, recEmergencyFund)
	}

	score += debtScore(m.DebtToIncomeRatio)
	if m.DebtToIncomeRatio > 30 {
		recommendations = append(recommendations, recDebt)
	}

	score += essentialScore(essentialRatio)
	if essentialRatio > 60 {
		recommendations = append(recommendations, recEssential)
	}

	return Health{
		Score:           score,
		Status:          statusFor(score),
		Recommendations: recommendations,
	}
}

// Report bundles the metrics with their assessment for the dashboard.
// The health score is taken before ratios are rounded for display.
type Report struct {
	Metrics
	EssentialRatio float64 `json:"essentialRatio"`
	Health         Health  `json:"health"`
}

func NewReport(m Metrics) Report {
	health := Assess(m)
	essential := round2(m.EssentialRatio())

	m.SavingsRate = round2(m.SavingsRate)
	m.EmergencyFundRatio = round2(m.EmergencyFundRatio)
	m.DebtToIncomeRatio = round2(m.DebtToIncomeRatio)

	return Report{Metrics: m, EssentialRatio: essential, Health: health}
}
