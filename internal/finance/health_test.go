package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func metricsWith(savings, emergency, debt float64, essential, nonEssential int64) Metrics {
	return Metrics{
		SavingsRate:        savings,
		EmergencyFundRatio: emergency,
		DebtToIncomeRatio:  debt,
		ExpenseCategories: ExpenseBreakdown{
			Essential:    decimal.NewFromInt(essential),
			NonEssential: decimal.NewFromInt(nonEssential),
		},
	}
}

func TestAssess_Excellent(t *testing.T) {
	h := Assess(metricsWith(25, 120, 10, 50, 50))

	assert.Equal(t, 100, h.Score)
	assert.Equal(t, StatusExcellent, h.Status)
	assert.Empty(t, h.Recommendations)
}

func TestAssess_Poor(t *testing.T) {
	h := Assess(metricsWith(0, 0, 50, 90, 10))

	assert.Equal(t, 0, h.Score)
	assert.Equal(t, StatusPoor, h.Status)
	assert.Equal(t, []string{recSavingsRate, recEmergencyFund, recDebt, recEssential}, h.Recommendations)
}

func TestAssess_Tiers(t *testing.T) {
	cases := []struct {
		m      Metrics
		score  int
		status HealthStatus
	}{
		{metricsWith(15, 60, 35, 65, 35), 20 + 20 + 10 + 10, StatusGood},
		{metricsWith(5, 30, 35, 65, 35), 10 + 10 + 10 + 10, StatusFair},
		{metricsWith(5, 30, 45, 75, 25), 10 + 10, StatusPoor},
		{metricsWith(20, 100, 30, 60, 40), 100, StatusExcellent},
	}

	for _, c := range cases {
		h := Assess(c.m)
		assert.Equal(t, c.score, h.Score)
		assert.Equal(t, c.status, h.Status)
	}
}

func TestAssess_NoExpensesCountsAsLowEssentialRatio(t *testing.T) {
	h := Assess(metricsWith(0, 0, 0, 0, 0))
	// debt 20 + essential 20
	assert.Equal(t, 40, h.Score)
	assert.Equal(t, StatusFair, h.Status)
}

func TestAssess_MonotonicInSavingsRate(t *testing.T) {
	for _, emergency := range []float64{0, 30, 60, 150} {
		for _, debt := range []float64{0, 35, 80} {
			prev := -1
			for rate := -50.0; rate <= 100; rate += 0.5 {
				score := Assess(metricsWith(rate, emergency, debt, 70, 30)).Score
				assert.GreaterOrEqual(t, score, prev, "rate %.1f", rate)
				prev = score
			}
		}
	}
}

func TestNewReport(t *testing.T) {
	r := NewReport(metricsWith(25, 120, 10, 30, 70))

	assert.Equal(t, 30.0, r.EssentialRatio)
	assert.Equal(t, 100, r.Health.Score)
}

func TestScores_JustPastThresholds(t *testing.T) {
	assert.Equal(t, 20, savingsScore(19.996))
	assert.Equal(t, 10, savingsScore(9.996))
	assert.Equal(t, 0, savingsScore(0))

	assert.Equal(t, 20, emergencyScore(99.996))
	assert.Equal(t, 10, emergencyScore(49.996))
	assert.Equal(t, 0, emergencyScore(24.996))

	assert.Equal(t, 10, debtScore(30.004))
	assert.Equal(t, 0, debtScore(40.004))

	assert.Equal(t, 10, essentialScore(60.004))
	assert.Equal(t, 0, essentialScore(70.004))
}

func TestAssess_RecommendationsJustPastThresholds(t *testing.T) {
	h := Assess(metricsWith(19.996, 99.996, 30.004, 50, 50))
	assert.Equal(t, []string{recSavingsRate, recEmergencyFund, recDebt}, h.Recommendations)
	assert.Equal(t, 20+20+10+20, h.Score)
}

func TestNewReport_RoundsForDisplayOnly(t *testing.T) {
	r := NewReport(metricsWith(19.996, 99.996, 30.004, 50, 50))

	assert.Equal(t, 20.0, r.SavingsRate)
	assert.Equal(t, 100.0, r.EmergencyFundRatio)
	assert.Equal(t, 30.0, r.DebtToIncomeRatio)
	assert.Equal(t, 70, r.Health.Score)
}
