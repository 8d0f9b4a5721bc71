package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// RoundHalfUp rounds d to a whole number with ties going towards +inf,
// so 2.5 becomes 3 and -2.5 becomes -2
func RoundHalfUp(d decimal.Decimal) int64 {
	return d.Add(half).Floor().IntPart()
}

// Percent returns round(part / whole * 100), or 0 when whole is not positive
func Percent(part, whole decimal.Decimal) int64 {
	if !whole.IsPositive() {
		return 0
	}
	return RoundHalfUp(part.Mul(hundred).Div(whole))
}

// NewFinancialSummary derives totals, profit and percentages from the budget
// and the cost breakdown. Revenue is taken to be the budget.
func NewFinancialSummary(budget decimal.Decimal, breakdown CostBreakdown) ProjectFinancialSummary {
	revenue := budget
	total := breakdown.Total()
	profit := revenue.Sub(total)
	return ProjectFinancialSummary{
		Budget:             budget,
		Revenue:            revenue,
		TotalCosts:         total,
		Profit:             profit,
		ProfitMargin:       Percent(profit, revenue),
		CostBreakdown:      breakdown,
		BudgetUsagePercent: Percent(total, budget),
	}
}

// ComputeTaskMetrics counts tasks by state. A task is overdue when its due
// date is before now and it is not done.
func ComputeTaskMetrics(tasks []Task, now time.Time) TaskMetrics {
	var m TaskMetrics
	m.Total = len(tasks)
	for _, t := range tasks {
		switch t.State {
		case TaskStateDone:
			m.Done++
		case TaskStateInProgress:
			m.InProgress++
		case TaskStateBlocked:
			m.Blocked++
		}
		if t.State != TaskStateDone && t.DueDate != nil && t.DueDate.Before(now) {
			m.Overdue++
		}
	}
	m.CompletionRate = Percent(decimal.NewFromInt(int64(m.Done)), decimal.NewFromInt(int64(m.Total)))
	return m
}

// Risk thresholds
const (
	riskHighScore          = 4
	riskMediumScore        = 2
	budgetCriticalPercent  = 90
	budgetWarningPercent   = 75
	lowCompletionThreshold = 30
)

// AssessRisk scores a project from its budget usage and task metrics
func AssessRisk(summary ProjectFinancialSummary, tasks TaskMetrics) RiskAssessment {
	score := 0
	factors := make([]string, 0, 4)

	if tasks.Overdue > 0 {
		score += 2
		factors = append(factors, "overdue tasks")
	}
	if tasks.Blocked > 0 {
		score++
		factors = append(factors, "blocked tasks")
	}
	switch {
	case summary.BudgetUsagePercent > budgetCriticalPercent:
		score += 2
		factors = append(factors, "budget usage above 90%")
	case summary.BudgetUsagePercent > budgetWarningPercent:
		score++
		factors = append(factors, "budget usage above 75%")
	}
	// a project without tasks has a completion rate of 0
	if tasks.CompletionRate < lowCompletionThreshold {
		score++
		factors = append(factors, "completion rate below 30%")
	}

	level := RiskLevelLow
	switch {
	case score >= riskHighScore:
		level = RiskLevelHigh
	case score >= riskMediumScore:
		level = RiskLevelMedium
	}
	return RiskAssessment{Score: score, Level: level, Factors: factors}
}
