// pkg/analytics/analytics.go
package analytics

import (
	"github.com/charted-solutions/loanrisk/pkg/model"
)

// Default-rate estimates used for cohort default rate projection.
const (
	highRiskDefaultRate   = 0.45
	mediumRiskDefaultRate = 0.20
	lowRiskDefaultRate    = 0.05

	// Assumed effect of intervention on high-risk defaults.
	interventionSuccessRate = 0.30

	// Per-student cost assumptions for the financial impact summary.
	defaultCostPerStudent      = 15000
	interventionCostPerStudent = 200
)

// CDRProjection is a projected cohort default rate, expressed in percent.
type CDRProjection struct {
	Current     float64 `json:"current_cdr"`
	Improved    float64 `json:"improved_cdr"`
	Improvement float64 `json:"improvement"`
}

// ProjectCDR estimates the cohort default rate from the tier mix of a
// scored table, plus the rate achievable if high-risk students receive
// intervention. An empty table projects zero across the board.
func ProjectCDR(t *model.Table) CDRProjection {
	if t == nil || t.Len() == 0 {
		return CDRProjection{}
	}

	total := float64(t.Len())
	high := float64(countTier(t, model.TierHigh))
	medium := float64(countTier(t, model.TierMedium))
	low := total - high - medium

	projected := high*highRiskDefaultRate + medium*mediumRiskDefaultRate + low*lowRiskDefaultRate
	current := projected / total * 100

	improved := (projected - high*highRiskDefaultRate*interventionSuccessRate) / total * 100

	return CDRProjection{
		Current:     current,
		Improved:    improved,
		Improvement: current - improved,
	}
}

// DashboardMetrics are the headline numbers for a merged, scored table.
type DashboardMetrics struct {
	TotalStudents          int     `json:"total_students"`
	HighRiskStudents       int     `json:"high_risk_students"`
	TotalPortfolio         float64 `json:"total_portfolio"`
	PotentialDefaultCost   float64 `json:"potential_default_cost"`
	InterventionInvestment float64 `json:"intervention_investment"`
	PotentialNetSavings    float64 `json:"potential_net_savings"`
}

// Metrics computes the dashboard summary for a table.
func Metrics(t *model.Table) DashboardMetrics {
	if t == nil {
		return DashboardMetrics{}
	}

	high := countTier(t, model.TierHigh)

	var portfolio float64
	for _, rec := range t.Records {
		portfolio += rec.OutstandingBalance
	}

	defaultCost := float64(high) * highRiskDefaultRate * defaultCostPerStudent
	interventionCost := float64(high) * interventionCostPerStudent
	savings := defaultCost*interventionSuccessRate - interventionCost
	if savings < 0 {
		savings = 0
	}

	return DashboardMetrics{
		TotalStudents:          t.Len(),
		HighRiskStudents:       high,
		TotalPortfolio:         portfolio,
		PotentialDefaultCost:   defaultCost,
		InterventionInvestment: interventionCost,
		PotentialNetSavings:    savings,
	}
}

// HighRisk returns the records tiered HIGH, in table order.
func HighRisk(t *model.Table) []*model.StudentRecord {
	if t == nil {
		return nil
	}
	var out []*model.StudentRecord
	for _, rec := range t.Records {
		if rec.RiskTier == model.TierHigh {
			out = append(out, rec)
		}
	}
	return out
}

func countTier(t *model.Table, tier model.RiskTier) int {
	n := 0
	for _, rec := range t.Records {
		if rec.RiskTier == tier {
			n++
		}
	}
	return n
}
