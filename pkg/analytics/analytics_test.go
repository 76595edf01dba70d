// pkg/analytics/analytics_test.go
package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charted-solutions/loanrisk/pkg/model"
)

func tieredTable(tiers ...model.RiskTier) *model.Table {
	t := model.NewTable(model.SourceMerged)
	for _, tier := range tiers {
		t.Records = append(t.Records, &model.StudentRecord{
			RiskTier:           tier,
			Scored:             true,
			OutstandingBalance: 1000,
		})
	}
	return t
}

func TestProjectCDR(t *testing.T) {
	table := tieredTable(
		model.TierHigh, model.TierHigh,
		model.TierMedium, model.TierMedium, model.TierMedium,
		model.TierLow, model.TierLow, model.TierLow, model.TierLow, model.TierLow,
	)

	cdr := ProjectCDR(table)

	// 2*0.45 + 3*0.20 + 5*0.05 = 1.75 expected defaults out of 10.
	assert.InDelta(t, 17.5, cdr.Current, 1e-9)
	// Intervention averts 30% of the high-risk defaults.
	assert.InDelta(t, 14.8, cdr.Improved, 1e-9)
	assert.InDelta(t, 2.7, cdr.Improvement, 1e-9)
}

func TestProjectCDR_EmptyTable(t *testing.T) {
	assert.Equal(t, CDRProjection{}, ProjectCDR(model.NewTable(model.SourceMerged)))
	assert.Equal(t, CDRProjection{}, ProjectCDR(nil))
}

func TestMetrics(t *testing.T) {
	table := tieredTable(
		model.TierHigh, model.TierHigh,
		model.TierMedium,
		model.TierLow, model.TierLow,
	)

	m := Metrics(table)

	assert.Equal(t, 5, m.TotalStudents)
	assert.Equal(t, 2, m.HighRiskStudents)
	assert.InDelta(t, 5000, m.TotalPortfolio, 1e-9)
	// 2 high-risk students * 45% default rate * $15,000 per default.
	assert.InDelta(t, 13500, m.PotentialDefaultCost, 1e-9)
	assert.InDelta(t, 400, m.InterventionInvestment, 1e-9)
	// 30% of the default cost averted, minus the intervention spend.
	assert.InDelta(t, 3650, m.PotentialNetSavings, 1e-9)
}

func TestMetrics_NoHighRisk(t *testing.T) {
	m := Metrics(tieredTable(model.TierLow, model.TierMedium))

	assert.Equal(t, 0, m.HighRiskStudents)
	assert.Equal(t, 0.0, m.PotentialDefaultCost)
	assert.Equal(t, 0.0, m.PotentialNetSavings)
}

func TestHighRisk(t *testing.T) {
	table := model.NewTable(model.SourceMerged)
	table.Records = []*model.StudentRecord{
		{StudentID: "a", RiskTier: model.TierHigh},
		{StudentID: "b", RiskTier: model.TierLow},
		{StudentID: "c", RiskTier: model.TierHigh},
	}

	high := HighRisk(table)
	require.Len(t, high, 2)
	assert.Equal(t, "a", high[0].StudentID)
	assert.Equal(t, "c", high[1].StudentID)
}

func TestRecommendations_Ladder(t *testing.T) {
	tests := []struct {
		name   string
		score  float64
		first  string
		count  int
	}{
		{"critical", 0.85, "Emergency Financial Counseling", 2},
		{"critical_boundary", 0.8, "Emergency Financial Counseling", 2},
		{"elevated", 0.65, "Financial Planning Session", 2},
		{"moderate", 0.45, "Financial Wellness Workshop", 2},
		{"low", 0.2, "Preventive Check-in", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := Recommendations(tt.score)
			require.Len(t, recs, tt.count)
			assert.Equal(t, tt.first, recs[0].Action)
			assert.NotEmpty(t, recs[0].Timeline)
		})
	}
}
