// pkg/aggregate/aggregate.go
package aggregate

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/model"
	"github.com/charted-solutions/loanrisk/pkg/risk"
)

// ProgramAggregate is one row of the program-level analysis: descriptive
// statistics for every student in a major, rounded to 2 decimal places.
type ProgramAggregate struct {
	Program           string         `json:"program"`
	AvgRisk           float64        `json:"avg_risk"`
	StudentCount      int            `json:"student_count"`
	AvgBalance        float64        `json:"avg_balance"`
	TotalBalance      float64        `json:"total_balance"`
	AvgDelinquentDays float64        `json:"avg_delinquent_days"`
	RiskTier          model.RiskTier `json:"risk_tier"`
}

// Aggregator groups a merged table by academic program.
type Aggregator struct {
	logger *zap.Logger
}

// NewAggregator creates an Aggregator. A nil logger falls back to zap.L().
func NewAggregator(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.L()
	}
	return &Aggregator{logger: logger.Named("aggregate")}
}

// ByProgram groups by major (or program when the table carries no major
// column) and computes per-group statistics, ordered by descending average
// risk; groups with equal averages keep their discovery order. Returns
// model.ErrMissingAttribute when neither grouping column exists; callers
// degrade to "no analysis available".
func (a *Aggregator) ByProgram(t *model.Table) ([]ProgramAggregate, error) {
	groupBy, err := groupingColumn(t)
	if err != nil {
		return nil, err
	}

	type accumulator struct {
		riskSum    float64
		balanceSum float64
		daysSum    float64
		count      int
	}

	groups := make(map[string]*accumulator)
	var order []string

	for _, rec := range t.Records {
		key := groupKey(rec, groupBy)
		if key == "" {
			continue
		}
		acc, ok := groups[key]
		if !ok {
			acc = &accumulator{}
			groups[key] = acc
			order = append(order, key)
		}
		acc.riskSum += rec.RiskScore
		acc.balanceSum += rec.OutstandingBalance
		acc.daysSum += rec.DaysDelinquent
		acc.count++
	}

	result := make([]ProgramAggregate, 0, len(order))
	for _, key := range order {
		acc := groups[key]
		n := float64(acc.count)
		avgRisk := round2(acc.riskSum / n)
		result = append(result, ProgramAggregate{
			Program:           key,
			AvgRisk:           avgRisk,
			StudentCount:      acc.count,
			AvgBalance:        round2(acc.balanceSum / n),
			TotalBalance:      round2(acc.balanceSum),
			AvgDelinquentDays: round2(acc.daysSum / n),
			RiskTier:          risk.TierFor(avgRisk),
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].AvgRisk > result[j].AvgRisk
	})

	a.logger.Info("Aggregated by program",
		zap.String("group_by", groupBy),
		zap.Int("programs", len(result)),
		zap.Int("rows", t.Len()))
	return result, nil
}

func groupingColumn(t *model.Table) (string, error) {
	if t.HasColumn(model.ColMajor) {
		return model.ColMajor, nil
	}
	if t.HasColumn(model.ColProgram) {
		return model.ColProgram, nil
	}
	return "", model.ErrMissingAttribute
}

func groupKey(rec *model.StudentRecord, groupBy string) string {
	if groupBy == model.ColMajor {
		return rec.Major
	}
	return rec.Program
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
