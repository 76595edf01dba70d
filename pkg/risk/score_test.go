// pkg/risk/score_test.go
package risk

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/model"
)

func TestScore_StaysInBucketRange(t *testing.T) {
	tests := []struct {
		name   string
		days   float64
		lo, hi float64
	}{
		{"fresh", 0, 0, 0.3},
		{"under_30", 29, 0, 0.3},
		{"at_30", 30, 0.3, 0.6},
		{"under_90", 89, 0.3, 0.6},
		{"at_90", 90, 0.6, 0.8},
		{"under_180", 179, 0.6, 0.8},
		{"at_180", 180, 0.8, 1.0},
		{"long_tail", 500, 0.8, 1.0},
		{"negative_input", -10, 0, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := int64(0); seed < 50; seed++ {
				s := NewScorer(rand.NewSource(seed), zap.NewNop())
				score := s.Score(tt.days)
				assert.GreaterOrEqual(t, score, tt.lo, "seed %d", seed)
				assert.Less(t, score, tt.hi, "seed %d", seed)
			}
		})
	}
}

func TestScore_SeededIsReproducible(t *testing.T) {
	a := NewScorer(rand.NewSource(7), zap.NewNop())
	b := NewScorer(rand.NewSource(7), zap.NewNop())

	for _, days := range []float64{0, 45, 120, 200} {
		assert.Equal(t, a.Score(days), b.Score(days))
	}
}

func TestScore_DifferentSeedsDiffer(t *testing.T) {
	a := NewScorer(rand.NewSource(1), zap.NewNop())
	b := NewScorer(rand.NewSource(2), zap.NewNop())

	assert.NotEqual(t, a.Score(45), b.Score(45))
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		tier  model.RiskTier
	}{
		{0, model.TierLow},
		{0.39, model.TierLow},
		{0.4, model.TierMedium},
		{0.69, model.TierMedium},
		{0.7, model.TierHigh},
		{1, model.TierHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.tier, TierFor(tt.score), "score %v", tt.score)
	}
}

func TestScoreTable_ConcurrentUploads(t *testing.T) {
	s := NewScorer(rand.NewSource(3), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			table := model.NewTable(model.SourceNSLDS)
			for j := 0; j < 200; j++ {
				table.Records = append(table.Records, &model.StudentRecord{DaysDelinquent: 45})
			}
			s.ScoreTable(table)

			for _, rec := range table.Records {
				if rec.RiskScore < 0.3 || rec.RiskScore >= 0.6 {
					t.Errorf("score %v outside bucket [0.3, 0.6)", rec.RiskScore)
				}
			}
		}()
	}
	wg.Wait()
}

func TestScoreTable(t *testing.T) {
	table := model.NewTable(model.SourceNSLDS)
	table.Records = []*model.StudentRecord{
		{StudentID: "STU001000", DaysDelinquent: 10},
		{StudentID: "STU001001", DaysDelinquent: 100},
		{StudentID: "STU001002", DaysDelinquent: 400},
	}

	s := NewScorer(rand.NewSource(1), zap.NewNop())
	s.ScoreTable(table)

	assert.True(t, table.HasColumn("risk_score"))
	assert.True(t, table.HasColumn("risk_tier"))

	for _, rec := range table.Records {
		require.True(t, rec.Scored)
		assert.Equal(t, TierFor(rec.RiskScore), rec.RiskTier)
	}

	// A 400-day delinquency always lands in the top bucket.
	assert.Equal(t, model.TierHigh, table.Records[2].RiskTier)
}
