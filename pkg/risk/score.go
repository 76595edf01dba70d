// pkg/risk/score.go
package risk

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/model"
)

// Tier breakpoints. TierFor is deterministic and monotonic in the score.
const (
	highTierThreshold   = 0.7
	mediumTierThreshold = 0.4
)

// scoreBucket maps a delinquency range onto a uniform score range.
type scoreBucket struct {
	maxDays float64 // exclusive upper bound on days delinquent
	lo, hi  float64 // score drawn uniformly from [lo, hi)
}

// Buckets from the production scoring heuristic: the longer a loan sits
// delinquent, the higher the range the score is drawn from.
var buckets = []scoreBucket{
	{maxDays: 30, lo: 0, hi: 0.3},
	{maxDays: 90, lo: 0.3, hi: 0.6},
	{maxDays: 180, lo: 0.6, hi: 0.8},
}

// Tail bucket for 180+ days.
var tailBucket = scoreBucket{lo: 0.8, hi: 1.0}

// Scorer derives risk scores from delinquency days. Scoring is
// intentionally non-deterministic; the random source is injected so tests
// and reproducible runs can seed it. The rng is guarded by a mutex: one
// Scorer serves every session, and rand.Rand is not safe for concurrent
// use.
type Scorer struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *zap.Logger
}

// NewScorer creates a Scorer drawing from src. A nil source is seeded from
// the current time.
func NewScorer(src rand.Source, logger *zap.Logger) *Scorer {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Scorer{
		rng:    rand.New(src),
		logger: logger.Named("risk"),
	}
}

// Score draws a risk score for the given days-delinquent value. The score
// always lies within the bucket range selected by the delinquency
// thresholds; negative input is treated as the lowest bucket.
func (s *Scorer) Score(daysDelinquent float64) float64 {
	b := bucketFor(daysDelinquent)

	s.mu.Lock()
	f := s.rng.Float64()
	s.mu.Unlock()

	return b.lo + f*(b.hi-b.lo)
}

func bucketFor(days float64) scoreBucket {
	for _, b := range buckets {
		if days < b.maxDays {
			return b
		}
	}
	return tailBucket
}

// TierFor converts a score to its tier. Pure step function: >= 0.7 HIGH,
// >= 0.4 MEDIUM, else LOW.
func TierFor(score float64) model.RiskTier {
	switch {
	case score >= highTierThreshold:
		return model.TierHigh
	case score >= mediumTierThreshold:
		return model.TierMedium
	default:
		return model.TierLow
	}
}

// ScoreTable scores every record in place and attaches tiers.
func (s *Scorer) ScoreTable(t *model.Table) {
	for _, rec := range t.Records {
		rec.RiskScore = s.Score(rec.DaysDelinquent)
		rec.RiskTier = TierFor(rec.RiskScore)
		rec.Scored = true
	}
	t.Columns["risk_score"] = true
	t.Columns["risk_tier"] = true

	s.logger.Info("Scored table",
		zap.String("source", string(t.Source)),
		zap.Int("rows", len(t.Records)))
}
