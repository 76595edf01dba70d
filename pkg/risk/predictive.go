// pkg/risk/predictive.go
package risk

import (
	"strings"

	"github.com/charted-solutions/loanrisk/pkg/model"
)

// Additive penalties for the predictive variant. Deterministic: the only
// random term in a predictive score is the delinquency base it builds on.
const (
	gpaPenaltySevere   = 0.3 // GPA < 2.0
	gpaPenaltyModerate = 0.2 // GPA < 2.5
	gpaPenaltyMild     = 0.1 // GPA < 3.0

	enrollmentPenaltyPartTime = 0.15
	enrollmentPenaltyLeave    = 0.25

	standingPenaltyWarning   = 0.2
	standingPenaltyProbation = 0.3
)

// GPAPenalty returns the additive penalty for a GPA bucket. A missing GPA
// carries no penalty.
func GPAPenalty(gpa *float64) float64 {
	if gpa == nil {
		return 0
	}
	switch {
	case *gpa < 2.0:
		return gpaPenaltySevere
	case *gpa < 2.5:
		return gpaPenaltyModerate
	case *gpa < 3.0:
		return gpaPenaltyMild
	default:
		return 0
	}
}

// EnrollmentPenalty returns the additive penalty for an enrollment status.
// Matching is case-insensitive on the status text the SIS exports.
func EnrollmentPenalty(status string) float64 {
	s := strings.ToLower(strings.TrimSpace(status))
	switch {
	case strings.Contains(s, "leave"):
		return enrollmentPenaltyLeave
	case strings.Contains(s, "part"):
		return enrollmentPenaltyPartTime
	default:
		return 0
	}
}

// StandingPenalty returns the additive penalty for an academic standing.
func StandingPenalty(standing string) float64 {
	s := strings.ToLower(strings.TrimSpace(standing))
	switch {
	case strings.Contains(s, "probation"):
		return standingPenaltyProbation
	case strings.Contains(s, "warning"):
		return standingPenaltyWarning
	default:
		return 0
	}
}

// PredictiveScore layers the academic penalties onto a base delinquency
// score, capped at 1.
func PredictiveScore(base float64, rec *model.StudentRecord) float64 {
	score := base + GPAPenalty(rec.GPA) + EnrollmentPenalty(rec.EnrollmentStatus) + StandingPenalty(rec.AcademicStanding)
	if score > 1 {
		return 1
	}
	return score
}

// ApplyPredictive computes predictive scores and tiers for every scored
// record in place. Records never scored keep zero predictive values.
func (s *Scorer) ApplyPredictive(t *model.Table) {
	for _, rec := range t.Records {
		if !rec.Scored {
			continue
		}
		rec.PredictiveScore = PredictiveScore(rec.RiskScore, rec)
		rec.PredictiveTier = TierFor(rec.PredictiveScore)
	}
	t.Columns["predictive_score"] = true
	t.Columns["predictive_tier"] = true
}
