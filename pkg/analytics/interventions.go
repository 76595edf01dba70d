// pkg/analytics/interventions.go
package analytics

// Recommendation is one suggested outreach action with its timeline.
type Recommendation struct {
	Action   string `json:"action"`
	Timeline string `json:"timeline"`
}

// Recommendations returns the intervention ladder for a risk score. Higher
// scores get faster, heavier interventions.
func Recommendations(riskScore float64) []Recommendation {
	switch {
	case riskScore >= 0.8:
		return []Recommendation{
			{Action: "Emergency Financial Counseling", Timeline: "Within 24 hours"},
			{Action: "Loan Rehabilitation Discussion", Timeline: "Within 48 hours"},
		}
	case riskScore >= 0.6:
		return []Recommendation{
			{Action: "Financial Planning Session", Timeline: "Within 1 week"},
			{Action: "Payment Plan Review", Timeline: "Within 2 weeks"},
		}
	case riskScore >= 0.4:
		return []Recommendation{
			{Action: "Financial Wellness Workshop", Timeline: "Within 2 weeks"},
			{Action: "Career Services Referral", Timeline: "Within 3 weeks"},
		}
	default:
		return []Recommendation{
			{Action: "Preventive Check-in", Timeline: "Within 1 month"},
		}
	}
}
