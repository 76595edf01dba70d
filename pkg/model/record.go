// pkg/model/record.go
package model

// Canonical column names produced by ingestion. Source headers are renamed
// to these; anything unrecognized passes through in StudentRecord.Extra.
const (
	ColStudentID          = "student_id"
	ColSSN                = "ssn"
	ColFirstName          = "first_name"
	ColLastName           = "last_name"
	ColEmail              = "email"
	ColDaysDelinquent     = "days_delinquent"
	ColOutstandingBalance = "outstanding_balance"
	ColLoanType           = "loan_type"
	ColMajor              = "major"
	ColProgram            = "program"
	ColGPA                = "gpa"
	ColAcademicStanding   = "academic_standing"
	ColEnrollmentStatus   = "enrollment_status"
)

// RiskTier is the categorical risk bucket derived from a numeric score.
type RiskTier string

const (
	TierLow    RiskTier = "LOW"
	TierMedium RiskTier = "MEDIUM"
	TierHigh   RiskTier = "HIGH"
)

// SourceKind identifies which system a table came from.
type SourceKind string

const (
	SourceNSLDS     SourceKind = "nslds"
	SourceSIS       SourceKind = "sis"
	SourceWarehouse SourceKind = "warehouse"
	SourceMerged    SourceKind = "merged"
)

// StudentRecord is a single canonicalized row. Fields not present in the
// source table are zero-valued; Table.Columns records which canonical
// columns the source actually carried.
type StudentRecord struct {
	StudentID          string
	SSN                string
	FirstName          string
	LastName           string
	Email              string
	DaysDelinquent     float64
	OutstandingBalance float64
	LoanType           string
	Major              string
	Program            string
	GPA                *float64
	AcademicStanding   string
	EnrollmentStatus   string

	// Derived by the risk scorer.
	RiskScore       float64
	RiskTier        RiskTier
	Scored          bool
	PredictiveScore float64
	PredictiveTier  RiskTier

	// Unrecognized source columns, passed through untouched.
	Extra map[string]string
}

// Clone returns a deep copy of the record.
func (r *StudentRecord) Clone() *StudentRecord {
	out := *r
	if r.GPA != nil {
		gpa := *r.GPA
		out.GPA = &gpa
	}
	if r.Extra != nil {
		out.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}
