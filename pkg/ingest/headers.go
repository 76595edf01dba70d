// pkg/ingest/headers.go
package ingest

import "github.com/charted-solutions/loanrisk/pkg/model"

// NSLDSHeaderMap renames NSLDS delinquent-borrower report headers to the
// canonical schema. Headers absent from the map pass through unchanged.
var NSLDSHeaderMap = map[string]string{
	"Borrower SSN":        model.ColSSN,
	"Borrower First Name": model.ColFirstName,
	"Borrower Last Name":  model.ColLastName,
	"E-mail":              model.ColEmail,
	"Days Delinquent":     model.ColDaysDelinquent,
	"OPB":                 model.ColOutstandingBalance,
	"Loan Type":           model.ColLoanType,
}

// SISHeaderMap renames student-information-system extract headers.
var SISHeaderMap = map[string]string{
	"Student ID":        model.ColStudentID,
	"SSN":               model.ColSSN,
	"First Name":        model.ColFirstName,
	"Last Name":         model.ColLastName,
	"Email":             model.ColEmail,
	"Major":             model.ColMajor,
	"Program":           model.ColProgram,
	"GPA":               model.ColGPA,
	"Academic Standing": model.ColAcademicStanding,
	"Enrollment Status": model.ColEnrollmentStatus,
}

// HeaderMapFor returns the rename table for a source system.
func HeaderMapFor(source model.SourceKind) map[string]string {
	if source == model.SourceSIS {
		return SISHeaderMap
	}
	return NSLDSHeaderMap
}
