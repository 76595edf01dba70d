// pkg/merge/merge.go
package merge

import (
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/model"
)

// Merger inner-joins a loan table against a student-information table.
type Merger struct {
	logger *zap.Logger
}

// NewMerger creates a Merger. A nil logger falls back to zap.L().
func NewMerger(logger *zap.Logger) *Merger {
	if logger == nil {
		logger = zap.L()
	}
	return &Merger{logger: logger.Named("merge")}
}

// Merge joins primary (loan-side) and secondary (student-side) tables on a
// shared identifier: ssn when both tables carry it, student_id otherwise.
// Returns model.ErrNoCommonKey when neither key is shared. The join is
// inner: keys present in only one table are dropped, not errored.
func (m *Merger) Merge(primary, secondary *model.Table) (*model.Table, error) {
	key, err := selectKey(primary, secondary)
	if err != nil {
		return nil, err
	}

	index := make(map[string]*model.StudentRecord, len(secondary.Records))
	for _, rec := range secondary.Records {
		k := keyValue(rec, key)
		if k == "" {
			continue
		}
		// First occurrence wins for duplicate keys on the student side.
		if _, seen := index[k]; !seen {
			index[k] = rec
		}
	}

	merged := model.NewTable(model.SourceMerged)
	for col := range primary.Columns {
		merged.Columns[col] = true
	}
	for col := range secondary.Columns {
		merged.Columns[col] = true
	}

	for _, rec := range primary.Records {
		k := keyValue(rec, key)
		if k == "" {
			continue
		}
		match, ok := index[k]
		if !ok {
			continue
		}
		merged.Records = append(merged.Records, reconcile(rec, match, primary, secondary))
	}

	m.logger.Info("Merged tables",
		zap.String("join_key", key),
		zap.Int("primary_rows", primary.Len()),
		zap.Int("secondary_rows", secondary.Len()),
		zap.Int("merged_rows", merged.Len()))
	return merged, nil
}

// selectKey picks the join key: prefer ssn, fall back to student_id.
func selectKey(primary, secondary *model.Table) (string, error) {
	if primary.HasColumn(model.ColSSN) && secondary.HasColumn(model.ColSSN) {
		return model.ColSSN, nil
	}
	if primary.HasColumn(model.ColStudentID) && secondary.HasColumn(model.ColStudentID) {
		return model.ColStudentID, nil
	}
	return "", model.ErrNoCommonKey
}

func keyValue(rec *model.StudentRecord, key string) string {
	if key == model.ColSSN {
		return rec.SSN
	}
	return rec.StudentID
}

// reconcile builds the merged record. The loan side wins every conflict;
// student-side values fill in only where the loan side is missing. Where
// both sides carry an identity column, the student-side value is preserved
// under a _sis suffix rather than lost.
func reconcile(loan, student *model.StudentRecord, loanTable, studentTable *model.Table) *model.StudentRecord {
	out := loan.Clone()

	fillMissing(&out.FirstName, student.FirstName)
	fillMissing(&out.LastName, student.LastName)
	fillMissing(&out.Email, student.Email)

	if !loanTable.HasColumn(model.ColSSN) {
		out.SSN = student.SSN
	}
	if !loanTable.HasColumn(model.ColStudentID) {
		out.StudentID = student.StudentID
	}

	// Academic attributes come from the student side unless the loan report
	// carried them itself.
	if !loanTable.HasColumn(model.ColMajor) {
		out.Major = student.Major
	}
	if !loanTable.HasColumn(model.ColProgram) {
		out.Program = student.Program
	}
	if !loanTable.HasColumn(model.ColGPA) && student.GPA != nil {
		gpa := *student.GPA
		out.GPA = &gpa
	}
	if !loanTable.HasColumn(model.ColAcademicStanding) {
		out.AcademicStanding = student.AcademicStanding
	}
	if !loanTable.HasColumn(model.ColEnrollmentStatus) {
		out.EnrollmentStatus = student.EnrollmentStatus
	}
	if !loanTable.HasColumn(model.ColLoanType) {
		out.LoanType = student.LoanType
	}

	// Suffix the duplicated identity columns the way the export shows them.
	if loanTable.HasColumn(model.ColStudentID) && studentTable.HasColumn(model.ColStudentID) {
		setExtra(out, model.ColStudentID+"_sis", student.StudentID)
	}
	if loanTable.HasColumn(model.ColFirstName) && studentTable.HasColumn(model.ColFirstName) {
		setExtra(out, model.ColFirstName+"_sis", student.FirstName)
	}
	if loanTable.HasColumn(model.ColLastName) && studentTable.HasColumn(model.ColLastName) {
		setExtra(out, model.ColLastName+"_sis", student.LastName)
	}
	if loanTable.HasColumn(model.ColEmail) && studentTable.HasColumn(model.ColEmail) {
		setExtra(out, model.ColEmail+"_sis", student.Email)
	}

	// Student-side passthrough columns the loan record does not have.
	for k, v := range student.Extra {
		if out.Extra == nil || !hasExtra(out, k) {
			setExtra(out, k, v)
		} else {
			setExtra(out, k+"_sis", v)
		}
	}

	return out
}

func fillMissing(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}

func setExtra(rec *model.StudentRecord, key, value string) {
	if rec.Extra == nil {
		rec.Extra = make(map[string]string)
	}
	rec.Extra[key] = value
}

func hasExtra(rec *model.StudentRecord, key string) bool {
	if rec.Extra == nil {
		return false
	}
	_, ok := rec.Extra[key]
	return ok
}
