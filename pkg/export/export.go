// pkg/export/export.go
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charted-solutions/loanrisk/pkg/aggregate"
	"github.com/charted-solutions/loanrisk/pkg/model"
)

// canonicalOrder fixes the column order for table exports; only columns the
// table actually carries are written.
var canonicalOrder = []string{
	model.ColStudentID,
	model.ColSSN,
	model.ColFirstName,
	model.ColLastName,
	model.ColEmail,
	model.ColDaysDelinquent,
	model.ColOutstandingBalance,
	model.ColLoanType,
	model.ColMajor,
	model.ColProgram,
	model.ColGPA,
	model.ColAcademicStanding,
	model.ColEnrollmentStatus,
}

// WriteTable serializes a canonicalized table as CSV: canonical columns in
// fixed order, derived risk columns, then passthrough columns sorted by
// name.
func WriteTable(w io.Writer, t *model.Table) error {
	return writeRecords(w, t, t.Records)
}

// WriteHighRisk serializes only the HIGH-tier subset of a table.
func WriteHighRisk(w io.Writer, t *model.Table) error {
	var high []*model.StudentRecord
	for _, rec := range t.Records {
		if rec.RiskTier == model.TierHigh {
			high = append(high, rec)
		}
	}
	return writeRecords(w, t, high)
}

// WritePrograms serializes program aggregates as CSV.
func WritePrograms(w io.Writer, aggs []aggregate.ProgramAggregate) error {
	cw := csv.NewWriter(w)

	header := []string{"program", "avg_risk", "student_count", "avg_balance", "total_balance", "avg_delinquent_days", "risk_tier"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, a := range aggs {
		row := []string{
			a.Program,
			formatFloat(a.AvgRisk),
			strconv.Itoa(a.StudentCount),
			formatFloat(a.AvgBalance),
			formatFloat(a.TotalBalance),
			formatFloat(a.AvgDelinquentDays),
			string(a.RiskTier),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeRecords(w io.Writer, t *model.Table, records []*model.StudentRecord) error {
	columns := tableColumns(t, records)

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		row := make([]string, 0, len(columns))
		for _, col := range columns {
			row = append(row, fieldValue(rec, col))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func tableColumns(t *model.Table, records []*model.StudentRecord) []string {
	var columns []string
	for _, col := range canonicalOrder {
		if t.HasColumn(col) {
			columns = append(columns, col)
		}
	}
	for _, col := range []string{"risk_score", "risk_tier", "predictive_score", "predictive_tier"} {
		if t.HasColumn(col) {
			columns = append(columns, col)
		}
	}

	seen := make(map[string]bool)
	var extras []string
	for _, rec := range records {
		for k := range rec.Extra {
			if !seen[k] {
				seen[k] = true
				extras = append(extras, k)
			}
		}
	}
	sort.Strings(extras)

	return append(columns, extras...)
}

func fieldValue(rec *model.StudentRecord, col string) string {
	switch col {
	case model.ColStudentID:
		return rec.StudentID
	case model.ColSSN:
		return rec.SSN
	case model.ColFirstName:
		return rec.FirstName
	case model.ColLastName:
		return rec.LastName
	case model.ColEmail:
		return rec.Email
	case model.ColDaysDelinquent:
		return formatFloat(rec.DaysDelinquent)
	case model.ColOutstandingBalance:
		return formatFloat(rec.OutstandingBalance)
	case model.ColLoanType:
		return rec.LoanType
	case model.ColMajor:
		return rec.Major
	case model.ColProgram:
		return rec.Program
	case model.ColGPA:
		if rec.GPA == nil {
			return ""
		}
		return formatFloat(*rec.GPA)
	case model.ColAcademicStanding:
		return rec.AcademicStanding
	case model.ColEnrollmentStatus:
		return rec.EnrollmentStatus
	case "risk_score":
		return formatFloat(rec.RiskScore)
	case "risk_tier":
		return string(rec.RiskTier)
	case "predictive_score":
		return formatFloat(rec.PredictiveScore)
	case "predictive_tier":
		return string(rec.PredictiveTier)
	default:
		if rec.Extra != nil {
			return rec.Extra[col]
		}
		return ""
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
