// pkg/export/export_test.go
package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charted-solutions/loanrisk/pkg/aggregate"
	"github.com/charted-solutions/loanrisk/pkg/model"
)

func exportTable() *model.Table {
	g := 3.25
	t := model.NewTable(model.SourceMerged)
	for _, c := range []string{
		model.ColStudentID, model.ColSSN, model.ColFirstName,
		model.ColDaysDelinquent, model.ColGPA, "risk_score", "risk_tier",
	} {
		t.Columns[c] = true
	}
	t.Records = []*model.StudentRecord{
		{
			StudentID: "STU100000", SSN: "111", FirstName: "James",
			DaysDelinquent: 45, GPA: &g,
			RiskScore: 0.5, RiskTier: model.TierMedium, Scored: true,
			Extra: map[string]string{"Credit Hours": "60"},
		},
		{
			StudentID: "STU100001", SSN: "222", FirstName: "Mary",
			DaysDelinquent: 200,
			RiskScore: 0.9, RiskTier: model.TierHigh, Scored: true,
			Extra: map[string]string{"Credit Hours": "45"},
		},
	}
	return t
}

func parseCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(buf).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, exportTable()))

	rows := parseCSV(t, &buf)
	require.Len(t, rows, 3)

	// Canonical columns first, derived columns next, passthrough last.
	assert.Equal(t, []string{
		"student_id", "ssn", "first_name", "days_delinquent", "gpa",
		"risk_score", "risk_tier", "Credit Hours",
	}, rows[0])

	assert.Equal(t, []string{"STU100000", "111", "James", "45", "3.25", "0.5", "MEDIUM", "60"}, rows[1])
}

func TestWriteTable_MissingGPAIsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, exportTable()))

	rows := parseCSV(t, &buf)
	// Second record has no GPA.
	assert.Equal(t, "", rows[2][4])
}

func TestWriteHighRisk(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHighRisk(&buf, exportTable()))

	rows := parseCSV(t, &buf)
	require.Len(t, rows, 2)
	assert.Equal(t, "STU100001", rows[1][0])
	assert.Equal(t, "HIGH", rows[1][6])
}

func TestWritePrograms(t *testing.T) {
	aggs := []aggregate.ProgramAggregate{
		{
			Program: "Computer Science", AvgRisk: 0.8, StudentCount: 2,
			AvgBalance: 1500, TotalBalance: 3000, AvgDelinquentDays: 75,
			RiskTier: model.TierHigh,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePrograms(&buf, aggs))

	rows := parseCSV(t, &buf)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{
		"program", "avg_risk", "student_count", "avg_balance",
		"total_balance", "avg_delinquent_days", "risk_tier",
	}, rows[0])
	assert.Equal(t, []string{"Computer Science", "0.8", "2", "1500", "3000", "75", "HIGH"}, rows[1])
}

func TestWritePrograms_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePrograms(&buf, nil))

	rows := parseCSV(t, &buf)
	require.Len(t, rows, 1)
}
