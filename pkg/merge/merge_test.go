// pkg/merge/merge_test.go
package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/model"
)

func newTable(source model.SourceKind, columns []string, recs ...*model.StudentRecord) *model.Table {
	t := model.NewTable(source)
	for _, c := range columns {
		t.Columns[c] = true
	}
	t.Records = recs
	return t
}

func TestMerge_InnerJoinOnSSN(t *testing.T) {
	loans := newTable(model.SourceNSLDS,
		[]string{model.ColSSN, model.ColDaysDelinquent},
		&model.StudentRecord{SSN: "111", DaysDelinquent: 45},
		&model.StudentRecord{SSN: "222", DaysDelinquent: 120},
	)
	students := newTable(model.SourceSIS,
		[]string{model.ColSSN, model.ColMajor},
		&model.StudentRecord{SSN: "222", Major: "Business"},
		&model.StudentRecord{SSN: "333", Major: "Nursing"},
	)

	merged, err := NewMerger(zap.NewNop()).Merge(loans, students)
	require.NoError(t, err)

	// Inner join: only the overlapping key survives.
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, model.SourceMerged, merged.Source)
	assert.Equal(t, "222", merged.Records[0].SSN)
	assert.Equal(t, 120.0, merged.Records[0].DaysDelinquent)
	assert.Equal(t, "Business", merged.Records[0].Major)

	// Columns are the union of both sides.
	assert.True(t, merged.HasColumn(model.ColDaysDelinquent))
	assert.True(t, merged.HasColumn(model.ColMajor))
}

func TestMerge_FallsBackToStudentID(t *testing.T) {
	loans := newTable(model.SourceNSLDS,
		[]string{model.ColStudentID, model.ColDaysDelinquent},
		&model.StudentRecord{StudentID: "STU100000", DaysDelinquent: 30},
	)
	students := newTable(model.SourceSIS,
		[]string{model.ColStudentID, model.ColMajor},
		&model.StudentRecord{StudentID: "STU100000", Major: "Engineering"},
	)

	merged, err := NewMerger(zap.NewNop()).Merge(loans, students)
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, "Engineering", merged.Records[0].Major)
}

func TestMerge_NoCommonKey(t *testing.T) {
	loans := newTable(model.SourceNSLDS, []string{model.ColSSN},
		&model.StudentRecord{SSN: "111"})
	students := newTable(model.SourceSIS, []string{model.ColStudentID},
		&model.StudentRecord{StudentID: "STU100000"})

	_, err := NewMerger(zap.NewNop()).Merge(loans, students)
	require.ErrorIs(t, err, model.ErrNoCommonKey)
}

func TestMerge_PreservesPrimaryOrder(t *testing.T) {
	loans := newTable(model.SourceNSLDS, []string{model.ColSSN},
		&model.StudentRecord{SSN: "333"},
		&model.StudentRecord{SSN: "111"},
		&model.StudentRecord{SSN: "222"},
	)
	students := newTable(model.SourceSIS, []string{model.ColSSN},
		&model.StudentRecord{SSN: "111"},
		&model.StudentRecord{SSN: "222"},
		&model.StudentRecord{SSN: "333"},
	)

	merged, err := NewMerger(zap.NewNop()).Merge(loans, students)
	require.NoError(t, err)
	require.Equal(t, 3, merged.Len())
	assert.Equal(t, "333", merged.Records[0].SSN)
	assert.Equal(t, "111", merged.Records[1].SSN)
	assert.Equal(t, "222", merged.Records[2].SSN)
}

func TestMerge_DuplicateStudentKeysFirstWins(t *testing.T) {
	loans := newTable(model.SourceNSLDS, []string{model.ColSSN},
		&model.StudentRecord{SSN: "111"})
	students := newTable(model.SourceSIS,
		[]string{model.ColSSN, model.ColMajor},
		&model.StudentRecord{SSN: "111", Major: "Business"},
		&model.StudentRecord{SSN: "111", Major: "Nursing"},
	)

	merged, err := NewMerger(zap.NewNop()).Merge(loans, students)
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, "Business", merged.Records[0].Major)
}

func TestMerge_ReconcilesIdentityFields(t *testing.T) {
	g := 3.2
	loans := newTable(model.SourceNSLDS,
		[]string{model.ColSSN, model.ColFirstName, model.ColLastName, model.ColDaysDelinquent},
		&model.StudentRecord{SSN: "222", FirstName: "", LastName: "Johnson", DaysDelinquent: 90},
	)
	students := newTable(model.SourceSIS,
		[]string{model.ColSSN, model.ColStudentID, model.ColFirstName, model.ColLastName, model.ColMajor, model.ColGPA, model.ColAcademicStanding},
		&model.StudentRecord{
			SSN: "222", StudentID: "STU100001",
			FirstName: "Mary", LastName: "Johnson-Smith",
			Major: "Computer Science", GPA: &g, AcademicStanding: "Academic Warning",
		},
	)

	merged, err := NewMerger(zap.NewNop()).Merge(loans, students)
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())

	rec := merged.Records[0]

	// Loan side wins where present, student side fills the blanks.
	assert.Equal(t, "Mary", rec.FirstName)
	assert.Equal(t, "Johnson", rec.LastName)

	// Attributes the loan report never carries come from the student side.
	assert.Equal(t, "STU100001", rec.StudentID)
	assert.Equal(t, "Computer Science", rec.Major)
	assert.Equal(t, "Academic Warning", rec.AcademicStanding)
	require.NotNil(t, rec.GPA)
	assert.Equal(t, 3.2, *rec.GPA)

	// Duplicated identity columns keep the student-side values suffixed.
	assert.Equal(t, "Mary", rec.Extra["first_name_sis"])
	assert.Equal(t, "Johnson-Smith", rec.Extra["last_name_sis"])
}

func TestMerge_StudentExtrasPassThrough(t *testing.T) {
	loans := newTable(model.SourceNSLDS, []string{model.ColSSN},
		&model.StudentRecord{SSN: "111"})
	students := newTable(model.SourceSIS,
		[]string{model.ColSSN, "Credit Hours"},
		&model.StudentRecord{SSN: "111", Extra: map[string]string{"Credit Hours": "60"}},
	)

	merged, err := NewMerger(zap.NewNop()).Merge(loans, students)
	require.NoError(t, err)
	assert.Equal(t, "60", merged.Records[0].Extra["Credit Hours"])
}

func TestMerge_EmptyKeysSkipped(t *testing.T) {
	loans := newTable(model.SourceNSLDS, []string{model.ColSSN},
		&model.StudentRecord{SSN: ""},
		&model.StudentRecord{SSN: "111"},
	)
	students := newTable(model.SourceSIS, []string{model.ColSSN},
		&model.StudentRecord{SSN: ""},
		&model.StudentRecord{SSN: "111"},
	)

	merged, err := NewMerger(zap.NewNop()).Merge(loans, students)
	require.NoError(t, err)
	require.Equal(t, 1, merged.Len())
	assert.Equal(t, "111", merged.Records[0].SSN)
}
