// pkg/ingest/ingest.go
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/model"
)

// Synthesized student IDs: zero-padded sequence with a fixed offset, so a
// loan report with no ID column still joins against itself consistently.
const (
	syntheticIDPrefix = "STU"
	syntheticIDOffset = 1000
)

// Ingestor parses uploaded tabular files into canonicalized tables.
type Ingestor struct {
	logger *zap.Logger
}

// NewIngestor creates an Ingestor. A nil logger falls back to zap.L().
func NewIngestor(logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.L()
	}
	return &Ingestor{logger: logger.Named("ingest")}
}

// ReadNSLDS parses an NSLDS delinquent-borrower report.
func (i *Ingestor) ReadNSLDS(r io.Reader, filename string) (*model.Table, error) {
	raw, err := i.Parse(r, filename)
	if err != nil {
		return nil, err
	}
	return i.Canonicalize(raw, NSLDSHeaderMap, model.SourceNSLDS), nil
}

// ReadSIS parses a student-information-system extract.
func (i *Ingestor) ReadSIS(r io.Reader, filename string) (*model.Table, error) {
	raw, err := i.Parse(r, filename)
	if err != nil {
		return nil, err
	}
	return i.Canonicalize(raw, SISHeaderMap, model.SourceSIS), nil
}

// Parse reads a byte stream into a RawTable based on the declared file
// extension: .csv is parsed as delimited text, anything else as a workbook.
// Returns a *model.ParseError when the stream is not valid for the format.
func (i *Ingestor) Parse(r io.Reader, filename string) (*model.RawTable, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".csv" {
		return i.parseCSV(r, filename)
	}
	return i.parseWorkbook(r, filename)
}

func (i *Ingestor) parseCSV(r io.Reader, filename string) (*model.RawTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, model.NewParseError(filename, "csv", err)
	}
	if len(records) == 0 {
		return nil, model.NewParseError(filename, "csv", errors.New("file is empty"))
	}

	raw := &model.RawTable{Headers: records[0], Rows: records[1:]}
	i.logger.Info("Parsed CSV file",
		zap.String("filename", filename),
		zap.Int("columns", len(raw.Headers)),
		zap.Int("rows", len(raw.Rows)))
	return raw, nil
}

func (i *Ingestor) parseWorkbook(r io.Reader, filename string) (*model.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, model.NewParseError(filename, "xlsx", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, model.NewParseError(filename, "xlsx", errors.New("workbook has no sheets"))
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, model.NewParseError(filename, "xlsx", err)
	}
	if len(rows) == 0 {
		return nil, model.NewParseError(filename, "xlsx", errors.New("first sheet is empty"))
	}

	raw := &model.RawTable{Headers: rows[0], Rows: rows[1:]}
	i.logger.Info("Parsed workbook",
		zap.String("filename", filename),
		zap.String("sheet", sheets[0]),
		zap.Int("columns", len(raw.Headers)),
		zap.Int("rows", len(raw.Rows)))
	return raw, nil
}

// Canonicalize renames recognized headers, populates the canonical schema
// field by field, coerces numeric columns (silent default to 0), and
// synthesizes student IDs when the source carries no ID column.
func (i *Ingestor) Canonicalize(raw *model.RawTable, mapping map[string]string, source model.SourceKind) *model.Table {
	table := model.NewTable(source)

	// Rename headers; unknown headers keep their source name and land in Extra.
	canonical := make([]string, len(raw.Headers))
	for idx, h := range raw.Headers {
		name := strings.TrimSpace(h)
		if mapped, ok := mapping[name]; ok {
			name = mapped
		}
		canonical[idx] = name
		table.Columns[name] = true
	}

	// Only the loan-report path synthesizes IDs: a delinquency report with
	// no identifier still needs per-row identity, while a student extract
	// without one simply cannot serve as a join side on student_id.
	synthesize := source == model.SourceNSLDS && !table.Columns[model.ColStudentID]

	for rowIdx, row := range raw.Rows {
		rec := &model.StudentRecord{}

		for colIdx, name := range canonical {
			var value string
			if colIdx < len(row) {
				value = row[colIdx]
			}
			i.setField(table, rec, rowIdx, name, value)
		}

		if synthesize {
			rec.StudentID = fmt.Sprintf("%s%06d", syntheticIDPrefix, rowIdx+syntheticIDOffset)
		}

		table.Records = append(table.Records, rec)
	}

	if synthesize {
		table.Columns[model.ColStudentID] = true
	}

	i.logger.Info("Canonicalized table",
		zap.String("source", string(source)),
		zap.Int("rows", len(table.Records)),
		zap.Int("coercions", len(table.Notes)),
		zap.Bool("synthesized_ids", synthesize))
	return table
}

// setField routes one source cell into the canonical schema. Numeric fields
// that fail coercion become 0 and are noted; this is policy, not an error.
func (i *Ingestor) setField(t *model.Table, rec *model.StudentRecord, row int, name, value string) {
	switch name {
	case model.ColStudentID:
		rec.StudentID = cleanString(value)
	case model.ColSSN:
		rec.SSN = cleanString(value)
	case model.ColFirstName:
		rec.FirstName = cleanString(value)
	case model.ColLastName:
		rec.LastName = cleanString(value)
	case model.ColEmail:
		rec.Email = cleanString(value)
	case model.ColLoanType:
		rec.LoanType = cleanString(value)
	case model.ColMajor:
		rec.Major = cleanString(value)
	case model.ColProgram:
		rec.Program = cleanString(value)
	case model.ColAcademicStanding:
		rec.AcademicStanding = cleanString(value)
	case model.ColEnrollmentStatus:
		rec.EnrollmentStatus = cleanString(value)
	case model.ColDaysDelinquent:
		rec.DaysDelinquent = i.coerceNonNegative(t, row, name, value)
	case model.ColOutstandingBalance:
		rec.OutstandingBalance = i.coerceNonNegative(t, row, name, value)
	case model.ColGPA:
		if v, empty, ok := parseNumeric(value); ok {
			rec.GPA = &v
		} else if !empty {
			t.Notes = append(t.Notes, model.CoercionNote{
				Row: row, Column: name, Original: value, Applied: "", Reason: "non_numeric",
			})
		}
	default:
		if rec.Extra == nil {
			rec.Extra = make(map[string]string)
		}
		rec.Extra[name] = value
	}
}

// coerceNonNegative applies the silent-default policy for the two required
// numeric columns: missing or unparsable values become 0, negatives clamp
// to 0. Only values that were actually rewritten get a note.
func (i *Ingestor) coerceNonNegative(t *model.Table, row int, name, value string) float64 {
	v, empty, ok := parseNumeric(value)
	if empty {
		return 0
	}
	if !ok {
		t.Notes = append(t.Notes, model.CoercionNote{
			Row: row, Column: name, Original: value, Applied: "0", Reason: "non_numeric",
		})
		return 0
	}
	if v < 0 {
		t.Notes = append(t.Notes, model.CoercionNote{
			Row: row, Column: name, Original: value, Applied: "0", Reason: "negative_clamped",
		})
		return 0
	}
	return v
}
