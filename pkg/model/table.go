// pkg/model/table.go
package model

// RawTable is an uncanonicalized parse result: header row plus data rows,
// exactly as they appeared in the file or warehouse result set.
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// CoercionNote records a value the ingestor had to rewrite. Kept on the
// table so a caller can show staff what was silently defaulted.
type CoercionNote struct {
	Row      int    // zero-based data row index
	Column   string // canonical column name
	Original string // source value before coercion
	Applied  string // value used instead
	Reason   string // e.g. "non_numeric", "negative_clamped", "missing_id"
}

// Table is an in-memory canonicalized table. Columns tracks which canonical
// columns the source carried, which drives join-key selection and the
// aggregator's grouping-attribute check.
type Table struct {
	Source  SourceKind
	Records []*StudentRecord
	Columns map[string]bool
	Notes   []CoercionNote
}

// NewTable returns an empty table for the given source.
func NewTable(source SourceKind) *Table {
	return &Table{
		Source:  source,
		Columns: make(map[string]bool),
	}
}

// HasColumn reports whether the source carried the given canonical column.
func (t *Table) HasColumn(name string) bool {
	return t.Columns[name]
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.Records)
}
