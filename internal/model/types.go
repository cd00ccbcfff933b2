// Package model holds the data shapes shared by the lead cleaning pipeline:
// parsed files and sheets, auto-fix records, validation errors and summaries.
package model

import "time"

// HeaderRowOffset converts a 0-based data row index into the 1-based sheet
// row number shown to users (row 1 is the header, row 2 the first record).
const HeaderRowOffset = 2

// Sheet is one worksheet after parsing. Headers are the schema columns found
// in the source header row, in source order; DroppedColumns are the ones that
// were not recognised.
type Sheet struct {
	Name           string   `json:"name"`
	Rows           []Row    `json:"rows"`
	Headers        []string `json:"headers"`
	DroppedColumns []string `json:"droppedColumns,omitempty"`
	RowCount       int      `json:"rowCount"`
	ColumnCount    int      `json:"columnCount"`
}

// Clone returns a deep copy of the sheet.
func (s Sheet) Clone() Sheet {
	out := s
	out.Headers = append([]string(nil), s.Headers...)
	out.DroppedColumns = append([]string(nil), s.DroppedColumns...)
	out.Rows = make([]Row, len(s.Rows))
	for i, r := range s.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// ParsedFile is the result of ingesting one upload. Edits never mutate a
// ParsedFile in place; they build a replacement.
type ParsedFile struct {
	FileName    string          `json:"fileName"`
	FileSize    int64           `json:"fileSize"`
	UploadedAt  time.Time       `json:"uploadTimestamp"`
	Sheets      []Sheet         `json:"sheets"`
	TotalRows   int             `json:"totalRows"`
	TotalSheets int             `json:"totalSheets"`
	AutoFixes   []AutoFixRecord `json:"autoFixesApplied"`
}

// Clone returns a deep copy of the file.
func (f *ParsedFile) Clone() *ParsedFile {
	if f == nil {
		return nil
	}
	out := *f
	out.Sheets = make([]Sheet, len(f.Sheets))
	for i, s := range f.Sheets {
		out.Sheets[i] = s.Clone()
	}
	out.AutoFixes = append([]AutoFixRecord(nil), f.AutoFixes...)
	return &out
}

// Recount recomputes the sheet and file row counters from the rows held.
func (f *ParsedFile) Recount() {
	total := 0
	for i := range f.Sheets {
		f.Sheets[i].RowCount = len(f.Sheets[i].Rows)
		total += f.Sheets[i].RowCount
	}
	f.TotalRows = total
	f.TotalSheets = len(f.Sheets)
}

// FixKind identifies the normalizer stage that changed a cell.
type FixKind string

const (
	FixSpaceTrim      FixKind = "space-trim"
	FixEmailLowercase FixKind = "email-lowercase"
	FixNameFormat     FixKind = "name-format"
	FixPhoneClean     FixKind = "phone-clean"
	FixDropdownMatch  FixKind = "dropdown-match"
)

// AutoFixRecord logs one change made by the normalizer. OriginalValue is the
// raw cell text as read, not the input of the stage that made the change.
type AutoFixRecord struct {
	RowIndex      int     `json:"rowIndex"`
	Field         string  `json:"field"`
	OriginalValue string  `json:"originalValue"`
	FixedValue    string  `json:"fixedValue"`
	Kind          FixKind `json:"fixType"`
}

// ErrorKind classifies a validation error.
type ErrorKind string

const (
	ErrRequiredFieldEmpty    ErrorKind = "REQUIRED_FIELD_EMPTY"
	ErrInvalidDropdown       ErrorKind = "INVALID_DROPDOWN"
	ErrInvalidFormat         ErrorKind = "INVALID_FORMAT"
	ErrInvalidEmail          ErrorKind = "INVALID_EMAIL"
	ErrLeadingTrailingSpaces ErrorKind = "LEADING_TRAILING_SPACES"
	ErrDuplicateValue        ErrorKind = "DUPLICATE_VALUE"
)

// SeverityError is the only severity currently produced.
const SeverityError = "error"

// ValidationError is a data problem found in one cell. RowIndex uses sheet
// numbering (see HeaderRowOffset).
type ValidationError struct {
	ID           string    `json:"id"`
	RowIndex     int       `json:"rowIndex"`
	Field        string    `json:"field"`
	CellValue    string    `json:"cellValue"`
	Kind         ErrorKind `json:"errorType"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	SuggestedFix *string   `json:"suggestedFix,omitempty"`
	CanAutoFix   bool      `json:"canAutoFix"`
}

// ValidationSummary aggregates a complete error list.
type ValidationSummary struct {
	TotalSheets   int               `json:"totalSheets"`
	TotalRows     int               `json:"totalRows"`
	TotalErrors   int               `json:"totalErrors"`
	ErrorsByKind  map[ErrorKind]int `json:"errorsByType"`
	ErrorsByField map[string]int    `json:"errorsByColumn"`
	CanProceed    bool              `json:"canProceed"`
	Progress      int               `json:"validationProgress"`
}

// Summarize derives the summary for errs. It is only meaningful once errs is
// the full result of a validation pass.
func Summarize(errs []ValidationError, totalSheets, totalRows int) ValidationSummary {
	sum := ValidationSummary{
		TotalSheets:   totalSheets,
		TotalRows:     totalRows,
		TotalErrors:   len(errs),
		ErrorsByKind:  make(map[ErrorKind]int),
		ErrorsByField: make(map[string]int),
		CanProceed:    len(errs) == 0,
		Progress:      100,
	}
	for _, e := range errs {
		sum.ErrorsByKind[e.Kind]++
		sum.ErrorsByField[e.Field]++
	}
	return sum
}
