package workbook

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/JonMunkholm/LeadParser/internal/autofix"
	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
)

var fixedNow = time.Date(2025, 10, 27, 9, 30, 0, 0, time.UTC)

func newTestParser(opts ...ParserOption) *Parser {
	reg := schema.MustLead()
	opts = append([]ParserOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewParser(reg, autofix.New(reg), opts...)
}

// =============================================================================
// CSV parsing
// =============================================================================

func TestParse_CSV(t *testing.T) {
	data := "\xEF\xBB\xBFID,Favourite Colour,First Name,Email\n" +
		"A1,blue,  ada ,ADA@X.IO\n" +
		",,   ,\n" +
		"A2,red,grace,grace@navy.mil\n"

	file, err := newTestParser().Parse([]byte(data), "leads.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if file.TotalSheets != 1 || len(file.Sheets) != 1 {
		t.Fatalf("TotalSheets = %d, len(Sheets) = %d, want 1", file.TotalSheets, len(file.Sheets))
	}
	sheet := file.Sheets[0]

	if want := []string{"ID", "First Name", "Email"}; !reflect.DeepEqual(sheet.Headers, want) {
		t.Errorf("Headers = %v, want %v", sheet.Headers, want)
	}
	if want := []string{"Favourite Colour"}; !reflect.DeepEqual(sheet.DroppedColumns, want) {
		t.Errorf("DroppedColumns = %v, want %v", sheet.DroppedColumns, want)
	}
	if sheet.RowCount != 2 || file.TotalRows != 2 {
		t.Errorf("RowCount = %d, TotalRows = %d, want 2", sheet.RowCount, file.TotalRows)
	}
	if got := sheet.Rows[0].Value("First Name"); got != "Ada" {
		t.Errorf("First Name = %q, want %q", got, "Ada")
	}
	if got := sheet.Rows[0].Value("Email"); got != "ada@x.io" {
		t.Errorf("Email = %q, want %q", got, "ada@x.io")
	}
	if got := sheet.Rows[1].Value("ID"); got != "A2" {
		t.Errorf("second row ID = %q, want A2", got)
	}
	if !file.UploadedAt.Equal(fixedNow) {
		t.Errorf("UploadedAt = %v, want %v", file.UploadedAt, fixedNow)
	}

	// " ada " -> trim + name-format at row 2, "ADA@X.IO" -> lowercase at row 2,
	// "   " -> trim at row 3 (row dropped but fix logged), "grace" -> name-format at row 4.
	var got []string
	for _, f := range file.AutoFixes {
		got = append(got, f.Field+"@"+string(rune('0'+f.RowIndex))+":"+string(f.Kind))
	}
	want := []string{
		"First Name@2:space-trim",
		"First Name@2:name-format",
		"Email@2:email-lowercase",
		"First Name@3:space-trim",
		"First Name@4:name-format",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AutoFixes = %v, want %v", got, want)
	}
}

func TestParse_CSVShortRows(t *testing.T) {
	data := "ID,Territory,Email\nA1\n"

	file, err := newTestParser().Parse([]byte(data), "short.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	row := file.Sheets[0].Rows[0]
	if want := []string{"ID", "Territory", "Email"}; !reflect.DeepEqual(row.Keys(), want) {
		t.Errorf("Keys() = %v, want %v", row.Keys(), want)
	}
	if v, ok := row.Get("Email"); !ok || v != "" {
		t.Errorf("Email = %q, %v; want empty and present", v, ok)
	}
}

func TestParse_Windows1252(t *testing.T) {
	// "Zoë" in Windows-1252
	data := []byte("ID,First Name\nA1,Zo\xEB\n")

	file, err := newTestParser().Parse(data, "legacy.csv")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := file.Sheets[0].Rows[0].Value("First Name"); got != "Zoë" {
		t.Errorf("First Name = %q, want %q", got, "Zoë")
	}
}

func TestParse_UTF16(t *testing.T) {
	tests := []struct {
		name  string
		order unicode.Endianness
	}{
		{"little endian", unicode.LittleEndian},
		{"big endian", unicode.BigEndian},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := unicode.UTF16(tt.order, unicode.UseBOM).NewEncoder()
			data, err := enc.Bytes([]byte("ID,Email\nA1,ada@x.io\n"))
			if err != nil {
				t.Fatal(err)
			}

			file, err := newTestParser().Parse(data, "leads.csv")
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			sheet := file.Sheets[0]
			if !reflect.DeepEqual(sheet.Headers, []string{"ID", "Email"}) {
				t.Errorf("Headers = %q, want [ID Email]", sheet.Headers)
			}
			if len(sheet.Rows) != 1 {
				t.Fatalf("rows = %d, want 1", len(sheet.Rows))
			}
			if got := sheet.Rows[0].Value("Email"); got != "ada@x.io" {
				t.Errorf("Email = %q, want ada@x.io", got)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		fileName string
		opts     []ParserOption
		want     error
	}{
		{"empty", nil, "a.csv", nil, ErrEmptyFile},
		{"too large", []byte("ID\nA1\n"), "a.csv", []ParserOption{WithMaxFileSize(3)}, ErrFileTooLarge},
		{"pdf", []byte("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n"), "leads.pdf", nil, ErrUnsupportedFormat},
		{"text with wrong extension", []byte("just some notes\n"), "notes.txt", nil, ErrUnsupportedFormat},
		{"broken xlsx", []byte("PK\x03\x04garbage"), "leads.xlsx", nil, ErrCorruptWorkbook},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestParser(tt.opts...).Parse(tt.data, tt.fileName)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.want)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("error %T is not *ParseError", err)
			}
			if pe.FileName != tt.fileName {
				t.Errorf("ParseError.FileName = %q, want %q", pe.FileName, tt.fileName)
			}
		})
	}
}

// =============================================================================
// Export
// =============================================================================

func TestExport_RoundTrip(t *testing.T) {
	sheets := []model.Sheet{
		{
			Name: "Leads",
			Rows: []model.Row{
				model.NewRow("Email", "ada@x.io", "ID", "A1", "Territory", "Marketing North"),
				model.NewRow("Email", "", "ID", "A2", "Territory", "IT SP - Bob Johnson"),
			},
		},
		{Name: "Empty"},
		{
			Name: "Leads",
			Rows: []model.Row{model.NewRow("ID", "B1")},
		},
	}

	data, err := Export(sheets)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	file, err := newTestParser().Parse(data, "leads_cleaned.xlsx")
	if err != nil {
		t.Fatalf("Parse(exported) error = %v", err)
	}

	if len(file.Sheets) != 2 {
		t.Fatalf("exported sheets = %d, want 2 (empty sheet skipped)", len(file.Sheets))
	}
	if file.Sheets[0].Name != "Leads" || file.Sheets[1].Name != "Leads (2)" {
		t.Errorf("sheet names = %q, %q", file.Sheets[0].Name, file.Sheets[1].Name)
	}

	first := file.Sheets[0]
	if want := []string{"Email", "ID", "Territory"}; !reflect.DeepEqual(first.Headers, want) {
		t.Errorf("Headers = %v, want %v (first row key order)", first.Headers, want)
	}
	if len(first.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(first.Rows))
	}
	if got := first.Rows[1].Value("Territory"); got != "IT SP - Bob Johnson" {
		t.Errorf("Territory = %q", got)
	}
	if len(file.AutoFixes) != 0 {
		t.Errorf("clean export produced fixes on re-read: %+v", file.AutoFixes)
	}
}

func TestExport_NothingToExport(t *testing.T) {
	_, err := Export([]model.Sheet{{Name: "A"}, {Name: "B", Rows: []model.Row{}}})
	if !errors.Is(err, ErrNothingToExport) {
		t.Errorf("Export() error = %v, want ErrNothingToExport", err)
	}
}

func TestExportName(t *testing.T) {
	tests := map[string]string{
		"leads.xlsx":         "leads_cleaned.xlsx",
		"q3.leads.csv":       "q3.leads_cleaned.xlsx",
		"noext":              "noext_cleaned.xlsx",
		"":                   "leads_cleaned.xlsx",
		"New_Lead_File.xlsx": "New_Lead_File_cleaned.xlsx",
	}
	for in, want := range tests {
		if got := ExportName(in); got != want {
			t.Errorf("ExportName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUniqueSheetName(t *testing.T) {
	used := map[string]bool{}
	names := []string{
		uniqueSheetName("Q3/Q4 [draft]", used),
		uniqueSheetName("q3 q4 (draft)", used),
		uniqueSheetName(strings.Repeat("x", 40), used),
		uniqueSheetName("", used),
	}
	want := []string{"Q3 Q4 (draft)", "q3 q4 (draft) (2)", strings.Repeat("x", 31), "Sheet"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %q, want %q", names, want)
	}
}

// =============================================================================
// Blank file and header checks
// =============================================================================

func TestBlank(t *testing.T) {
	reg := schema.MustLead()
	file := Blank(reg, BlankRows, fixedNow)

	if file.FileName != "New_Lead_File_2025-10-27.xlsx" {
		t.Errorf("FileName = %q", file.FileName)
	}
	if file.TotalRows != 10 || len(file.Sheets[0].Rows) != 10 {
		t.Errorf("TotalRows = %d, rows = %d, want 10", file.TotalRows, len(file.Sheets[0].Rows))
	}
	row := file.Sheets[0].Rows[0]
	if !reflect.DeepEqual(row.Keys(), reg.Names()) {
		t.Error("blank row keys differ from schema order")
	}
	if !row.IsEmpty() {
		t.Error("blank row is not empty")
	}
}

func TestCheckHeaders(t *testing.T) {
	reg := schema.MustLead()

	ok := CheckHeaders(model.Sheet{Headers: reg.RequiredFields()}, reg)
	if !ok.Valid || ok.OrderMismatch || len(ok.MissingRequired) != 0 {
		t.Errorf("required headers in order: %+v", ok)
	}

	bad := CheckHeaders(model.Sheet{
		Headers:        []string{"Email", "ID"},
		DroppedColumns: []string{"Notes"},
	}, reg)
	if bad.Valid {
		t.Error("Valid = true with missing columns")
	}
	if !bad.OrderMismatch {
		t.Error("OrderMismatch = false for Email before ID")
	}
	if len(bad.MissingRequired) != 5 {
		t.Errorf("MissingRequired = %v, want 5 entries", bad.MissingRequired)
	}
	if !reflect.DeepEqual(bad.Unknown, []string{"Notes"}) {
		t.Errorf("Unknown = %v", bad.Unknown)
	}
}
