// Package workbook converts uploaded spreadsheets (xlsx, xls, csv) into
// model.ParsedFile values and writes cleaned sheets back out as xlsx.
package workbook

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/LeadParser/internal/autofix"
	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
)

// DefaultMaxFileSize is the upload size cap (10 MiB).
const DefaultMaxFileSize int64 = 10 << 20

var (
	ErrEmptyFile         = errors.New("empty file")
	ErrFileTooLarge      = errors.New("file too large")
	ErrUnsupportedFormat = errors.New("unsupported file type")
	ErrCorruptWorkbook   = errors.New("corrupt workbook")
	ErrInvalidCSV        = errors.New("invalid csv")
	ErrEncoding          = errors.New("encoding error")
)

// ParseError reports a file that could not be parsed. Nothing from a failed
// parse is kept.
type ParseError struct {
	FileName string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", e.FileName, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parser reads uploads into normalized sheets.
type Parser struct {
	reg     *schema.Registry
	norm    *autofix.Normalizer
	maxSize int64
	now     func() time.Time
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMaxFileSize overrides DefaultMaxFileSize.
func WithMaxFileSize(n int64) ParserOption {
	return func(p *Parser) {
		if n > 0 {
			p.maxSize = n
		}
	}
}

// WithClock sets the source of upload timestamps.
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) { p.now = now }
}

// NewParser creates a Parser that keeps only reg's columns and cleans every
// kept cell with norm.
func NewParser(reg *schema.Registry, norm *autofix.Normalizer, opts ...ParserOption) *Parser {
	p := &Parser{
		reg:     reg,
		norm:    norm,
		maxSize: DefaultMaxFileSize,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxFileSize returns the configured size cap.
func (p *Parser) MaxFileSize() int64 { return p.maxSize }

// Parse reads data as fileName. The first row of each sheet is its header;
// columns outside the schema are dropped, each kept cell is normalized, and
// rows left with no value are skipped. Fixes are collected row by row, with
// row numbers counted from the header (row 1).
func (p *Parser) Parse(data []byte, fileName string) (*model.ParsedFile, error) {
	fail := func(err error) (*model.ParsedFile, error) {
		return nil, &ParseError{FileName: fileName, Err: err}
	}

	if len(data) == 0 {
		return fail(ErrEmptyFile)
	}
	if int64(len(data)) > p.maxSize {
		return fail(fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(data), p.maxSize))
	}

	format, err := DetectFormat(data, fileName)
	if err != nil {
		return fail(err)
	}

	raws, err := readSheets(format, data)
	if err != nil {
		return fail(err)
	}

	file := &model.ParsedFile{
		FileName:    fileName,
		FileSize:    int64(len(data)),
		UploadedAt:  p.now(),
		Sheets:      make([]model.Sheet, 0, len(raws)),
		TotalSheets: len(raws),
	}
	for _, raw := range raws {
		sheet, fixes := p.buildSheet(raw)
		file.Sheets = append(file.Sheets, sheet)
		file.AutoFixes = append(file.AutoFixes, fixes...)
		file.TotalRows += sheet.RowCount
	}
	return file, nil
}

type column struct {
	index int
	name  string
}

func (p *Parser) buildSheet(raw rawSheet) (model.Sheet, []model.AutoFixRecord) {
	sheet := model.Sheet{Name: raw.name, Rows: []model.Row{}, Headers: []string{}}
	if len(raw.rows) == 0 {
		return sheet, nil
	}

	var cols []column
	for i, h := range raw.rows[0] {
		h = cleanHeader(h)
		switch {
		case p.reg.IsKnown(h):
			cols = append(cols, column{index: i, name: h})
			sheet.Headers = append(sheet.Headers, h)
		case h != "":
			sheet.DroppedColumns = append(sheet.DroppedColumns, h)
		}
	}

	var fixes []model.AutoFixRecord
	for r := 1; r < len(raw.rows); r++ {
		cells := raw.rows[r]
		var row model.Row
		hasData := false
		for _, c := range cols {
			val := ""
			if c.index < len(cells) {
				val = cells[c.index]
			}
			res := p.norm.NormalizeCell(val, c.name, r+1)
			fixes = append(fixes, res.Fixes...)
			row.Set(c.name, res.Value)
			if res.Value != "" {
				hasData = true
			}
		}
		if hasData {
			sheet.Rows = append(sheet.Rows, row)
		}
	}

	sheet.RowCount = len(sheet.Rows)
	sheet.ColumnCount = len(sheet.Headers)
	return sheet, fixes
}

// cleanHeader trims a header cell and unwraps the ="..." form some exports
// use to force text.
func cleanHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	if strings.HasPrefix(h, `="`) && strings.HasSuffix(h, `"`) && len(h) >= 3 {
		h = h[2 : len(h)-1]
	}
	return strings.TrimSpace(h)
}
