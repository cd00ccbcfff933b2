package workbook

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
)

// ErrNothingToExport is returned when every sheet is empty.
var ErrNothingToExport = errors.New("nothing to export: all sheets are empty")

// maxSheetName is Excel's limit on worksheet name length.
const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")",
)

// Export writes each non-empty sheet to an xlsx worksheet. A sheet's column
// order is its first row's key order; rows are written as-is without
// re-validation.
func Export(sheets []model.Sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	used := make(map[string]bool)
	written := 0

	for _, s := range sheets {
		if len(s.Rows) == 0 {
			continue
		}
		name := uniqueSheetName(s.Name, used)

		if written == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, fmt.Errorf("rename sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %q: %w", name, err)
		}

		if err := writeRows(f, name, s.Rows); err != nil {
			return nil, err
		}
		written++
	}

	if written == 0 {
		return nil, ErrNothingToExport
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows []model.Row) error {
	headers := rows[0].Keys()

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", sheet, err)
	}

	for i, row := range rows {
		cells := make([]any, len(headers))
		for j, h := range headers {
			cells[j] = row.Value(h)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, sheet, err)
		}
	}
	return nil
}

// uniqueSheetName makes name acceptable to Excel and distinct from earlier
// names (compared case-insensitively, as Excel does).
func uniqueSheetName(name string, used map[string]bool) string {
	base := strings.Trim(sheetNameReplacer.Replace(name), "' ")
	if base == "" {
		base = "Sheet"
	}
	if r := []rune(base); len(r) > maxSheetName {
		base = string(r[:maxSheetName])
	}

	candidate := base
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// ExportName derives the download name for a cleaned file.
func ExportName(original string) string {
	base := strings.TrimSuffix(original, filepath.Ext(original))
	if base == "" {
		base = "leads"
	}
	return base + "_cleaned.xlsx"
}

// BlankRows is the number of empty records in a new blank file.
const BlankRows = 10

// Blank returns a new file with one sheet holding rows empty records that
// carry every schema column.
func Blank(reg *schema.Registry, rows int, now time.Time) *model.ParsedFile {
	headers := reg.Names()
	sheetRows := make([]model.Row, rows)
	for i := range sheetRows {
		for _, h := range headers {
			sheetRows[i].Set(h, "")
		}
	}
	return &model.ParsedFile{
		FileName:   fmt.Sprintf("New_Lead_File_%s.xlsx", now.Format("2006-01-02")),
		UploadedAt: now,
		Sheets: []model.Sheet{{
			Name:        "Sheet1",
			Rows:        sheetRows,
			Headers:     headers,
			RowCount:    rows,
			ColumnCount: len(headers),
		}},
		TotalRows:   rows,
		TotalSheets: 1,
	}
}
