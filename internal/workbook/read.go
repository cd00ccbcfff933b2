package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// rawSheet is a worksheet as a grid of display strings, header row first.
type rawSheet struct {
	name string
	rows [][]string
}

// csvSheetName names the single sheet produced from a CSV file.
const csvSheetName = "Sheet1"

func readSheets(format Format, data []byte) ([]rawSheet, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(data)
	case FormatXLS:
		return readXLS(data)
	case FormatCSV:
		return readCSV(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// readXLSX reads every worksheet as formatted cell text.
func readXLSX(data []byte) ([]rawSheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptWorkbook, err)
	}
	defer f.Close()

	names := f.GetSheetList()
	sheets := make([]rawSheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrCorruptWorkbook, name, err)
		}
		sheets = append(sheets, rawSheet{name: name, rows: rows})
	}
	return sheets, nil
}

// readXLS reads a legacy BIFF workbook. The decoder panics on some malformed
// input, so panics are reported as corrupt workbooks.
func readXLS(data []byte) (sheets []rawSheet, err error) {
	defer func() {
		if r := recover(); r != nil {
			sheets, err = nil, fmt.Errorf("%w: %v", ErrCorruptWorkbook, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptWorkbook, err)
	}

	for i := 0; i < wb.NumSheets(); i++ {
		sh := wb.GetSheet(i)
		if sh == nil {
			continue
		}
		rs := rawSheet{name: sh.Name}
		for r := 0; r <= int(sh.MaxRow); r++ {
			row := sh.Row(r)
			if row == nil {
				rs.rows = append(rs.rows, nil)
				continue
			}
			cells := make([]string, row.LastCol())
			for c := row.FirstCol(); c < row.LastCol(); c++ {
				cells[c] = row.Col(c)
			}
			rs.rows = append(rs.rows, cells)
		}
		sheets = append(sheets, rs)
	}
	return sheets, nil
}

// readCSV decodes CSV text. A UTF-8 byte order mark is dropped and a UTF-16
// one selects UTF-16 in its byte order. Other input that is not valid UTF-8
// is read as Windows-1252, the usual encoding of CSV files saved by Excel.
func readCSV(data []byte) ([]rawSheet, error) {
	r, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	return []rawSheet{{name: csvSheetName, rows: rows}}, nil
}

func decodeText(data []byte) (io.Reader, error) {
	if bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		decoded, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
		}
		return bytes.NewReader(decoded), nil
	}

	body := bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(body) {
		return transform.NewReader(bytes.NewReader(data), unicode.UTF8BOM.NewDecoder()), nil
	}
	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return bytes.NewReader(decoded), nil
}
