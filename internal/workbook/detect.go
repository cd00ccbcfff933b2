package workbook

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is a supported spreadsheet container.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXLS  = "application/vnd.ms-excel"
	mimeCSV  = "text/csv"
	mimeZip  = "application/zip"
	mimeOLE  = "application/x-ole-storage"
	mimeText = "text/plain"
)

// AcceptedExtensions lists the upload extensions offered to users.
var AcceptedExtensions = []string{".xlsx", ".xls", ".csv"}

// DetectFormat identifies the container from content, using the file
// extension only to settle generic results (a plain zip or OLE container, or
// unlabelled text).
func DetectFormat(data []byte, fileName string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	m := mimetype.Detect(data)

	switch {
	case m.Is(mimeXLSX):
		return FormatXLSX, nil
	case m.Is(mimeXLS):
		return FormatXLS, nil
	case m.Is(mimeZip) && ext == ".xlsx":
		return FormatXLSX, nil
	case m.Is(mimeOLE) && ext == ".xls":
		return FormatXLS, nil
	case m.Is(mimeCSV):
		return FormatCSV, nil
	case isText(m) && ext == ".csv":
		return FormatCSV, nil
	}
	return "", ErrUnsupportedFormat
}

func isText(m *mimetype.MIME) bool {
	for p := m; p != nil; p = p.Parent() {
		if p.Is(mimeText) {
			return true
		}
	}
	return false
}
