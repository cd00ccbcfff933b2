package workbook

import (
	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
)

// HeaderCheck describes how a sheet's header row compares with the schema.
type HeaderCheck struct {
	Valid           bool     `json:"valid"`
	MissingRequired []string `json:"missingRequired"`
	Unknown         []string `json:"unknown"`
	OrderMismatch   bool     `json:"orderMismatch"`
}

// CheckHeaders reports required columns absent from sheet, columns that were
// dropped as unknown, and whether the kept columns deviate from schema order.
func CheckHeaders(sheet model.Sheet, reg *schema.Registry) HeaderCheck {
	present := make(map[string]bool, len(sheet.Headers))
	for _, h := range sheet.Headers {
		present[h] = true
	}

	hc := HeaderCheck{
		MissingRequired: []string{},
		Unknown:         append([]string{}, sheet.DroppedColumns...),
	}
	for _, name := range reg.RequiredFields() {
		if !present[name] {
			hc.MissingRequired = append(hc.MissingRequired, name)
		}
	}

	sorted := reg.SortByOrder(sheet.Headers)
	for i := range sorted {
		if sorted[i] != sheet.Headers[i] {
			hc.OrderMismatch = true
			break
		}
	}

	hc.Valid = len(hc.MissingRequired) == 0 && len(hc.Unknown) == 0
	return hc
}
