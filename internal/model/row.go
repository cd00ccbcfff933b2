package model

import (
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row is one data record keyed by field name. Keys keep insertion order, which
// is the order cells are visited by validation and the column order used on
// export. The zero Row is an empty row ready for use.
type Row struct {
	cells *orderedmap.OrderedMap[string, string]
}

// NewRow builds a row from alternating field/value pairs.
func NewRow(pairs ...string) Row {
	r := Row{cells: orderedmap.New[string, string]()}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.cells.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Set assigns a value, appending the field to the key order if it is new.
func (r *Row) Set(field, value string) {
	if r.cells == nil {
		r.cells = orderedmap.New[string, string]()
	}
	r.cells.Set(field, value)
}

// Get returns the cell value and whether the field is present.
func (r Row) Get(field string) (string, bool) {
	if r.cells == nil {
		return "", false
	}
	return r.cells.Get(field)
}

// Value returns the cell value, or "" when the field is absent.
func (r Row) Value(field string) string {
	v, _ := r.Get(field)
	return v
}

// Delete removes a field from the row.
func (r *Row) Delete(field string) {
	if r.cells != nil {
		r.cells.Delete(field)
	}
}

// Len returns the number of fields present.
func (r Row) Len() int {
	if r.cells == nil {
		return 0
	}
	return r.cells.Len()
}

// Keys returns the field names in row order.
func (r Row) Keys() []string {
	keys := make([]string, 0, r.Len())
	r.Each(func(field, _ string) {
		keys = append(keys, field)
	})
	return keys
}

// Each calls fn for every cell in row order.
func (r Row) Each(fn func(field, value string)) {
	if r.cells == nil {
		return
	}
	for pair := r.cells.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := Row{cells: orderedmap.New[string, string]()}
	r.Each(func(field, value string) {
		out.cells.Set(field, value)
	})
	return out
}

// IsEmpty reports whether every value is empty or whitespace.
func (r Row) IsEmpty() bool {
	empty := true
	r.Each(func(_, value string) {
		if strings.TrimSpace(value) != "" {
			empty = false
		}
	})
	return empty
}

// MarshalJSON writes the row as a JSON object in key order.
func (r Row) MarshalJSON() ([]byte, error) {
	if r.cells == nil {
		return []byte("{}"), nil
	}
	return r.cells.MarshalJSON()
}

// UnmarshalJSON reads a JSON object, keeping the document's key order.
func (r *Row) UnmarshalJSON(data []byte) error {
	cells := orderedmap.New[string, string]()
	if err := cells.UnmarshalJSON(data); err != nil {
		return err
	}
	r.cells = cells
	return nil
}

var (
	_ json.Marshaler   = Row{}
	_ json.Unmarshaler = (*Row)(nil)
)
