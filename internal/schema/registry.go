// Package schema defines the lead field schema and the registry that answers
// questions about it: which fields are required, which are system managed,
// which carry dates, which have a closed list of options, and the canonical
// column order.
//
// A Registry is immutable after construction. Build it once at startup and
// pass it to the components that need it.
package schema

import (
	"errors"
	"fmt"
	"sort"
)

// DisplayFormat is the preferred presentation of a field's header.
type DisplayFormat string

const (
	FormatUppercase  DisplayFormat = "uppercase"
	FormatSentence   DisplayFormat = "sentence"
	FormatCapitalize DisplayFormat = "capitalize"
	FormatEmail      DisplayFormat = "email"
	FormatPhone      DisplayFormat = "phone"
	FormatDate       DisplayFormat = "date"
	FormatText       DisplayFormat = "text"
)

// FieldDefinition describes one column of the schema. Order is assigned by
// the registry from registration sequence.
type FieldDefinition struct {
	Name            string        `json:"name"`
	Required        bool          `json:"required"`
	SystemGenerated bool          `json:"system"`
	IsDate          bool          `json:"isDate"`
	DisplayFormat   DisplayFormat `json:"format,omitempty"`
	Order           int           `json:"order"`
}

// ErrInvalidSchema is wrapped by every registry construction failure.
var ErrInvalidSchema = errors.New("invalid schema")

// Registry is the read-only view of a field schema.
type Registry struct {
	fields []FieldDefinition
	index  map[string]int

	required []string
	system   []string
	dates    []string
	optional []string

	options    map[string][]string
	nameLike   map[string]bool
	phoneLike  map[string]bool
	identifier string
	email      string
}

// Option configures a Registry during construction.
type Option func(*Registry)

// WithOptions attaches a closed option list to a field.
func WithOptions(field string, options ...string) Option {
	return func(r *Registry) {
		r.options[field] = append([]string(nil), options...)
	}
}

// WithNameFields marks fields whose values are person or place names.
func WithNameFields(fields ...string) Option {
	return func(r *Registry) {
		for _, f := range fields {
			r.nameLike[f] = true
		}
	}
}

// WithPhoneFields marks fields holding phone numbers.
func WithPhoneFields(fields ...string) Option {
	return func(r *Registry) {
		for _, f := range fields {
			r.phoneLike[f] = true
		}
	}
}

// WithIdentifier names the field that must be unique and alphanumeric.
func WithIdentifier(field string) Option {
	return func(r *Registry) { r.identifier = field }
}

// WithEmail names the field checked for e-mail grammar.
func WithEmail(field string) Option {
	return func(r *Registry) { r.email = field }
}

// NewRegistry builds a registry from defs in registration order. Field order
// is the position in defs. Every field referenced by an option is checked
// against the definitions.
func NewRegistry(defs []FieldDefinition, opts ...Option) (*Registry, error) {
	r := &Registry{
		fields:    make([]FieldDefinition, len(defs)),
		index:     make(map[string]int, len(defs)),
		options:   make(map[string][]string),
		nameLike:  make(map[string]bool),
		phoneLike: make(map[string]bool),
	}

	for i, d := range defs {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: field %d has no name", ErrInvalidSchema, i)
		}
		if _, dup := r.index[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, d.Name)
		}
		d.Order = i
		r.fields[i] = d
		r.index[d.Name] = i
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.checkReferences(); err != nil {
		return nil, err
	}

	for _, d := range r.fields {
		switch {
		case d.Required:
			r.required = append(r.required, d.Name)
		case d.SystemGenerated:
			r.system = append(r.system, d.Name)
		default:
			r.optional = append(r.optional, d.Name)
		}
		if d.IsDate {
			r.dates = append(r.dates, d.Name)
		}
	}

	return r, nil
}

func (r *Registry) checkReferences() error {
	var unknown []string
	check := func(kind, name string) {
		if _, ok := r.index[name]; !ok {
			unknown = append(unknown, fmt.Sprintf("%s %q", kind, name))
		}
	}
	for name, opts := range r.options {
		check("option set", name)
		if len(opts) == 0 {
			unknown = append(unknown, fmt.Sprintf("option set %q is empty", name))
		}
	}
	for name := range r.nameLike {
		check("name field", name)
	}
	for name := range r.phoneLike {
		check("phone field", name)
	}
	if r.identifier != "" {
		check("identifier", r.identifier)
	}
	if r.email != "" {
		check("email field", r.email)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: unknown references: %v", ErrInvalidSchema, unknown)
	}
	return nil
}

// Fields returns all definitions in order.
func (r *Registry) Fields() []FieldDefinition {
	return append([]FieldDefinition(nil), r.fields...)
}

// Names returns all field names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the definition for name.
func (r *Registry) Field(name string) (FieldDefinition, bool) {
	i, ok := r.index[name]
	if !ok {
		return FieldDefinition{}, false
	}
	return r.fields[i], true
}

// RequiredFields returns required field names in order.
func (r *Registry) RequiredFields() []string { return append([]string(nil), r.required...) }

// SystemFields returns system-managed field names in order.
func (r *Registry) SystemFields() []string { return append([]string(nil), r.system...) }

// DateFields returns date field names in order.
func (r *Registry) DateFields() []string { return append([]string(nil), r.dates...) }

// OptionalFields returns fields that are neither required nor system managed.
func (r *Registry) OptionalFields() []string { return append([]string(nil), r.optional...) }

// OrderOf returns the position of name, or false for unknown names.
func (r *Registry) OrderOf(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// IsKnown reports whether name is a schema field.
func (r *Registry) IsKnown(name string) bool {
	_, ok := r.index[name]
	return ok
}

// IsRequired reports whether name is a required field.
func (r *Registry) IsRequired(name string) bool {
	i, ok := r.index[name]
	return ok && r.fields[i].Required
}

// IsDateField reports whether name holds dates.
func (r *Registry) IsDateField(name string) bool {
	i, ok := r.index[name]
	return ok && r.fields[i].IsDate
}

// Options returns the closed option list for name, or nil.
func (r *Registry) Options(name string) []string {
	return r.options[name]
}

// IsNameField reports whether values of name are title-cased.
func (r *Registry) IsNameField(name string) bool { return r.nameLike[name] }

// IsPhoneField reports whether values of name are phone numbers.
func (r *Registry) IsPhoneField(name string) bool { return r.phoneLike[name] }

// IdentifierField returns the unique identifier field, or "".
func (r *Registry) IdentifierField() string { return r.identifier }

// EmailField returns the e-mail field, or "".
func (r *Registry) EmailField() string { return r.email }

// SortByOrder returns names sorted by schema order. Unknown names follow the
// known ones, keeping their relative input order.
func (r *Registry) SortByOrder(names []string) []string {
	out := append([]string(nil), names...)
	sort.SliceStable(out, func(i, j int) bool {
		oi, ki := r.index[out[i]]
		oj, kj := r.index[out[j]]
		switch {
		case ki && kj:
			return oi < oj
		case ki:
			return true
		default:
			return false
		}
	})
	return out
}
