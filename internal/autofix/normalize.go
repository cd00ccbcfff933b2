// Package autofix applies deterministic clean-up to raw cell values and logs
// every change it makes.
package autofix

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/LeadParser/internal/fuzzy"
	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
)

var fixesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "leadparser_autofix_total",
		Help: "Cell changes made by the normalizer, by fix kind.",
	},
	[]string{"kind"},
)

// emailPattern is a loose shape check: something@something.tld, no spaces.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// phoneSeparators are stripped from phone fields.
var phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", "\t", "")

// Result is the normalized value of one cell and the fixes that produced it.
type Result struct {
	Value string
	Fixes []model.AutoFixRecord
}

// Normalizer cleans cells according to a field registry.
type Normalizer struct {
	reg *schema.Registry
}

// New creates a Normalizer for reg.
func New(reg *schema.Registry) *Normalizer {
	return &Normalizer{reg: reg}
}

// NormalizeCell runs the fix stages in order, each on the previous output:
// space trim, e-mail lowercasing, name casing, phone separator removal and
// dropdown matching. A fix is logged only when a stage changes the value.
// Every record carries raw as OriginalValue.
func (n *Normalizer) NormalizeCell(raw, field string, rowIndex int) Result {
	var res Result
	value := raw

	apply := func(kind model.FixKind, next string) {
		if next == value {
			return
		}
		res.Fixes = append(res.Fixes, model.AutoFixRecord{
			RowIndex:      rowIndex,
			Field:         field,
			OriginalValue: raw,
			FixedValue:    next,
			Kind:          kind,
		})
		fixesTotal.WithLabelValues(string(kind)).Inc()
		value = next
	}

	apply(model.FixSpaceTrim, strings.TrimSpace(value))
	if value == "" {
		res.Value = value
		return res
	}

	emailLike := looksLikeEmail(value)
	if emailLike {
		apply(model.FixEmailLowercase, strings.ToLower(value))
	}

	options := n.reg.Options(field)

	if n.reg.IsNameField(field) && !emailLike && !equalsOption(value, options) {
		apply(model.FixNameFormat, TitleCase(value))
	}

	if n.reg.IsPhoneField(field) {
		apply(model.FixPhoneClean, phoneSeparators.Replace(value))
	}

	if len(options) > 0 {
		if m, ok := fuzzy.Match(value, options); ok {
			apply(model.FixDropdownMatch, m)
		}
	}

	res.Value = value
	return res
}

// NormalizeRow normalizes every cell of row in key order and returns the
// cleaned row with the concatenated fixes.
func (n *Normalizer) NormalizeRow(row model.Row, rowIndex int) (model.Row, []model.AutoFixRecord) {
	var (
		out   model.Row
		fixes []model.AutoFixRecord
	)
	row.Each(func(field, value string) {
		res := n.NormalizeCell(value, field, rowIndex)
		out.Set(field, res.Value)
		fixes = append(fixes, res.Fixes...)
	})
	return out, fixes
}

func looksLikeEmail(v string) bool {
	return emailPattern.MatchString(v) || strings.Contains(v, "@")
}

// equalsOption reports whether v is one of options ignoring case. Such values
// are left to the dropdown stage so that option casing ("HVAC", "IT SP")
// survives.
func equalsOption(v string, options []string) bool {
	for _, o := range options {
		if strings.EqualFold(v, o) {
			return true
		}
	}
	return false
}

// TitleCase lowercases s and uppercases every letter that starts a word. A
// word starts at the beginning of s or after any rune that is not a letter,
// digit or underscore.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	atStart := true
	for _, r := range strings.ToLower(s) {
		word := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		if word && atStart {
			r = unicode.ToUpper(r)
		}
		atStart = !word
		b.WriteRune(r)
	}
	return b.String()
}
