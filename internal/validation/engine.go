// Package validation checks lead rows against the field registry and reports
// every problem found as a model.ValidationError.
package validation

import (
	"context"
	"fmt"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/LeadParser/internal/fuzzy"
	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
)

// DefaultBatchSize is the number of rows validated between yields.
const DefaultBatchSize = 100

var (
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadparser_validation_errors_total",
			Help: "Validation errors reported, by error kind.",
		},
		[]string{"kind"},
	)
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "leadparser_validation_duration_seconds",
		Help:    "Duration of complete validation passes.",
		Buckets: prometheus.DefBuckets,
	})
)

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	datePattern       = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
)

// Report is the result of one complete validation pass.
type Report struct {
	Errors  []model.ValidationError `json:"errors"`
	Summary model.ValidationSummary `json:"summary"`
}

// Engine validates rows. It is safe for concurrent use.
type Engine struct {
	reg       *schema.Registry
	validate  *validator.Validate
	batchSize int
	newID     func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithBatchSize sets the number of rows validated between yields.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithIDGenerator replaces the error id source.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// New creates an Engine for reg.
func New(reg *schema.Registry, opts ...Option) *Engine {
	e := &Engine{
		reg:       reg,
		validate:  validator.New(),
		batchSize: DefaultBatchSize,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) newError(rowIndex int, field, value string, kind model.ErrorKind, msg string, fix *string) model.ValidationError {
	return model.ValidationError{
		ID:           e.newID(),
		RowIndex:     rowIndex,
		Field:        field,
		CellValue:    value,
		Kind:         kind,
		Severity:     model.SeverityError,
		Message:      msg,
		SuggestedFix: fix,
		CanAutoFix:   fix != nil,
	}
}

// ValidateRow checks every cell of row, in the row's key order. A row whose
// values are all empty produces no errors. cache may be nil.
func (e *Engine) ValidateRow(row model.Row, rowIndex int, cache *fuzzy.Cache) []model.ValidationError {
	if row.IsEmpty() {
		return nil
	}

	var errs []model.ValidationError
	row.Each(func(field, raw string) {
		val := strings.TrimSpace(raw)

		if val == "" {
			if e.reg.IsRequired(field) {
				errs = append(errs, e.newError(rowIndex, field, val, model.ErrRequiredFieldEmpty,
					fmt.Sprintf("%q cannot be empty - it's required!", field), nil))
			}
			return
		}

		if opts := e.reg.Options(field); len(opts) > 0 && !contains(opts, val) {
			var fix *string
			if m, ok := cache.Match(field, val, opts); ok {
				fix = &m
			}
			errs = append(errs, e.newError(rowIndex, field, val, model.ErrInvalidDropdown, dropdownMessage(opts), fix))
		}

		if field == e.reg.IdentifierField() && !identifierPattern.MatchString(val) {
			errs = append(errs, e.newError(rowIndex, field, val, model.ErrInvalidFormat,
				"ID must contain only letters and numbers (no spaces or special characters).", nil))
		}

		if field == e.reg.EmailField() {
			if raw != val {
				trimmed := val
				errs = append(errs, e.newError(rowIndex, field, raw, model.ErrLeadingTrailingSpaces,
					"Email has extra spaces - remove them", &trimmed))
			}
			if e.validate.Var(val, "email") != nil {
				errs = append(errs, e.newError(rowIndex, field, val, model.ErrInvalidEmail,
					"Email format is incorrect (should be name@company.com)", nil))
			}
		}

		if e.reg.IsDateField(field) {
			if msg, ok := checkDate(val); !ok {
				errs = append(errs, e.newError(rowIndex, field, val, model.ErrInvalidFormat, msg, nil))
			}
		}
	})
	return errs
}

// DetectDuplicateIDs reports every row whose identifier appears more than
// once. Positions use sheet numbering and groups are reported in first-seen
// order.
func (e *Engine) DetectDuplicateIDs(rows []model.Row) []model.ValidationError {
	field := e.reg.IdentifierField()
	if field == "" {
		return nil
	}

	var order []string
	positions := make(map[string][]int)
	for i, row := range rows {
		id := strings.TrimSpace(row.Value(field))
		if id == "" {
			continue
		}
		if _, seen := positions[id]; !seen {
			order = append(order, id)
		}
		positions[id] = append(positions[id], i+model.HeaderRowOffset)
	}

	var errs []model.ValidationError
	for _, id := range order {
		at := positions[id]
		if len(at) < 2 {
			continue
		}
		msg := fmt.Sprintf("ID %q appears %d times. Each ID must be unique!", id, len(at))
		for _, r := range at {
			errs = append(errs, e.newError(r, field, id, model.ErrDuplicateValue, msg, nil))
		}
	}
	return errs
}

// Run validates rows in chunks, yielding to the scheduler and checking ctx
// between chunks, then appends duplicate-identifier errors and builds the
// summary. A cancelled run returns ctx.Err() and no report.
func (e *Engine) Run(ctx context.Context, rows []model.Row, totalSheets int) (*Report, error) {
	start := time.Now()
	cache := fuzzy.NewCache(0)

	var errs []model.ValidationError
	for lo := 0; lo < len(rows); lo += e.batchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hi := min(lo+e.batchSize, len(rows))
		for i := lo; i < hi; i++ {
			errs = append(errs, e.ValidateRow(rows[i], i+model.HeaderRowOffset, cache)...)
		}
		runtime.Gosched()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	errs = append(errs, e.DetectDuplicateIDs(rows)...)

	for _, ve := range errs {
		errorsTotal.WithLabelValues(string(ve.Kind)).Inc()
	}
	runDuration.Observe(time.Since(start).Seconds())

	return &Report{
		Errors:  errs,
		Summary: model.Summarize(errs, totalSheets, len(rows)),
	}, nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func dropdownMessage(opts []string) string {
	if len(opts) <= 2 {
		return "Pick from: " + strings.Join(opts, " or ")
	}
	return fmt.Sprintf("Choose from %d options (%s, ...)", len(opts), strings.Join(opts[:2], ", "))
}

// checkDate accepts DD-MM-YYYY strings naming a real calendar day.
func checkDate(v string) (string, bool) {
	m := datePattern.FindStringSubmatch(v)
	if m == nil {
		return "Date should be DD-MM-YYYY format (e.g., 27-10-2025)", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if month < 1 || month > 12 || t.Day() != day || int(t.Month()) != month || t.Year() != year {
		return "This date doesn't exist. Check the day and month.", false
	}
	return "", true
}
