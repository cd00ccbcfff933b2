package validation

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/LeadParser/internal/model"
	"github.com/JonMunkholm/LeadParser/internal/schema"
)

func newTestEngine(opts ...Option) *Engine {
	n := 0
	opts = append([]Option{WithIDGenerator(func() string {
		n++
		return "e" + strconv.Itoa(n)
	})}, opts...)
	return New(schema.MustLead(), opts...)
}

// validRow returns a row that passes every rule.
func validRow(id string) model.Row {
	return model.NewRow(
		"ID", id,
		"Lead Status", "Open",
		"Status", "Active",
		"Lead Stage", "New",
		"Territory", "Marketing North",
		"Organization Name", "Acme",
		"Email", "ada@acme.io",
		"Qualified on", "27-10-2025",
	)
}

func errorKinds(errs []model.ValidationError) []model.ErrorKind {
	out := make([]model.ErrorKind, len(errs))
	for i, e := range errs {
		out[i] = e.Kind
	}
	return out
}

// =============================================================================
// ValidateRow
// =============================================================================

func TestValidateRow_ValidRow(t *testing.T) {
	e := newTestEngine()
	assert.Empty(t, e.ValidateRow(validRow("A1"), 2, nil))
}

func TestValidateRow_EmptyRowIgnored(t *testing.T) {
	e := newTestEngine()
	row := model.NewRow("ID", "", "Territory", "  ")
	assert.Empty(t, e.ValidateRow(row, 2, nil))
}

func TestValidateRow_Rules(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		value     string
		wantKinds []model.ErrorKind
		wantMsg   string
		wantFix   string
	}{
		{
			name:      "required empty",
			field:     "Territory",
			value:     "",
			wantKinds: []model.ErrorKind{model.ErrRequiredFieldEmpty},
			wantMsg:   `"Territory" cannot be empty - it's required!`,
		},
		{
			name:      "required whitespace",
			field:     "Lead Status",
			value:     "   ",
			wantKinds: []model.ErrorKind{model.ErrRequiredFieldEmpty},
		},
		{
			name:      "dropdown with suggestion",
			field:     "Territory",
			value:     "marketing north",
			wantKinds: []model.ErrorKind{model.ErrInvalidDropdown},
			wantMsg:   "Choose from 5 options (Sales MG HQ - John Smith, Marketing Central- Jane Doe, ...)",
			wantFix:   "Marketing North",
		},
		{
			name:      "two option dropdown",
			field:     "Gender",
			value:     "Robot",
			wantKinds: []model.ErrorKind{model.ErrInvalidDropdown},
			wantMsg:   "Pick from: Male or Female",
		},
		{
			name:      "identifier format",
			field:     "ID",
			value:     "A-1",
			wantKinds: []model.ErrorKind{model.ErrInvalidFormat},
		},
		{
			name:      "bad email",
			field:     "Email",
			value:     "bad-email",
			wantKinds: []model.ErrorKind{model.ErrInvalidEmail},
			wantMsg:   "Email format is incorrect (should be name@company.com)",
		},
		{
			name:      "email with spaces",
			field:     "Email",
			value:     " ada@acme.io ",
			wantKinds: []model.ErrorKind{model.ErrLeadingTrailingSpaces},
			wantFix:   "ada@acme.io",
		},
		{
			name:      "date wrong format",
			field:     "Qualified on",
			value:     "2025-10-27",
			wantKinds: []model.ErrorKind{model.ErrInvalidFormat},
			wantMsg:   "Date should be DD-MM-YYYY format (e.g., 27-10-2025)",
		},
		{
			name:      "date does not exist",
			field:     "Qualified on",
			value:     "31-02-2024",
			wantKinds: []model.ErrorKind{model.ErrInvalidFormat},
			wantMsg:   "This date doesn't exist. Check the day and month.",
		},
		{
			name:      "leap day accepted",
			field:     "Qualified on",
			value:     "29-02-2024",
			wantKinds: []model.ErrorKind{},
		},
		{
			name:      "leap day in common year",
			field:     "Qualified on",
			value:     "29-02-2023",
			wantKinds: []model.ErrorKind{model.ErrInvalidFormat},
			wantMsg:   "This date doesn't exist. Check the day and month.",
		},
		{
			name:      "month thirteen",
			field:     "Qualified on",
			value:     "01-13-2024",
			wantKinds: []model.ErrorKind{model.ErrInvalidFormat},
		},
		{
			name:      "optional empty",
			field:     "Email",
			value:     "",
			wantKinds: []model.ErrorKind{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			row := validRow("A1")
			row.Set(tt.field, tt.value)

			errs := e.ValidateRow(row, 7, nil)

			assert.Equal(t, tt.wantKinds, errorKinds(errs))
			for _, ve := range errs {
				assert.Equal(t, 7, ve.RowIndex)
				assert.Equal(t, tt.field, ve.Field)
				assert.Equal(t, model.SeverityError, ve.Severity)
				assert.Equal(t, ve.SuggestedFix != nil, ve.CanAutoFix)
			}
			if tt.wantMsg != "" {
				require.NotEmpty(t, errs)
				assert.Equal(t, tt.wantMsg, errs[0].Message)
			}
			if tt.wantFix != "" {
				require.NotEmpty(t, errs)
				require.NotNil(t, errs[0].SuggestedFix)
				assert.Equal(t, tt.wantFix, *errs[0].SuggestedFix)
			}
		})
	}
}

func TestValidateRow_RequiredSkipsOtherChecks(t *testing.T) {
	e := newTestEngine()
	row := validRow("A1")
	row.Set("ID", "")

	errs := e.ValidateRow(row, 2, nil)

	require.Len(t, errs, 1)
	assert.Equal(t, model.ErrRequiredFieldEmpty, errs[0].Kind)
	assert.Equal(t, "ID", errs[0].Field)
}

func TestValidateRow_FollowsRowKeyOrder(t *testing.T) {
	e := newTestEngine()
	row := model.NewRow("Territory", "", "ID", "", "Organization Name", "", "Email", "x@y.io")

	errs := e.ValidateRow(row, 2, nil)

	require.Len(t, errs, 3)
	assert.Equal(t, "Territory", errs[0].Field)
	assert.Equal(t, "ID", errs[1].Field)
	assert.Equal(t, "Organization Name", errs[2].Field)
}

func TestValidateRow_UniqueIDs(t *testing.T) {
	e := New(schema.MustLead())
	row := validRow("A1")
	row.Set("ID", "")
	row.Set("Territory", "")

	errs := e.ValidateRow(row, 2, nil)
	require.Len(t, errs, 2)
	assert.NotEqual(t, errs[0].ID, errs[1].ID)
	assert.NotEmpty(t, errs[0].ID)
}

// =============================================================================
// DetectDuplicateIDs
// =============================================================================

func TestDetectDuplicateIDs(t *testing.T) {
	e := newTestEngine()
	rows := []model.Row{
		validRow("A1"),
		validRow("B2"),
		validRow("A1"),
		validRow(" B2 "),
		validRow(""),
		validRow(""),
		validRow("C3"),
	}

	errs := e.DetectDuplicateIDs(rows)

	require.Len(t, errs, 4)
	assert.Equal(t, []int{2, 4, 3, 5}, []int{errs[0].RowIndex, errs[1].RowIndex, errs[2].RowIndex, errs[3].RowIndex})
	assert.Equal(t, `ID "A1" appears 2 times. Each ID must be unique!`, errs[0].Message)
	assert.Equal(t, "B2", errs[2].CellValue)
	for _, ve := range errs {
		assert.Equal(t, model.ErrDuplicateValue, ve.Kind)
		assert.False(t, ve.CanAutoFix)
	}
}

// =============================================================================
// Run
// =============================================================================

func TestRun_BatchesAndSummary(t *testing.T) {
	e := newTestEngine(WithBatchSize(3))

	rows := make([]model.Row, 0, 10)
	for i := 0; i < 10; i++ {
		rows = append(rows, validRow(fmt.Sprintf("R%d", i)))
	}
	rows[4].Set("Email", "nope")
	rows[8].Set("ID", "R1")

	report, err := e.Run(context.Background(), rows, 1)
	require.NoError(t, err)

	assert.Equal(t, []model.ErrorKind{model.ErrInvalidEmail, model.ErrDuplicateValue, model.ErrDuplicateValue}, errorKinds(report.Errors))
	assert.Equal(t, 6, report.Errors[0].RowIndex)
	assert.Equal(t, 3, report.Summary.TotalErrors)
	assert.Equal(t, 10, report.Summary.TotalRows)
	assert.Equal(t, 2, report.Summary.ErrorsByField["ID"])
	assert.False(t, report.Summary.CanProceed)
	assert.Equal(t, 100, report.Summary.Progress)
}

func TestRun_Cancelled(t *testing.T) {
	e := newTestEngine(WithBatchSize(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := e.Run(ctx, []model.Row{validRow("A1"), validRow("A2")}, 1)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, report)
}

func TestRun_Empty(t *testing.T) {
	report, err := newTestEngine().Run(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	assert.True(t, report.Summary.CanProceed)
}

// =============================================================================
// FilterErrors
// =============================================================================

func TestFilterErrors(t *testing.T) {
	fix := "x"
	errs := []model.ValidationError{
		{ID: "1", Kind: model.ErrRequiredFieldEmpty},
		{ID: "2", Kind: model.ErrInvalidDropdown, SuggestedFix: &fix, CanAutoFix: true},
		{ID: "3", Kind: model.ErrInvalidEmail},
	}

	assert.Len(t, FilterErrors(errs, FilterAll), 3)
	assert.Equal(t, "2", FilterErrors(errs, FilterAutoFixable)[0].ID)
	assert.Len(t, FilterErrors(errs, FilterAutoFixable), 1)
	assert.Equal(t, "1", FilterErrors(errs, FilterRequiredFields)[0].ID)

	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, FilterAll, f)
	_, err = ParseFilter("bogus")
	assert.Error(t, err)
}
