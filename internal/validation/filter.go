package validation

import (
	"fmt"

	"github.com/JonMunkholm/LeadParser/internal/model"
)

// Filter selects a subset of errors for display.
type Filter string

const (
	FilterAll            Filter = "all"
	FilterAutoFixable    Filter = "auto-fixable"
	FilterRequiredFields Filter = "required-fields"
)

// ParseFilter converts a query value into a Filter. The empty string means
// FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterAutoFixable, FilterRequiredFields:
		return f, nil
	default:
		return "", fmt.Errorf("unknown error filter %q", s)
	}
}

// FilterErrors returns the errors matching f, preserving order.
func FilterErrors(errs []model.ValidationError, f Filter) []model.ValidationError {
	if f == "" || f == FilterAll {
		return errs
	}
	out := make([]model.ValidationError, 0, len(errs))
	for _, e := range errs {
		switch f {
		case FilterAutoFixable:
			if e.CanAutoFix {
				out = append(out, e)
			}
		case FilterRequiredFields:
			if e.Kind == model.ErrRequiredFieldEmpty {
				out = append(out, e)
			}
		}
	}
	return out
}
