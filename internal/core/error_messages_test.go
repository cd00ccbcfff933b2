package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/JonMunkholm/LeadParser/internal/auth"
	"github.com/JonMunkholm/LeadParser/internal/workbook"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "parse error wrapping size cap",
			err:         &workbook.ParseError{FileName: "big.xlsx", Err: fmt.Errorf("%w: 11 MB", workbook.ErrFileTooLarge)},
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum upload size",
		},
		{
			name:        "unsupported format",
			err:         &workbook.ParseError{FileName: "a.pdf", Err: workbook.ErrUnsupportedFormat},
			wantCode:    "FILE002",
			wantMessage: "This file type is not supported",
		},
		{
			name:        "corrupt workbook",
			err:         &workbook.ParseError{FileName: "a.xlsx", Err: workbook.ErrCorruptWorkbook},
			wantCode:    "PARSE001",
			wantMessage: "The spreadsheet could not be opened",
		},
		{
			name:        "session not found",
			err:         fmt.Errorf("validate: %w", ErrSessionNotFound),
			wantCode:    "SES001",
			wantMessage: "Editing session not found",
		},
		{
			name:        "saved upload not found",
			err:         ErrSavedUploadNotFound,
			wantCode:    "HIST001",
			wantMessage: "Saved upload not found",
		},
		{
			name:        "invalid credentials",
			err:         auth.ErrInvalidCredentials,
			wantCode:    "AUTH001",
			wantMessage: "Invalid email or password",
		},
		{
			name:        "busy limiter",
			err:         ErrTooManyUploads,
			wantCode:    "UPL001",
			wantMessage: "System is busy processing other uploads",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("SESSION NOT FOUND"),
			wantCode:    "SES001",
			wantMessage: "Editing session not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_CoversSentinels(t *testing.T) {
	sentinels := []error{
		workbook.ErrEmptyFile,
		workbook.ErrFileTooLarge,
		workbook.ErrUnsupportedFormat,
		workbook.ErrCorruptWorkbook,
		workbook.ErrInvalidCSV,
		workbook.ErrEncoding,
		workbook.ErrNothingToExport,
		ErrSessionNotFound,
		ErrSavedUploadNotFound,
		ErrRowOutOfRange,
		ErrSheetOutOfRange,
		ErrUnknownField,
		ErrStaleValidation,
		ErrNoFile,
		ErrInvalidRequest,
		ErrTooManyUploads,
		auth.ErrInvalidCredentials,
		auth.ErrEmailTaken,
		auth.ErrMissingCredentials,
	}
	for _, err := range sentinels {
		if !IsUserFacing(err) {
			t.Errorf("%q maps to ERR000", err)
		}
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrRowOutOfRange)

	expected := "That row does not exist (Code: SES002). Refresh the sheet and try again"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  workbook.ErrEmptyFile,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("restore abc: %w", ErrSavedUploadNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Saved upload not found" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, ErrSavedUploadNotFound) {
			t.Error("Unwrap() should expose the original error")
		}
	})
}
