// Package core coordinates lead-file editing sessions.
//
// # Error Codes Reference
//
// This file maps technical errors to user-facing messages with a code that
// users can quote to support.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the upload exceeds the configured size cap
//	          Patterns: "file too large"
//	FILE002 - Unsupported type: not an .xlsx, .xls or .csv file
//	          Patterns: "unsupported file type"
//	FILE003 - Invalid CSV: the text could not be read as comma-separated rows
//	          Patterns: "invalid csv"
//	FILE004 - Encoding error: the text is not valid UTF-8 or Windows-1252
//	          Patterns: "encoding error"
//	FILE005 - No file: the request carried no file
//	          Patterns: "no file provided"
//	FILE006 - Empty file: the upload has zero bytes
//	          Patterns: "empty file"
//
// # Parse and Export Errors (PARSE001-PARSE099)
//
//	PARSE001 - Corrupt workbook: the spreadsheet could not be opened
//	           Patterns: "corrupt workbook"
//	PARSE002 - Nothing to export: every sheet is empty
//	           Patterns: "nothing to export"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session not found          Patterns: "session not found"
//	SES002 - Row out of range           Patterns: "row out of range"
//	SES003 - Sheet out of range         Patterns: "sheet out of range"
//	SES004 - Unknown field              Patterns: "unknown field"
//	SES005 - Validation superseded      Patterns: "validation superseded"
//	SES006 - Unknown error filter       Patterns: "unknown error filter"
//
// # History Errors (HIST001-HIST099)
//
//	HIST001 - Saved upload not found    Patterns: "saved upload not found"
//
// # Credential Errors (AUTH001-AUTH099)
//
//	AUTH001 - Invalid credentials       Patterns: "invalid email or password"
//	AUTH002 - Email taken               Patterns: "user already exists"
//	AUTH003 - Missing credentials       Patterns: "email and password are required"
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - System busy                Patterns: "too many uploads"
//	UPL002 - Request cancelled          Patterns: "context canceled"
//	UPL003 - Request timeout            Patterns: "context deadline exceeded"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests         Patterns: "rate limit"
//
// # Request Errors (REQ001)
//
//	REQ001 - Malformed request body or parameters
//	         Patterns: "invalid request"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the application logs for the
// technical error, which carries the request id.
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Split the file or remove unused sheets and columns",
			Code:    "FILE001",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Upload an .xlsx, .xls or .csv file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE003",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save the file as UTF-8 and upload it again",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a spreadsheet to upload",
			Code:    "FILE005",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a spreadsheet with a header row and lead rows",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Parse and Export Errors (PARSE001-PARSE002)
	// =========================================================================
	{
		pattern: "corrupt workbook",
		msg: UserMessage{
			Message: "The spreadsheet could not be opened",
			Action:  "Open the file in Excel, save it again and re-upload",
			Code:    "PARSE001",
		},
	},
	{
		pattern: "nothing to export",
		msg: UserMessage{
			Message: "There are no rows to export",
			Action:  "Add at least one lead before downloading",
			Code:    "PARSE002",
		},
	},

	// =========================================================================
	// Session Errors (SES001-SES006)
	// =========================================================================
	{
		pattern: "session not found",
		msg: UserMessage{
			Message: "Editing session not found",
			Action:  "Upload the file again or restore it from history",
			Code:    "SES001",
		},
	},
	{
		pattern: "row out of range",
		msg: UserMessage{
			Message: "That row does not exist",
			Action:  "Refresh the sheet and try again",
			Code:    "SES002",
		},
	},
	{
		pattern: "sheet out of range",
		msg: UserMessage{
			Message: "That sheet does not exist",
			Action:  "Pick one of the sheets listed for this file",
			Code:    "SES003",
		},
	},
	{
		pattern: "unknown field",
		msg: UserMessage{
			Message: "That column is not part of the lead template",
			Action:  "Use one of the template columns",
			Code:    "SES004",
		},
	},
	{
		pattern: "validation superseded",
		msg: UserMessage{
			Message: "The sheet changed while it was being checked",
			Action:  "The latest results will be shown shortly",
			Code:    "SES005",
		},
	},
	{
		pattern: "unknown error filter",
		msg: UserMessage{
			Message: "Unknown error filter",
			Action:  "Use all, auto-fixable or required-fields",
			Code:    "SES006",
		},
	},

	// =========================================================================
	// History Errors (HIST001)
	// =========================================================================
	{
		pattern: "saved upload not found",
		msg: UserMessage{
			Message: "Saved upload not found",
			Action:  "It may have expired. Upload the file again",
			Code:    "HIST001",
		},
	},

	// =========================================================================
	// Credential Errors (AUTH001-AUTH003)
	// =========================================================================
	{
		pattern: "invalid email or password",
		msg: UserMessage{
			Message: "Invalid email or password",
			Action:  "Check your details and try again",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "user already exists",
		msg: UserMessage{
			Message: "An account with this email already exists",
			Action:  "Log in instead",
			Code:    "AUTH002",
		},
	},
	{
		pattern: "email and password are required",
		msg: UserMessage{
			Message: "Email and password are required",
			Action:  "Fill in both fields",
			Code:    "AUTH003",
		},
	},

	// =========================================================================
	// Upload Errors (UPL001-UPL003)
	// =========================================================================
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},

	// =========================================================================
	// Requests (REQ001)
	// =========================================================================
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the submitted values and try again",
			Code:    "REQ001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
