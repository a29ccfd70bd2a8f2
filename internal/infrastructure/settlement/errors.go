package settlement

import (
	"errors"
	"fmt"
)

// Parse error codes
const (
	ErrCodeEmptyFile       = "ERR_SETTLEMENT_EMPTY_FILE"
	ErrCodeInvalidEncoding = "ERR_SETTLEMENT_INVALID_ENCODING"
	ErrCodeMissingHeader   = "ERR_SETTLEMENT_MISSING_HEADER"
	ErrCodeMissingColumn   = "ERR_SETTLEMENT_MISSING_COLUMN"
	ErrCodeMalformedRow    = "ERR_SETTLEMENT_MALFORMED_ROW"
	ErrCodeInvalidAmount   = "ERR_SETTLEMENT_INVALID_AMOUNT"
	ErrCodeMissingIdentity = "ERR_SETTLEMENT_MISSING_IDENTITY"
	ErrCodeTooManyRows     = "ERR_SETTLEMENT_TOO_MANY_ROWS"
)

// Common parse errors
var (
	// ErrEmptyFile is returned when the settlement file is empty
	ErrEmptyFile = errors.New("settlement file is empty")

	// ErrInvalidEncoding is returned when the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("settlement file is not valid UTF-8")

	// ErrMissingHeader is returned when the file has no header row
	ErrMissingHeader = errors.New("settlement file missing header row")

	// ErrNoDataRows is returned when the file has a header but no data rows
	ErrNoDataRows = errors.New("settlement file contains no data rows")

	// ErrTooManyRows is returned when the file exceeds the row limit
	ErrTooManyRows = errors.New("settlement file exceeds maximum row count")
)

// CodeFor maps a parse failure to its wire-level error code.
func CodeFor(err error) string {
	switch {
	case errors.Is(err, ErrEmptyFile):
		return ErrCodeEmptyFile
	case errors.Is(err, ErrInvalidEncoding):
		return ErrCodeInvalidEncoding
	case errors.Is(err, ErrMissingHeader):
		return ErrCodeMissingHeader
	case errors.Is(err, ErrNoDataRows):
		return ErrCodeEmptyFile
	case errors.Is(err, ErrTooManyRows):
		return ErrCodeTooManyRows
	default:
		return ErrCodeMissingColumn
	}
}

// RowError describes a problem with one data row. Bad rows are
// collected and reported, not fatal to the parse.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}
