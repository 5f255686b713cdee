package errors

import (
	"errors"
	"fmt"
)

// Standard application errors
var (
	ErrEmptyInput       = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON      = errors.New("invalid JSON format")
	ErrUnsupportedShape = errors.New("unsupported JSON shape")
	ErrTooDeep          = errors.New("nesting depth exceeds the configured limit")
	ErrInvalidIndent    = errors.New("indent size must be a positive integer")
	ErrInvalidXML       = errors.New("invalid XML format")
	ErrInvalidCSV       = errors.New("invalid CSV input")
	ErrFileNotFound     = errors.New("file not found")
	ErrFileEmpty        = errors.New("file is empty")
	ErrNoInput          = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath  = errors.New("invalid file path")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeParsing    ErrorType = "parsing"
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeComparison ErrorType = "comparison"
	ErrorTypeConversion ErrorType = "conversion"
	ErrorTypePatch      ErrorType = "patch"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeOutput     ErrorType = "output"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Err: err}
}

// NewParsingError creates a new error related to JSON parsing. The message is
// the parser's own diagnostic and is surfaced to users unchanged.
func NewParsingError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeParsing, Message: message, Err: err}
}

// NewValidationError creates a new error for rejected arguments such as a bad indent
func NewValidationError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message, Err: err}
}

// NewComparisonError creates a new error raised while diffing two documents
func NewComparisonError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeComparison, Message: message, Err: err}
}

// NewConversionError creates a new error related to CSV/XML transcoding
func NewConversionError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeConversion, Message: message, Err: err}
}

// NewPatchError creates a new error related to JSON Patch creation or application
func NewPatchError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypePatch, Message: message, Err: err}
}

// NewConfigError creates a new error related to configuration loading
func NewConfigError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message, Err: err}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// Message returns the bare message of an AppError, or err.Error() for any other error.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// hints explain bare sentinel errors, most specific first
var hints = []struct {
	err  error
	text string
}{
	{ErrNoInput, "Nothing to read. Pass a file with -i or pipe a document to stdin."},
	{ErrFileNotFound, "The file does not exist. Check the path and try again."},
	{ErrFileEmpty, "The file has no content."},
	{ErrInvalidFilePath, "The path does not point to a readable file."},
	{ErrEmptyInput, "The input is empty."},
	{ErrTooDeep, "The document is nested too deeply to process."},
	{ErrInvalidJSON, "The input is not valid JSON."},
	{ErrInvalidCSV, "The input is not valid CSV."},
	{ErrInvalidXML, "The input is not valid XML."},
	{ErrUnsupportedShape, "The JSON document does not have the shape this operation requires."},
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeValidation:
			return fmt.Sprintf("Invalid argument: %s", appErr.Message)
		case ErrorTypeComparison:
			return fmt.Sprintf("Comparison error: %s", appErr.Message)
		case ErrorTypeConversion:
			return fmt.Sprintf("Conversion error: %s", appErr.Message)
		case ErrorTypePatch:
			return fmt.Sprintf("Patch error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	for _, h := range hints {
		if errors.Is(err, h.err) {
			return "Error: " + h.text
		}
	}
	return fmt.Sprintf("Error: %v", err)
}
