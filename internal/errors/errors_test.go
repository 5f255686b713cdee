package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		expected string
	}{
		{
			name: "error with wrapped error",
			appError: &AppError{
				Type:    ErrorTypeInput,
				Message: "failed to read input",
				Err:     errors.New("file not found"),
			},
			expected: "input: failed to read input: file not found",
		},
		{
			name: "error without wrapped error",
			appError: &AppError{
				Type:    ErrorTypeParsing,
				Message: "invalid character '}' looking for beginning of object key string",
			},
			expected: "parsing: invalid character '}' looking for beginning of object key string",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	wrappedErr := errors.New("wrapped error")
	appErr := &AppError{Type: ErrorTypeInput, Message: "test message", Err: wrappedErr}

	assert.Equal(t, wrappedErr, appErr.Unwrap())
}

func TestAppError_Is(t *testing.T) {
	tests := []struct {
		name     string
		appError *AppError
		target   error
		expected bool
	}{
		{
			name:     "same type",
			appError: &AppError{Type: ErrorTypeConversion, Message: "a"},
			target:   &AppError{Type: ErrorTypeConversion, Message: "b", Err: errors.New("x")},
			expected: true,
		},
		{
			name:     "different type",
			appError: &AppError{Type: ErrorTypeInput, Message: "a"},
			target:   &AppError{Type: ErrorTypeParsing, Message: "a"},
			expected: false,
		},
		{
			name:     "not an AppError",
			appError: &AppError{Type: ErrorTypeInput, Message: "a"},
			target:   errors.New("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appError.Is(tt.target))
		})
	}
}

func TestAppError_WrapsSentinel(t *testing.T) {
	err := fmt.Errorf("converting: %w", NewConversionError("JSON must be an array for CSV conversion", ErrUnsupportedShape))

	assert.True(t, errors.Is(err, ErrUnsupportedShape))
	assert.True(t, errors.Is(err, &AppError{Type: ErrorTypeConversion}))
	assert.False(t, errors.Is(err, ErrInvalidJSON))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Empty JSON input", Message(NewParsingError("Empty JSON input", ErrEmptyInput)))
	assert.Equal(t, "plain", Message(errors.New("plain")))
}

func TestUserFriendlyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"input error", NewInputError("failed to read file", nil), "Input error: failed to read file"},
		{"parsing error", NewParsingError("unexpected end of JSON input", ErrInvalidJSON), "JSON parsing error: unexpected end of JSON input"},
		{"validation error", NewValidationError("indent size must be at least 1", ErrInvalidIndent), "Invalid argument: indent size must be at least 1"},
		{"comparison error", NewComparisonError("left document is invalid", nil), "Comparison error: left document is invalid"},
		{"conversion error", NewConversionError("JSON must be an array for CSV conversion", ErrUnsupportedShape), "Conversion error: JSON must be an array for CSV conversion"},
		{"patch error", NewPatchError("failed to apply patch", nil), "Patch error: failed to apply patch"},
		{"config error", NewConfigError("bad indent", nil), "Configuration error: bad indent"},
		{"output error", NewOutputError("failed to write", nil), "Output error: failed to write"},
		{"unknown type", &AppError{Type: ErrorTypeUnknown, Message: "boom"}, "Error: boom"},
		{"empty input", ErrEmptyInput, "Error: The input is empty."},
		{"invalid json", ErrInvalidJSON, "Error: The input is not valid JSON."},
		{"invalid csv", ErrInvalidCSV, "Error: The input is not valid CSV."},
		{"unsupported shape", ErrUnsupportedShape, "Error: The JSON document does not have the shape this operation requires."},
		{"too deep", ErrTooDeep, "Error: The document is nested too deeply to process."},
		{"file not found", ErrFileNotFound, "Error: The file does not exist. Check the path and try again."},
		{"file empty", ErrFileEmpty, "Error: The file has no content."},
		{"no input", ErrNoInput, "Error: Nothing to read. Pass a file with -i or pipe a document to stdin."},
		{"invalid path", ErrInvalidFilePath, "Error: The path does not point to a readable file."},
		{"wrapped", fmt.Errorf("reading: %w", ErrTooDeep), "Error: The document is nested too deeply to process."},
		{"generic", errors.New("something else"), "Error: something else"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserFriendlyError(tt.err))
		})
	}
}
