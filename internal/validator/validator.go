// Package validator turns raw text buffers into validation outcomes and
// re-serialized renderings.
package validator

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/formatter"
	"github.com/mcncl/jsontools/internal/models"
	"github.com/mcncl/jsontools/internal/parser"
)

// EmptyInputMessage is reported for blank buffers
const EmptyInputMessage = "Empty JSON input"

// Options are the explicit knobs for formatting, replacing editor-wide state
type Options struct {
	Indent   int
	SortKeys bool
	MaxDepth int
	Logger   *slog.Logger
}

// DefaultOptions pretty-prints with two spaces and the default depth limit
func DefaultOptions() Options {
	return Options{
		Indent:   formatter.DefaultIndent,
		MaxDepth: parser.DefaultMaxDepth,
	}
}

// Validator validates and re-serializes text buffers
type Validator struct {
	opts   Options
	parser *parser.Parser
}

// New creates a Validator. Zero fields in opts fall back to DefaultOptions.
func New(opts Options) *Validator {
	defaults := DefaultOptions()
	if opts.Indent == 0 {
		opts.Indent = defaults.Indent
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = defaults.MaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Validator{
		opts:   opts,
		parser: parser.New(parser.WithMaxDepth(opts.MaxDepth), parser.WithLogger(opts.Logger)),
	}
}

func (v *Validator) formatter(indent int) *formatter.Formatter {
	return formatter.NewFormatter(formatter.WithIndent(indent), formatter.WithMaxDepth(v.opts.MaxDepth))
}

// Validate parses text strictly. A valid document carries its 2-space and
// minified renderings; an invalid one carries exactly one located error.
func (v *Validator) Validate(text string) models.ValidationOutcome {
	if strings.TrimSpace(text) == "" {
		return models.ValidationOutcome{
			IsValid: false,
			Errors: []models.ValidationError{{
				Line:     1,
				Column:   1,
				Message:  EmptyInputMessage,
				Severity: models.SeverityError,
			}},
		}
	}

	root, err := v.parser.ParseString(text)
	if err != nil {
		return invalid(text, err)
	}

	pretty, err := v.formatter(formatter.DefaultIndent).Format(root)
	if err != nil {
		return invalid(text, err)
	}
	minified, err := v.formatter(0).Format(root)
	if err != nil {
		return invalid(text, err)
	}

	return models.ValidationOutcome{
		IsValid:       true,
		Errors:        []models.ValidationError{},
		PrettyPrinted: pretty,
		Minified:      minified,
	}
}

func invalid(text string, err error) models.ValidationOutcome {
	// Without an offset the error is reported at the start of the text.
	offset, _ := parser.Offset(err)
	pos := parser.PositionAt(text, offset)
	return models.ValidationOutcome{
		IsValid: false,
		Errors: []models.ValidationError{{
			Line:     pos.Line,
			Column:   pos.Column,
			Message:  errors.Message(err),
			Severity: models.SeverityError,
		}},
	}
}

// Format re-serializes text with the given indent width
func (v *Validator) Format(text string, indent int) (string, error) {
	if indent < 1 {
		return "", errors.NewValidationError(
			fmt.Sprintf("indent size must be at least 1, got %d", indent),
			errors.ErrInvalidIndent,
		)
	}
	root, err := v.parser.ParseString(text)
	if err != nil {
		return "", err
	}
	return v.formatter(indent).Format(root)
}

// Minify re-serializes text without insignificant whitespace
func (v *Validator) Minify(text string) (string, error) {
	root, err := v.parser.ParseString(text)
	if err != nil {
		return "", err
	}
	return v.formatter(0).Format(root)
}

// SortKeysRecursively orders every object's keys by code point and renders
// the result with a 2-space indent
func (v *Validator) SortKeysRecursively(text string) (string, error) {
	root, err := v.parser.ParseString(text)
	if err != nil {
		return "", err
	}
	f := v.formatter(formatter.DefaultIndent)
	sorted, err := f.SortKeys(root)
	if err != nil {
		return "", err
	}
	return f.Format(sorted)
}

// FormatWithOptions formats text using the validator's configured indent,
// sorting keys first when SortKeys is set
func (v *Validator) FormatWithOptions(text string) (string, error) {
	if v.opts.Indent < 1 {
		return "", errors.NewValidationError(
			fmt.Sprintf("indent size must be at least 1, got %d", v.opts.Indent),
			errors.ErrInvalidIndent,
		)
	}
	root, err := v.parser.ParseString(text)
	if err != nil {
		return "", err
	}
	f := v.formatter(v.opts.Indent)
	if v.opts.SortKeys {
		if root, err = f.SortKeys(root); err != nil {
			return "", err
		}
	}
	v.opts.Logger.Debug("formatted document", "indent", v.opts.Indent, "sort_keys", v.opts.SortKeys)
	return f.Format(root)
}

// Markers converts validation errors into editor annotations spanning one
// character each
func Markers(outcome models.ValidationOutcome) []models.Marker {
	markers := make([]models.Marker, 0, len(outcome.Errors))
	for _, e := range outcome.Errors {
		markers = append(markers, models.Marker{
			StartLine:   e.Line,
			StartColumn: e.Column,
			EndLine:     e.Line,
			EndColumn:   e.Column + 1,
			Severity:    e.Severity,
			Message:     e.Message,
		})
	}
	return markers
}

var defaultValidator = New(DefaultOptions())

// Validate validates text with the default options
func Validate(text string) models.ValidationOutcome {
	return defaultValidator.Validate(text)
}

// Format formats text with the default options and the given indent
func Format(text string, indent int) (string, error) {
	return defaultValidator.Format(text, indent)
}

// Minify minifies text with the default options
func Minify(text string) (string, error) {
	return defaultValidator.Minify(text)
}

// SortKeysRecursively sorts text's keys with the default options
func SortKeysRecursively(text string) (string, error) {
	return defaultValidator.SortKeysRecursively(text)
}
