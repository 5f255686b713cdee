package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	stderrors "errors" // Standard errors package
	"github.com/mcncl/jsontools/internal/errors" // Custom errors package
	"github.com/mcncl/jsontools/internal/models"
)

// DefaultMaxDepth bounds object/array nesting so that hostile input is
// reported instead of exhausting the stack.
const DefaultMaxDepth = 1000

const unexpectedEOF = "unexpected end of JSON input"

// ParseError is a syntax failure located at a byte offset of the input.
// Offset is the index of the offending byte, or len(input) when the input
// ended early.
type ParseError struct {
	Offset int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	return e.Msg
}

// Unwrap returns ErrInvalidJSON or ErrTooDeep
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parser turns raw text into a fresh JSONValue tree
type Parser struct {
	maxDepth int
	logger   *slog.Logger
}

// Option configures a Parser
type Option func(p *Parser)

// WithMaxDepth sets the nesting limit. Values below 1 keep the default.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth > 0 {
			p.maxDepth = depth
		}
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Parser with the default depth limit
func New(opts ...Option) *Parser {
	p := &Parser{
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaxDepth returns the configured nesting limit
func (p *Parser) MaxDepth() int {
	return p.maxDepth
}

// Parse reads all of reader and parses it as a single strict JSON document
func (p *Parser) Parse(reader io.Reader) (models.JSONValue, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError("failed to read input", err)
	}
	return p.ParseBytes(data)
}

// ParseString parses text as a single strict JSON document
func (p *Parser) ParseString(text string) (models.JSONValue, error) {
	return p.ParseBytes([]byte(text))
}

// ParseBytes parses data as a single strict JSON document. Comments,
// trailing commas and multiple top-level values are rejected. Failures are
// returned as an *errors.AppError wrapping a *ParseError.
func (p *Parser) ParseBytes(data []byte) (models.JSONValue, error) {
	// The scanner behind Unmarshal validates the whole buffer first and
	// reports the offset of the first offending byte.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var syntaxError *json.SyntaxError
		if stderrors.As(err, &syntaxError) {
			perr := fromSyntaxError(data, syntaxError)
			p.logger.Debug("syntax error", "offset", perr.Offset, "message", perr.Msg)
			return nil, errors.NewParsingError(perr.Msg, perr)
		}
		return nil, errors.NewParsingError(err.Error(), errors.ErrInvalidJSON)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Ensure numbers are read as json.Number

	b := &builder{decoder: decoder, maxDepth: p.maxDepth}
	root, err := b.value(0)
	if err != nil {
		var perr *ParseError
		if stderrors.As(err, &perr) {
			p.logger.Debug("rejected document", "offset", perr.Offset, "message", perr.Msg)
			return nil, errors.NewParsingError(perr.Msg, perr)
		}
		return nil, errors.NewParsingError("failed to decode JSON", err)
	}

	p.logger.Debug("parsed document", "bytes", len(data), "kind", models.KindOf(root).String())
	return root, nil
}

func fromSyntaxError(data []byte, se *json.SyntaxError) *ParseError {
	// Offset counts the bytes consumed when the error was detected, so the
	// offending byte sits one before it. An early end points past the text.
	offset := int(se.Offset) - 1
	if se.Error() == unexpectedEOF {
		offset = len(data)
	}
	return &ParseError{
		Offset: clamp(offset, len(data)),
		Msg:    se.Error(),
		Err:    errors.ErrInvalidJSON,
	}
}

// builder walks the decoder's token stream into an ordered tree
type builder struct {
	decoder  *json.Decoder
	maxDepth int
}

func (b *builder) value(depth int) (models.JSONValue, error) {
	tok, err := b.decoder.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth+1 > b.maxDepth {
			return nil, &ParseError{
				Offset: int(b.decoder.InputOffset()) - 1,
				Msg:    fmt.Sprintf("maximum nesting depth of %d exceeded", b.maxDepth),
				Err:    errors.ErrTooDeep,
			}
		}
		switch t {
		case '{':
			return b.object(depth + 1)
		case '[':
			return b.array(depth + 1)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(t))
	default:
		// json.Number, string, bool or nil
		return t, nil
	}
}

func (b *builder) object(depth int) (models.JSONValue, error) {
	obj := models.NewJSONObject(0)
	for b.decoder.More() {
		tok, err := b.decoder.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not a string", tok)
		}
		val, err := b.value(depth)
		if err != nil {
			return nil, err
		}
		obj.Set(key, val)
	}
	// consume '}'
	if _, err := b.decoder.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func (b *builder) array(depth int) (models.JSONValue, error) {
	arr := models.JSONArray{}
	for b.decoder.More() {
		val, err := b.value(depth)
		if err != nil {
			return nil, err
		}
		arr = append(arr, val)
	}
	// consume ']'
	if _, err := b.decoder.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// ParseString parses text with a default Parser
func ParseString(text string) (models.JSONValue, error) {
	return New().ParseString(text)
}

// Offset extracts the byte offset carried by a parse failure. ok is false
// when err carries no offset.
func Offset(err error) (offset int, ok bool) {
	var perr *ParseError
	if stderrors.As(err, &perr) {
		return perr.Offset, true
	}
	return 0, false
}

// PositionAt translates a byte offset of text into a 1-based line and
// column. Columns count runes so they line up with what an editor shows.
func PositionAt(text string, offset int) models.SourcePosition {
	prefix := text[:clamp(offset, len(text))]
	lastNewline := strings.LastIndexByte(prefix, '\n')
	return models.SourcePosition{
		Line:   strings.Count(prefix, "\n") + 1,
		Column: utf8.RuneCountInString(prefix[lastNewline+1:]) + 1,
	}
}

func clamp(offset, length int) int {
	if offset < 0 {
		return 0
	}
	if offset > length {
		return length
	}
	return offset
}

// ReadFile loads a document from disk without parsing it
func ReadFile(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return "", errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	if len(data) == 0 {
		return "", errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return string(data), nil
}
