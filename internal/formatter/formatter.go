package formatter

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/models"
	"github.com/mcncl/jsontools/internal/parser"
)

const (
	// DefaultIndent is the indent width used for pretty-printing
	DefaultIndent = 2
	// MaxIndent caps the indent width the same way JSON.stringify does
	MaxIndent = 10
)

// Formatter renders JSONValue trees as JSON text
type Formatter struct {
	indent   int
	maxDepth int
}

// Option configures a Formatter
type Option func(f *Formatter)

// WithIndent sets the indent width. Zero renders minified output; widths
// above MaxIndent are capped.
func WithIndent(indent int) Option {
	return func(f *Formatter) {
		switch {
		case indent < 0:
			f.indent = 0
		case indent > MaxIndent:
			f.indent = MaxIndent
		default:
			f.indent = indent
		}
	}
}

// WithMaxDepth bounds the nesting the formatter will walk
func WithMaxDepth(depth int) Option {
	return func(f *Formatter) {
		if depth > 0 {
			f.maxDepth = depth
		}
	}
}

// NewFormatter creates a Formatter that pretty-prints with two spaces
func NewFormatter(opts ...Option) *Formatter {
	f := &Formatter{
		indent:   DefaultIndent,
		maxDepth: parser.DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders v with the configured indent width
func (f *Formatter) Format(v models.JSONValue) (string, error) {
	var b strings.Builder
	if err := f.write(&b, v, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Minify renders v with no insignificant whitespace
func (f *Formatter) Minify(v models.JSONValue) (string, error) {
	compact := *f
	compact.indent = 0
	return compact.Format(v)
}

func (f *Formatter) write(b *strings.Builder, v models.JSONValue, depth int) error {
	if depth > f.maxDepth {
		return errors.NewValidationError(
			fmt.Sprintf("maximum nesting depth of %d exceeded", f.maxDepth),
			errors.ErrTooDeep,
		)
	}

	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case string:
		b.WriteString(Quote(t))
	case *models.JSONObject:
		return f.writeObject(b, t, depth)
	case models.JSONArray:
		return f.writeArray(b, t, depth)
	default:
		num, err := FormatNumber(t)
		if err != nil {
			return err
		}
		b.WriteString(num)
	}
	return nil
}

func (f *Formatter) writeObject(b *strings.Builder, obj *models.JSONObject, depth int) error {
	if obj.Len() == 0 {
		b.WriteString("{}")
		return nil
	}
	b.WriteByte('{')
	for i, key := range obj.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		f.newline(b, depth+1)
		b.WriteString(Quote(key))
		b.WriteByte(':')
		if f.indent > 0 {
			b.WriteByte(' ')
		}
		val, _ := obj.Get(key)
		if err := f.write(b, val, depth+1); err != nil {
			return err
		}
	}
	f.newline(b, depth)
	b.WriteByte('}')
	return nil
}

func (f *Formatter) writeArray(b *strings.Builder, arr models.JSONArray, depth int) error {
	if len(arr) == 0 {
		b.WriteString("[]")
		return nil
	}
	b.WriteByte('[')
	for i, val := range arr {
		if i > 0 {
			b.WriteByte(',')
		}
		f.newline(b, depth+1)
		if err := f.write(b, val, depth+1); err != nil {
			return err
		}
	}
	f.newline(b, depth)
	b.WriteByte(']')
	return nil
}

func (f *Formatter) newline(b *strings.Builder, depth int) {
	if f.indent == 0 {
		return
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", f.indent*depth))
}

// SortKeys returns a copy of v in which every object has its keys in
// ascending code point order. Array element order is untouched.
func (f *Formatter) SortKeys(v models.JSONValue) (models.JSONValue, error) {
	return f.sortKeys(v, 0)
}

func (f *Formatter) sortKeys(v models.JSONValue, depth int) (models.JSONValue, error) {
	if depth > f.maxDepth {
		return nil, errors.NewValidationError(
			fmt.Sprintf("maximum nesting depth of %d exceeded", f.maxDepth),
			errors.ErrTooDeep,
		)
	}

	switch t := v.(type) {
	case *models.JSONObject:
		keys := t.Keys()
		sort.Strings(keys)
		sorted := models.NewJSONObject(len(keys))
		for _, key := range keys {
			val, _ := t.Get(key)
			child, err := f.sortKeys(val, depth+1)
			if err != nil {
				return nil, err
			}
			sorted.Set(key, child)
		}
		return sorted, nil
	case models.JSONArray:
		out := make(models.JSONArray, len(t))
		for i, val := range t {
			child, err := f.sortKeys(val, depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = child
		}
		return out, nil
	default:
		return v, nil
	}
}

// FormatNumber renders a number the way JSON.stringify does: the shortest
// decimal that round-trips, exponent notation outside [1e-6, 1e21), and
// -0 as 0. Values that overflow a float64 become null.
func FormatNumber(v models.JSONValue) (string, error) {
	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(string(n), 64)
		if err != nil && !isRangeError(err) {
			return "", fmt.Errorf("invalid number %q: %w", string(n), err)
		}
		f = parsed
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}

	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "null", nil
	}
	if f == 0 {
		return "0", nil
	}
	out, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func isRangeError(err error) bool {
	numErr, ok := err.(*strconv.NumError)
	return ok && numErr.Err == strconv.ErrRange
}

// Quote renders s as a JSON string literal. Only the quote, the backslash
// and control characters are escaped.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Escape turns arbitrary text into a JSON string literal
func Escape(s string) string {
	return Quote(s)
}

// Unescape parses text as JSON and returns it as plain text. A string
// literal yields its contents; any other value yields its compact JSON.
func Unescape(text string) (string, error) {
	v, err := parser.ParseString(text)
	if err != nil {
		return "", err
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return NewFormatter().Minify(v)
}

// SizeStats compares the size of a document before and after formatting
type SizeStats struct {
	OriginalSize  int `json:"originalSize"`
	FormattedSize int `json:"formattedSize"`
	Difference    int `json:"difference"`
	PercentChange int `json:"percentChange"`
}

// Stats measures both texts in characters. PercentChange is rounded half up
// and is zero when the original is empty.
func Stats(original, formatted string) SizeStats {
	s := SizeStats{
		OriginalSize:  utf8.RuneCountInString(original),
		FormattedSize: utf8.RuneCountInString(formatted),
	}
	s.Difference = s.FormattedSize - s.OriginalSize
	if s.OriginalSize > 0 {
		s.PercentChange = int(math.Floor(float64(s.Difference)/float64(s.OriginalSize)*100 + 0.5))
	}
	return s
}

// String renders the stats the way they are shown next to formatted output
func (s SizeStats) String() string {
	sign := ""
	if s.Difference > 0 {
		sign = "+"
	}
	pctSign := ""
	if s.PercentChange > 0 {
		pctSign = "+"
	}
	return fmt.Sprintf("Original: %d chars, Formatted: %d chars, Size Change: %s%d chars (%s%d%%)",
		s.OriginalSize, s.FormattedSize, sign, s.Difference, pctSign, s.PercentChange)
}
