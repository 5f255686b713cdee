package analyzer

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/mcncl/jsontools/internal/errors"
	"github.com/mcncl/jsontools/internal/models"
	"github.com/mcncl/jsontools/internal/parser"
)

// Regex patterns for recognised string and number formats
var (
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

	// Time format patterns (ordered by specificity - most specific first)
	rfc3339NanoRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{9}(Z|[+-]\d{2}:\d{2})$`)             // 2006-01-02T15:04:05.999999999Z
	rfc3339Regex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)            // 2006-01-02T15:04:05Z
	iso8601Regex     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?([+-]\d{2}:\d{2}|Z|[+-]\d{4})?$`) // ISO8601 variants
	dateOnlyRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)                                                         // 2006-01-02
	dateTimeRegex    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(\.\d+)?$`)                               // 2006-01-02 15:04:05

	unixTimestampRegex = regexp.MustCompile(`^1[0-9]{9}$`)  // Unix timestamp (seconds since 1970)
	unixMilliRegex     = regexp.MustCompile(`^1[0-9]{12}$`) // Unix timestamp in milliseconds
)

// Names of the detected formats
const (
	FormatUUID        = "uuid"
	FormatRFC3339Nano = "rfc3339nano"
	FormatRFC3339     = "rfc3339"
	FormatISO8601     = "iso8601"
	FormatDate        = "date"
	FormatDateTime    = "datetime"
	FormatUnixSeconds = "unix_seconds"
	FormatUnixMillis  = "unix_millis"
)

// Report summarizes the shape of a JSON document
type Report struct {
	Objects  int `json:"objects"`
	Arrays   int `json:"arrays"`
	Strings  int `json:"strings"`
	Integers int `json:"integers"`
	Floats   int `json:"floats"`
	Booleans int `json:"booleans"`
	Nulls    int `json:"nulls"`

	// Keys counts object members, UniqueKeys their distinct names
	Keys       int `json:"keys"`
	UniqueKeys int `json:"uniqueKeys"`
	// MaxDepth is the deepest container nesting; a bare scalar has depth 0
	MaxDepth     int `json:"maxDepth"`
	LargestArray int `json:"largestArray"`

	// Formats counts strings and numbers that look like identifiers or times
	Formats map[string]int `json:"formats"`
}

// Values returns the number of values in the document, containers included
func (r Report) Values() int {
	return r.Objects + r.Arrays + r.Strings + r.Integers + r.Floats + r.Booleans + r.Nulls
}

// String renders the report as aligned text
func (r Report) String() string {
	var b strings.Builder
	rows := []struct {
		label string
		value int
	}{
		{"values", r.Values()},
		{"objects", r.Objects},
		{"arrays", r.Arrays},
		{"strings", r.Strings},
		{"integers", r.Integers},
		{"floats", r.Floats},
		{"booleans", r.Booleans},
		{"nulls", r.Nulls},
		{"keys", r.Keys},
		{"unique keys", r.UniqueKeys},
		{"max depth", r.MaxDepth},
		{"largest array", r.LargestArray},
	}
	for _, row := range rows {
		fmt.Fprintf(&b, "%-14s %d\n", row.label+":", row.value)
	}

	names := make([]string, 0, len(r.Formats))
	for name := range r.Formats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%-14s %d\n", "format "+name+":", r.Formats[name])
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Analyzer walks JSON trees and reports on their shape
type Analyzer struct {
	maxDepth int
	logger   *slog.Logger
	parser   *parser.Parser
}

// NewAnalyzer creates a new Analyzer with the default depth limit
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithLimits(parser.DefaultMaxDepth, nil)
}

// NewAnalyzerWithLimits creates an Analyzer with a custom depth limit and logger
func NewAnalyzerWithLimits(maxDepth int, logger *slog.Logger) *Analyzer {
	if maxDepth <= 0 {
		maxDepth = parser.DefaultMaxDepth
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{
		maxDepth: maxDepth,
		logger:   logger,
		parser:   parser.New(parser.WithMaxDepth(maxDepth), parser.WithLogger(logger)),
	}
}

// AnalyzeString parses text and analyzes the resulting tree
func (a *Analyzer) AnalyzeString(text string) (Report, error) {
	root, err := a.parser.ParseString(text)
	if err != nil {
		return Report{}, err
	}
	return a.Analyze(root)
}

// Analyze walks a parsed tree
func (a *Analyzer) Analyze(root models.JSONValue) (Report, error) {
	w := &walk{
		maxDepth: a.maxDepth,
		keys:     make(map[string]struct{}),
		report:   Report{Formats: make(map[string]int)},
	}
	if err := w.node(root, 0); err != nil {
		return Report{}, err
	}
	w.report.UniqueKeys = len(w.keys)
	a.logger.Debug("analyzed document", "values", w.report.Values(), "max_depth", w.report.MaxDepth)
	return w.report, nil
}

type walk struct {
	maxDepth int
	keys     map[string]struct{}
	report   Report
}

// node visits v, which sits inside depth containers
func (w *walk) node(v models.JSONValue, depth int) error {
	switch val := v.(type) {
	case nil:
		w.report.Nulls++
	case bool:
		w.report.Booleans++
	case string:
		w.report.Strings++
		w.format(stringFormat(val))
	case json.Number:
		integer, format := numberFormat(val)
		if integer {
			w.report.Integers++
		} else {
			w.report.Floats++
		}
		w.format(format)
	case *models.JSONObject:
		w.report.Objects++
		if err := w.enter(depth + 1); err != nil {
			return err
		}
		for _, key := range val.Keys() {
			w.report.Keys++
			w.keys[key] = struct{}{}
			child, _ := val.Get(key)
			if err := w.node(child, depth+1); err != nil {
				return err
			}
		}
	case models.JSONArray:
		w.report.Arrays++
		if err := w.enter(depth + 1); err != nil {
			return err
		}
		if len(val) > w.report.LargestArray {
			w.report.LargestArray = len(val)
		}
		for _, item := range val {
			if err := w.node(item, depth+1); err != nil {
				return err
			}
		}
	default:
		return errors.NewValidationError(fmt.Sprintf("unexpected json value type: %T", v), nil)
	}
	return nil
}

// enter records a container opened at the given nesting level
func (w *walk) enter(depth int) error {
	if depth > w.maxDepth {
		return errors.NewValidationError(
			fmt.Sprintf("maximum nesting depth of %d exceeded", w.maxDepth),
			errors.ErrTooDeep,
		)
	}
	if depth > w.report.MaxDepth {
		w.report.MaxDepth = depth
	}
	return nil
}

func (w *walk) format(name string) {
	if name != "" {
		w.report.Formats[name]++
	}
}

// stringFormat names the format s is written in, or "" for plain text
func stringFormat(s string) string {
	switch {
	case uuidRegex.MatchString(s):
		return FormatUUID
	case rfc3339NanoRegex.MatchString(s):
		return FormatRFC3339Nano
	case rfc3339Regex.MatchString(s):
		return FormatRFC3339
	case iso8601Regex.MatchString(s):
		return FormatISO8601
	case dateOnlyRegex.MatchString(s):
		return FormatDate
	case dateTimeRegex.MatchString(s):
		return FormatDateTime
	}
	return ""
}

// numberFormat reports whether num is an integer and whether it looks like
// a Unix timestamp
func numberFormat(num json.Number) (integer bool, format string) {
	numStr := string(num)

	// Check for Unix timestamps - common pattern in APIs
	if unixTimestampRegex.MatchString(numStr) {
		return true, FormatUnixSeconds
	}
	if unixMilliRegex.MatchString(numStr) {
		return true, FormatUnixMillis
	}

	_, err := num.Int64()
	return err == nil, ""
}
